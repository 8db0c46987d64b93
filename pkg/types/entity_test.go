package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityAccessors(t *testing.T) {
	tests := []struct {
		name          string
		entity        Entity
		wantID        string
		wantCreatedAt int64
	}{
		{
			name:          "int64 timestamps",
			entity:        Entity{FieldID: "a", FieldCreatedAt: int64(1700000000000)},
			wantID:        "a",
			wantCreatedAt: 1700000000000,
		},
		{
			name:          "float64 timestamps after JSON decode",
			entity:        Entity{FieldID: "b", FieldCreatedAt: float64(1700000000000)},
			wantID:        "b",
			wantCreatedAt: 1700000000000,
		},
		{
			name:          "missing fields coerce to zero values",
			entity:        Entity{"name": "no id"},
			wantID:        "",
			wantCreatedAt: 0,
		},
		{
			name:          "non-string id coerces to empty",
			entity:        Entity{FieldID: 42},
			wantID:        "",
			wantCreatedAt: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantID, tt.entity.ID())
			assert.Equal(t, tt.wantCreatedAt, tt.entity.CreatedAt())
		})
	}
}

func TestEntityClone(t *testing.T) {
	e := Entity{FieldID: "a", "name": "original"}
	cp := e.Clone()

	cp["name"] = "changed"
	assert.Equal(t, "original", e["name"], "clone must not alias the source")

	var nilEntity Entity
	assert.Nil(t, nilEntity.Clone())
}

func TestCollectionTableClone(t *testing.T) {
	table := CollectionTable{
		"Order": {"o1": Entity{FieldID: "o1", "total": 10}},
	}
	cp := table.Clone()
	cp["Order"]["o1"]["total"] = 99

	assert.Equal(t, 10, table["Order"]["o1"]["total"])
}

func TestMergeTables(t *testing.T) {
	local := CollectionTable{
		"Order": {
			"o1": Entity{FieldID: "o1", "status": "pending", "total": 10},
			"o2": Entity{FieldID: "o2", "status": "pending"},
		},
	}
	remote := CollectionTable{
		"Order": {
			// Shallow replace: the local "total" field must not survive.
			"o1": Entity{FieldID: "o1", "status": "delivered"},
			"o3": Entity{FieldID: "o3", "status": "new"},
		},
		"User": {
			"u1": Entity{FieldID: "u1"},
		},
	}

	merged := MergeTables(local, remote)

	assert.Equal(t, "delivered", merged["Order"]["o1"]["status"], "remote wins on id collision")
	assert.NotContains(t, merged["Order"]["o1"], "total", "replace-by-id, not field-level merge")
	assert.Contains(t, merged["Order"], "o2", "local-only entities survive")
	assert.Contains(t, merged["Order"], "o3", "remote-only entities are added")
	assert.Contains(t, merged, "User", "new collections are created")

	// Pure function: neither input is mutated.
	assert.Equal(t, "pending", local["Order"]["o1"]["status"])
	assert.Len(t, local["Order"], 2)
	assert.Len(t, remote["Order"], 2)
}

func TestMergeTablesEmptyInputs(t *testing.T) {
	local := CollectionTable{"Order": {"o1": Entity{FieldID: "o1"}}}

	assert.Len(t, MergeTables(local, nil)["Order"], 1)
	assert.Len(t, MergeTables(nil, local)["Order"], 1)
	assert.Empty(t, MergeTables(nil, nil))
}
