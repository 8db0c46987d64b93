package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stageware/propstore/pkg/types"
)

func orders() []types.Entity {
	return []types.Entity{
		{types.FieldID: "o1", "status": "pending", "total": 30},
		{types.FieldID: "o2", "status": "delivered", "total": 10},
		{types.FieldID: "o3", "status": "pending", "total": 20},
		{types.FieldID: "o4", "status": "delivered", "total": 50},
		{types.FieldID: "o5", "status": "pending", "total": 40},
	}
}

func ids(items []types.Entity) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID())
	}
	return out
}

func TestRunFilterSortPaginate(t *testing.T) {
	// 5 entities, filter keeping 3, numeric ascending sort, offset 1 limit 1.
	result := Run(orders(), Options{
		Filter: func(e types.Entity) bool { return e["status"] == "pending" },
		Sort:   ByField("total"),
		Offset: 1,
		Limit:  1,
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, "o1", result.Items[0].ID(), "second-cheapest pending order")
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Count())
	assert.False(t, result.IsEmpty())
	assert.True(t, result.HasMore())
}

func TestRunTotalIgnoresPagination(t *testing.T) {
	filter := func(e types.Entity) bool { return e["status"] == "pending" }
	full := Run(orders(), Options{Filter: filter})

	for _, opts := range []Options{
		{Filter: filter, Offset: 1},
		{Filter: filter, Limit: 1},
		{Filter: filter, Offset: 2, Limit: 2},
		{Filter: filter, Offset: 99},
	} {
		result := Run(orders(), opts)
		assert.Equal(t, len(full.Items), result.Total, "pagination never changes the total")
	}
}

func TestRunZeroOptionsAreNoOps(t *testing.T) {
	result := Run(orders(), Options{})

	assert.Len(t, result.Items, 5)
	assert.Equal(t, 5, result.Total)
	assert.False(t, result.HasMore())
	assert.Equal(t, ids(orders()), ids(result.Items), "no sort preserves input order")
}

func TestRunNonPositiveLimitMeansNoLimit(t *testing.T) {
	for _, limit := range []int{0, -1, -100} {
		result := Run(orders(), Options{Limit: limit})
		assert.Len(t, result.Items, 5, "limit %d must not mean zero items", limit)
	}
}

func TestRunOffsetBeyondEnd(t *testing.T) {
	result := Run(orders(), Options{Offset: 10})

	assert.Empty(t, result.Items)
	assert.True(t, result.IsEmpty())
	assert.Equal(t, 5, result.Total)
	assert.False(t, result.HasMore())
}

func TestRunNegativeOffsetIsZero(t *testing.T) {
	result := Run(orders(), Options{Offset: -3, Limit: 2})
	assert.Equal(t, []string{"o1", "o2"}, ids(result.Items))
}

func TestRunSortIsStableAndDoesNotMutateInput(t *testing.T) {
	input := []types.Entity{
		{types.FieldID: "a", "rank": 1},
		{types.FieldID: "b", "rank": 1},
		{types.FieldID: "c", "rank": 0},
		{types.FieldID: "d", "rank": 1},
	}

	result := Run(input, Options{Sort: ByField("rank")})

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(result.Items), "ties keep pre-sort order")
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(input), "input slice is never reordered")
}

func TestRunEmptyInput(t *testing.T) {
	result := Run(nil, Options{Filter: func(types.Entity) bool { return true }})

	assert.True(t, result.IsEmpty())
	assert.Zero(t, result.Total)
	assert.False(t, result.HasMore())
}

func TestByField(t *testing.T) {
	a := types.Entity{"n": 2, "s": "apple"}
	b := types.Entity{"n": float64(10), "s": "banana"}

	assert.True(t, ByField("n")(a, b), "numeric comparison, not lexicographic")
	assert.True(t, ByField("s")(a, b))
	assert.False(t, ByField("s")(b, a))

	missing := types.Entity{}
	assert.True(t, ByField("n")(missing, a), "missing field sorts first")
	assert.False(t, ByField("n")(a, missing))
}

func TestDescending(t *testing.T) {
	result := Run(orders(), Options{Sort: Descending(ByField("total")), Limit: 2})
	assert.Equal(t, []string{"o4", "o5"}, ids(result.Items))
}
