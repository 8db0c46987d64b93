// Package types defines the entity data model, the Persister and Notifier
// contracts, configuration, and standard error types for the propstore
// storage system.
package types
