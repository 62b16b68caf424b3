package settings

import "context"

// Repository is the flat key/value settings table.
type Repository interface {
	// Get returns the stored values for the given keys. Absent keys are omitted.
	Get(ctx context.Context, keys []string) (map[string]string, error)
	// Upsert writes every key/value pair in one transaction.
	Upsert(ctx context.Context, values map[string]string) error
}
