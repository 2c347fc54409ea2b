// Package recordstore adapts a plain key/value collaborator into the
// path-addressed file store used for imports and project data.
package recordstore

import "context"

// Store is the external key/value collaborator. No transactions, no TTL.
// A Set to an existing key replaces its value.
type Store interface {
	// Get returns the value under key. Missing keys return ("", false, nil).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, discarding any prior value.
	Set(ctx context.Context, key, value string) error
}
