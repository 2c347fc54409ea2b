package recordstore

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ingest"
)

const (
	filePrefix = "file:"
	indexKey   = "file-index"
)

// VirtualPath builds the key an imported file is persisted under:
// {dir/}{lower(docType)}_{fileName}. Paths are not unique; a later import
// with the same path replaces the earlier one.
func VirtualPath(dir, docType, fileName string) string {
	name := strings.ToLower(docType) + "_" + fileName
	if dir = strings.TrimRight(strings.TrimSpace(dir), "/"); dir != "" {
		return dir + "/" + name
	}
	return name
}

// Files persists ingestion records by virtual path and keeps a path index in
// the same store so listing works over a plain get/set collaborator.
type Files struct {
	store Store
	mu    sync.Mutex
}

// NewFiles returns a Files adapter over store.
func NewFiles(store Store) *Files {
	return &Files{store: store}
}

// Persist writes rec under path and returns the path. The index entry is
// written before the record, and rolled back if the record write fails, so a
// listed path never points at a record that was not stored.
func (f *Files) Persist(ctx context.Context, path string, rec *ingest.Record) (string, error) {
	if path == "" {
		return "", errors.NewInvalidRequest("path is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, _, err := f.store.Get(ctx, indexKey)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	index, err := f.index(ctx)
	if err != nil {
		return "", err
	}
	added := !slices.Contains(index, path)
	if added {
		raw, err := json.Marshal(append(index, path))
		if err != nil {
			return "", errors.NewInternal(err)
		}
		if err := f.store.Set(ctx, indexKey, string(raw)); err != nil {
			return "", errors.NewPersistenceFailure(indexKey, err)
		}
	}

	if err := f.store.Set(ctx, filePrefix+path, string(data)); err != nil {
		if added {
			_ = f.store.Set(ctx, indexKey, prev)
		}
		return "", errors.NewPersistenceFailure(path, err)
	}
	return path, nil
}

// Get reads back the record stored under path.
func (f *Files) Get(ctx context.Context, path string) (*ingest.Record, error) {
	raw, ok, err := f.store.Get(ctx, filePrefix+path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("file", path)
	}
	var rec ingest.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &rec, nil
}

// List returns every persisted path in first-write order.
func (f *Files) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index, err := f.index(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, index...), nil
}

// Count returns the number of distinct persisted paths.
func (f *Files) Count(ctx context.Context) (int, error) {
	paths, err := f.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

func (f *Files) index(ctx context.Context) ([]string, error) {
	raw, ok, err := f.store.Get(ctx, indexKey)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(raw), &paths); err != nil {
		return nil, errors.NewInternal(err)
	}
	return paths, nil
}
