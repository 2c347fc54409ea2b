package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/blueprint/internal/ingest"
)

// SetStorageDirectory sets the prefix for virtual paths of later imports.
func (o *Orchestrator) SetStorageDirectory(dir string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.storageDir = strings.TrimSpace(dir)
}

// StorageDirectory returns the current virtual path prefix.
func (o *Orchestrator) StorageDirectory() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.storageDir
}

// ListFiles returns every imported virtual path in first-import order.
func (o *Orchestrator) ListFiles(ctx context.Context) ([]string, error) {
	return o.files.List(ctx)
}

// CountFiles returns the number of distinct imported paths.
func (o *Orchestrator) CountFiles(ctx context.Context) (int, error) {
	return o.files.Count(ctx)
}

// GetFile returns the record stored under a virtual path.
func (o *Orchestrator) GetFile(ctx context.Context, path string) (*ingest.Record, error) {
	return o.files.Get(ctx, path)
}
