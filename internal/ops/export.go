package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for ExportDocuments.
type ExportInput struct {
	Path string // optional, default: ~/.blueprint/exports/<project>-<timestamp>.jsonl
}

// ExportOutput contains the result of an export.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	BlueprintExport bool   `json:"_blueprint_export"`
	SchemaVersion   string `json:"schema_version"`
	ExportedAt      int64  `json:"exported_at"`
	ProjectID       string `json:"project_id,omitempty"`
}

// ExportRecord is one document line of an export file.
type ExportRecord struct {
	DocumentType       document.Slot `json:"document_type"`
	Title              string        `json:"title"`
	Content            string        `json:"content"`
	InconsistencyCount int           `json:"inconsistency_count"`
	LastModified       *int64        `json:"last_modified,omitempty"`
}

// ExportDocuments writes a JSONL snapshot of the four documents: a header
// line followed by one line per slot in slot order. The file is written to
// a temp file and renamed into place so an existing export survives a
// failed write.
func (o *Orchestrator) ExportDocuments(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	o.mu.Lock()
	snapshot := o.docs.Snapshot()
	projectID := o.auth.CurrentProject()
	now := o.now()
	o.mu.Unlock()

	path := input.Path
	if path == "" {
		var err error
		if path, err = defaultExportPath(projectID, now); err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(path, PathCheckWrite, o.cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	ok := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !ok {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := ExportHeader{
		BlueprintExport: true,
		SchemaVersion:   ExportSchemaVersion,
		ExportedAt:      now.Unix(),
		ProjectID:       projectID,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	count := 0
	for _, slot := range document.Slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st := snapshot[slot]
		rec := ExportRecord{
			DocumentType:       slot,
			Title:              slot.DisplayName(),
			Content:            st.Content,
			InconsistencyCount: st.InconsistencyCount,
		}
		if st.LastModified != nil {
			ms := st.LastModified.UnixMilli()
			rec.LastModified = &ms
		}
		if err := enc.Encode(rec); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path must not be a symlink")
	}
	// os.Rename refuses to replace an existing file on Windows; keep the old
	// export rather than delete-then-rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	ok = true
	return &ExportOutput{Path: path, Count: count, ExportedAt: now.Unix()}, nil
}

func defaultExportPath(projectID string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	name := "session"
	if projectID != "" {
		name = SanitizeForFilename(projectID)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl", name, now.Format("2006-01-02T150405"))), nil
}
