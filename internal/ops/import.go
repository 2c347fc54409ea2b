package ops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/blueprint/internal/document"
	"github.com/hpungsan/blueprint/internal/errors"
	"github.com/hpungsan/blueprint/internal/ingest"
	"github.com/hpungsan/blueprint/internal/recordstore"
)

// ImportInput contains parameters for ImportFile.
type ImportInput struct {
	FileName     string // required; only the base name is used
	Data         []byte
	DocumentType string // optional, defaults to Strategy
}

// ImportOutput contains the result of an import.
type ImportOutput struct {
	Path   string         `json:"path"`
	Slot   document.Slot  `json:"slot"`
	Record *ingest.Record `json:"record"`
}

// ImportFile normalizes an uploaded file, persists the record under its
// virtual path and patches a placeholder into the target slot.
//
// Parse and persistence failures abort the import; nothing is patched.
func (o *Orchestrator) ImportFile(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, errors.NewInvalidRequest("file name is required")
	}
	if max := o.cfg.MaxImportBytes; max > 0 && len(input.Data) > max {
		return nil, errors.NewFileTooLarge(max, len(input.Data))
	}
	slot := document.SlotOrDefault(input.DocumentType)

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.normalizer.Normalize(name, input.Data, string(slot))
	if err != nil {
		return nil, err
	}

	path := recordstore.VirtualPath(o.storageDir, string(slot), name)
	if _, err := o.files.Persist(ctx, path, rec); err != nil {
		o.logger.Warn("import not persisted", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	if err := o.docs.Patch(slot, ingest.Placeholder(rec)); err != nil {
		return nil, err
	}

	o.say(RoleUser, fmt.Sprintf("Uploaded %s", name))
	o.say(RoleAssistant, fmt.Sprintf("I've imported %s into your %s as %s data.",
		name, slot.DisplayName(), ingest.Label(rec.Format)))
	o.logger.Info("file imported",
		zap.String("path", path),
		zap.String("slot", string(slot)),
		zap.String("format", string(rec.Format)))

	return &ImportOutput{Path: path, Slot: slot, Record: rec}, nil
}

// ImportPathInput contains parameters for ImportPath.
type ImportPathInput struct {
	Path         string // required; must pass ValidatePath in read mode
	DocumentType string
}

// ImportPath reads a local file and imports it with ImportFile.
func (o *Orchestrator) ImportPath(ctx context.Context, input ImportPathInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, o.cfg); err != nil {
		return nil, err
	}

	f, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer f.Close()

	// Read one byte past the limit so an oversized file is detected without
	// loading all of it.
	limit := o.cfg.MaxImportBytes
	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, int64(limit)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if limit > 0 && len(data) > limit {
		size := len(data)
		if info, err := f.Stat(); err == nil {
			size = int(info.Size())
		}
		return nil, errors.NewFileTooLarge(limit, size)
	}

	return o.ImportFile(ctx, ImportInput{
		FileName:     filepath.Base(input.Path),
		Data:         data,
		DocumentType: input.DocumentType,
	})
}
