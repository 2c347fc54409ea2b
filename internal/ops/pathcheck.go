package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/blueprint/internal/config"
	"github.com/hpungsan/blueprint/internal/errors"
)

// PathCheckMode selects the rules ValidatePath applies.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // importing a local file
	PathCheckWrite                      // writing an export
)

// Subdirectories of ~/.blueprint that local import and export default to.
const (
	FilesDirName   = "files"
	ExportsDirName = "exports"
)

// ValidatePath checks a local path before ImportPath reads it or
// ExportDocuments writes it.
//
// Traversal (..) is always rejected, as is a symlink as the final component.
// Writes must end in .jsonl. Unless AllowUnsafePaths is set the file must sit
// directly in the mode's default directory (~/.blueprint/files for reads,
// ~/.blueprint/exports for writes) or in one of AllowedPaths; nested
// subdirectories are refused so no intermediate component can be swapped for
// a symlink after the check.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if mode == PathCheckWrite && filepath.Ext(cleaned) != ".jsonl" {
		return errors.NewInvalidRequest("export path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowed, err := allowedDirs(mode, cfg)
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !directlyIn(parent, allowed) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
		}
		if info, err := os.Lstat(parent); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// allowedDirs returns the mode's default directory plus absolute entries of
// AllowedPaths, with symlinked entries resolved to their targets.
func allowedDirs(mode PathCheckMode, cfg *config.Config) ([]string, error) {
	def, err := defaultDir(mode)
	if err != nil {
		return nil, err
	}
	dirs := []string{def}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		out = append(out, abs)
	}
	return out, nil
}

func directlyIn(parent string, dirs []string) bool {
	parent = filepath.Clean(parent)
	for _, d := range dirs {
		if parent == filepath.Clean(d) {
			return true
		}
	}
	return false
}

func defaultDir(mode PathCheckMode) (string, error) {
	if mode == PathCheckWrite {
		return DefaultExportsDir()
	}
	return DefaultFilesDir()
}

// DefaultExportsDir returns ~/.blueprint/exports.
func DefaultExportsDir() (string, error) {
	return homeSubdir(ExportsDirName)
}

// DefaultFilesDir returns ~/.blueprint/files.
func DefaultFilesDir() (string, error) {
	return homeSubdir(FilesDirName)
}

func homeSubdir(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(home, config.DirName, name), nil
}

// containsTraversal reports whether any component of path is "..",
// splitting on both the OS separator and "/".
func containsTraversal(path string) bool {
	split := func(r rune) bool { return r == '/' || r == filepath.Separator }
	for _, part := range strings.FieldsFunc(path, split) {
		if part == ".." {
			return true
		}
	}
	return false
}

// SanitizeForFilename turns s into a safe single path component.
func SanitizeForFilename(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", "..", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
