package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DirName is the name of the per-user and per-repo configuration directory.
const DirName = ".blueprint"

// Config holds application configuration.
type Config struct {
	// StorageDirectory prefixes the virtual path of every imported file.
	// Empty means files are addressed by their derived name only.
	StorageDirectory string `json:"storage_directory,omitempty"`

	// ApplyDelayMs is the fixed delay before a suggestion or wizard completion resolves.
	ApplyDelayMs int `json:"apply_delay_ms,omitempty"`

	// NoDelay resolves deferred completions on the next queue run instead of
	// after ApplyDelayMs. Useful for scripted CLI use.
	NoDelay bool `json:"no_delay,omitempty"`

	// MaxImportBytes is the largest upload accepted by file import.
	MaxImportBytes int `json:"max_import_bytes,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.blueprint/files require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type prefixes to disable entirely.
	// Known types: "document", "item", "wizard", "file", "auth", "project".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// LogFile is the rotated JSON log file. Relative paths are resolved against the base dir.
	LogFile string `json:"log_file,omitempty"`

	// Debug enables debug-level console logging.
	Debug bool `json:"debug,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ApplyDelayMs:   1500,
		MaxImportBytes: 10 * 1024 * 1024,
		LogFile:        "blueprint.log",
	}
}

// ApplyDelay returns the deferred-completion delay as a duration.
func (c *Config) ApplyDelay() time.Duration {
	if c.NoDelay || c.ApplyDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.ApplyDelayMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.blueprint) and repo (.blueprint) directories.
// Repo config is found by walking upward from startDir to find the nearest .blueprint/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .blueprint/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv overlays BLUEPRINT_* environment variables onto cfg.
// Malformed numeric values are ignored.
func ApplyEnv(cfg *Config) *Config {
	if v, ok := os.LookupEnv("BLUEPRINT_STORAGE_DIR"); ok {
		cfg.StorageDirectory = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("BLUEPRINT_APPLY_DELAY_MS"); ok {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ms >= 0 {
			cfg.ApplyDelayMs = ms
			cfg.NoDelay = ms == 0
		}
	}
	if v, ok := os.LookupEnv("BLUEPRINT_DEBUG"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Debug = b
		}
	}
	return cfg
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.StorageDirectory = overlay.StorageDirectory
	if result.StorageDirectory == "" {
		result.StorageDirectory = base.StorageDirectory
	}

	result.ApplyDelayMs = overlay.ApplyDelayMs
	if result.ApplyDelayMs == 0 {
		result.ApplyDelayMs = base.ApplyDelayMs
	}

	result.MaxImportBytes = overlay.MaxImportBytes
	if result.MaxImportBytes == 0 {
		result.MaxImportBytes = base.MaxImportBytes
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.LogFile = overlay.LogFile
	if result.LogFile == "" {
		result.LogFile = base.LogFile
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.NoDelay = base.NoDelay || overlay.NoDelay
	result.Debug = base.Debug || overlay.Debug

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
