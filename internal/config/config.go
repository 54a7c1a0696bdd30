package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Database contains SQLite settings. An empty Path places the database in the
// data directory.
type Database struct {
	Path          string `toml:"path"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
}

// Assignment controls batch block assignment.
type Assignment struct {
	Workers          int    `toml:"workers"`
	MaxSpannedBlocks int    `toml:"max_spanned_blocks"`
	BatchLimit       int    `toml:"batch_limit"`
	Method           string `toml:"method"`
}

// PrimeTimeWindow is a day set and time range treated as prime time. When
// Languages is non-empty only spots declaring one of those languages qualify.
type PrimeTimeWindow struct {
	Name      string   `toml:"name"`
	Days      []string `toml:"days"`
	Start     string   `toml:"start"`
	End       string   `toml:"end"`
	Languages []string `toml:"languages"`
}

// Categories holds the business patterns used by the revenue partition.
type Categories struct {
	DirectResponseAgencies     []string          `toml:"direct_response_agencies"`
	OvernightShoppingCustomers []string          `toml:"overnight_shopping_customers"`
	ExcludedRevenueTypes       []string          `toml:"excluded_revenue_types"`
	PrimeTimeName              string            `toml:"prime_time_name"`
	PrimeTime                  []PrimeTimeWindow `toml:"prime_time"`
}

// Roadblocks selects the oracle for roadblock spot membership.
type Roadblocks struct {
	Source string `toml:"source"`
	File   string `toml:"file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	File          string `toml:"file"`
	RetentionDays int    `toml:"retention_days"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
}

// Metrics controls the Prometheus textfile written after each run.
type Metrics struct {
	Enabled      bool   `toml:"enabled"`
	TextfilePath string `toml:"textfile_path"`
}

// Tracing controls OpenTelemetry span export to a local file.
type Tracing struct {
	Enabled     bool   `toml:"enabled"`
	OutputPath  string `toml:"output_path"`
	ServiceName string `toml:"service_name"`
}

// Config encapsulates all configuration values for spotgrid.
//
// Configuration sections:
//   - Paths: data and log directories
//   - Database: SQLite location and busy timeout
//   - Assignment: worker count and attention thresholds for batch runs
//   - Categories: revenue partition patterns and prime-time windows
//   - Roadblocks: oracle selection
//   - Logging: log format, level, and file rotation
//   - Metrics, Tracing: optional run telemetry
type Config struct {
	Paths      Paths      `toml:"paths"`
	Database   Database   `toml:"database"`
	Assignment Assignment `toml:"assignment"`
	Categories Categories `toml:"categories"`
	Roadblocks Roadblocks `toml:"roadblocks"`
	Logging    Logging    `toml:"logging"`
	Metrics    Metrics    `toml:"metrics"`
	Tracing    Tracing    `toml:"tracing"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/spotgrid/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv applies .env files from the config directory and the working
// directory. Variables already present in the environment win.
func loadDotEnv(configDir string) error {
	candidates := []string{filepath.Join(configDir, ".env")}
	if cwd, err := os.Getwd(); err == nil && cwd != configDir {
		candidates = append(candidates, filepath.Join(cwd, ".env"))
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return fmt.Errorf("load %s: %w", candidate, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("spotgrid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if c.Database.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
}

// BatchLockPath returns the lock file guarding batch assignment runs.
func (c *Config) BatchLockPath() string {
	return filepath.Join(c.Paths.DataDir, "assign.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
