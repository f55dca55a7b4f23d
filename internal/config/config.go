package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Calendar contains configuration for the season schedule source.
type Calendar struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Search contains the global search preferences candidates are scored
// against. Scheduled searches may override individual fields per item.
type Search struct {
	MinResolution         string   `toml:"min_resolution"`
	MaxResolution         string   `toml:"max_resolution"`
	AllowHDR              bool     `toml:"allow_hdr"`
	PreferredCodecs       []string `toml:"preferred_codecs"`
	PreferredGroups       []string `toml:"preferred_groups"`
	AutoDownloadThreshold int      `toml:"auto_download_threshold"`
	DefaultDownloaderID   int64    `toml:"default_downloader_id"`
	EventAllowlist        []string `toml:"event_allowlist"`
	ResultLimit           int      `toml:"result_limit"`
	RequestTimeout        int      `toml:"request_timeout"`
}

// Scheduler contains timing configuration for the tick and poll loops.
type Scheduler struct {
	TickInterval int `toml:"tick_interval"`
	PollInterval int `toml:"poll_interval"`
}

// NotificationTarget describes a single notification destination.
type NotificationTarget struct {
	Type   string   `toml:"type"`
	URL    string   `toml:"url"`
	Secret string   `toml:"secret"`
	Events []string `toml:"events"`
}

// Notifications contains notification delivery configuration.
type Notifications struct {
	RequestTimeout int                  `toml:"request_timeout"`
	Targets        []NotificationTarget `toml:"targets"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Racecarr.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Calendar: season schedule source endpoint
//   - Search: global candidate scoring preferences and the event allow-list
//   - Scheduler: tick/poll loop intervals
//   - Notifications: delivery targets and timeouts
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Calendar      Calendar      `toml:"calendar"`
	Search        Search        `toml:"search"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/racecarr/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
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

	projectPath, err := filepath.Abs("racecarr.toml")
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

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "racecarr.db")
}

// LogPath returns the daemon log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "racecarr.log")
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
