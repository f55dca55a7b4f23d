package testsupport

import (
	"path/filepath"
	"testing"

	"racecarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithEventAllowlist overrides the event allow-list on the test config.
func WithEventAllowlist(types ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Search.EventAllowlist = types
	}
}

// WithThreshold overrides the auto-download threshold on the test config.
func WithThreshold(threshold int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Search.AutoDownloadThreshold = threshold
	}
}
