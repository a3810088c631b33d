package testsupport

import (
	"path/filepath"
	"testing"

	"lumen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "lumen.sock")
	cfg.Paths.LockPath = filepath.Join(base, "lumen.lock")
	cfg.Tracking.ServerURL = "ws://127.0.0.1:0"
	cfg.Script.Path = filepath.Join(base, "scenes.lua")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithTrackingURL overrides the tracking server endpoint on the test config.
func WithTrackingURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Tracking.ServerURL = url
	}
}

// WithScriptPath overrides the startup script location on the test config.
func WithScriptPath(path string) ConfigOption {
	return func(c *config.Config) {
		c.Script.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
