package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTracking(); err != nil {
		return err
	}
	if err := c.normalizeScript(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTracking() error {
	if c.Tracking.ServerURL == "" {
		if value, ok := os.LookupEnv("LUMEN_TRACKING_URL"); ok {
			c.Tracking.ServerURL = value
		}
	}
	c.Tracking.ServerURL = strings.TrimSpace(c.Tracking.ServerURL)
	if c.Tracking.ServerURL == "" {
		c.Tracking.ServerURL = defaultTrackingURL
	}
	if c.Tracking.ResolveTimeout <= 0 {
		c.Tracking.ResolveTimeout = defaultResolveTimeout
	}
	if c.Tracking.ReconnectMaxSeconds <= 0 {
		c.Tracking.ReconnectMaxSeconds = defaultReconnectMaxSeconds
	}
	return nil
}

func (c *Config) normalizeScript() error {
	if strings.TrimSpace(c.Script.Path) == "" {
		c.Script.Path = defaultScriptPath
	}
	var err error
	if c.Script.Path, err = expandPath(c.Script.Path); err != nil {
		return fmt.Errorf("script.path: %w", err)
	}
	if c.Script.TimeoutSeconds <= 0 {
		c.Script.TimeoutSeconds = defaultScriptTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
