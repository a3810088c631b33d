package config

const (
	defaultLogDir              = "~/.local/share/lumen/logs"
	defaultSocketPath          = "~/.local/share/lumen/lumen.sock"
	defaultLockPath            = "~/.local/share/lumen/lumen.lock"
	defaultTrackingURL         = "ws://127.0.0.1:8765"
	defaultResolveTimeout      = 30
	defaultReconnectMaxSeconds = 30
	defaultScriptPath          = "~/.config/lumen/scenes.lua"
	defaultScriptTimeout       = 5
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
			LockPath:   defaultLockPath,
		},
		Tracking: Tracking{
			// ServerURL stays empty so LUMEN_TRACKING_URL can take effect
			// during normalization.
			ResolveTimeout:      defaultResolveTimeout,
			ReconnectMaxSeconds: defaultReconnectMaxSeconds,
		},
		Script: Script{
			Path:           defaultScriptPath,
			TimeoutSeconds: defaultScriptTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
