package ipc

import "lumen/internal/engine"

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/engine status information.
type StatusResponse struct {
	Running  bool          `json:"running"`
	PID      int           `json:"pid"`
	LockPath string        `json:"lock_path"`
	Engine   engine.Status `json:"engine"`
}

// StopRequest asks the daemon process to shut down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// ScenesRequest lists declared scenes.
type ScenesRequest struct{}

// SceneInfo mirrors the engine scene DTO for IPC callers.
type SceneInfo = engine.SceneInfo

// ScenesResponse contains the declared scene list.
type ScenesResponse struct {
	Scenes []SceneInfo `json:"scenes"`
}

// NextRequest advances to the following scene.
type NextRequest struct{}

// PreviousRequest steps back to the preceding scene.
type PreviousRequest struct{}

// NavigateResponse reports the scene index after a navigation step.
type NavigateResponse struct {
	Index int `json:"index"`
}

// LoadRequest switches directly to a scene by index.
type LoadRequest struct {
	Index int `json:"index"`
}

// LoadResponse acknowledges a direct scene load.
type LoadResponse struct {
	Index int `json:"index"`
}

// RunScriptRequest re-executes a scene-declaration script. When Source is
// set it is executed directly; otherwise Path names a script file readable
// by the daemon. An empty Path falls back to the configured startup script.
type RunScriptRequest struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// RunScriptResponse summarizes the reconciliation outcome.
type RunScriptResponse struct {
	Summary string `json:"summary"`
	Scenes  int    `json:"scenes"`
}
