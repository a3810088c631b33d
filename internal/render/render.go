// Package render provides the daemon's built-in renderable factory. It keeps
// a lightweight state record per video object and logs every mutation, which
// is enough for the daemon to run headless while an external renderer (or a
// test harness) consumes the same interfaces.
package render

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"lumen/internal/logging"
	"lumen/internal/object"
	"lumen/internal/param"
)

// Factory builds headless renderables. It satisfies object.Factory.
type Factory struct {
	logger  *slog.Logger
	created atomic.Int64
}

// NewFactory returns a factory that logs object lifecycle events.
func NewFactory(logger *slog.Logger) *Factory {
	return &Factory{logger: logging.NewComponentLogger(logger, "render")}
}

// Create builds a new headless video element for the resolved URL.
func (f *Factory) Create(id object.ID, url string, opts object.CreateOptions) (object.Renderable, error) {
	f.created.Add(1)
	f.logger.Info("video element created",
		logging.String(logging.FieldObject, id.Key()),
		logging.String("url", url),
		logging.Float64("start", opts.Start),
		logging.Float64("end", opts.End),
		logging.Int("z_index", opts.ZIndex))
	return &element{id: id, url: url, opts: opts, logger: f.logger}, nil
}

// Created returns the number of elements built since startup.
func (f *Factory) Created() int64 { return f.created.Load() }

// element is one live headless video object.
type element struct {
	mu       sync.Mutex
	id       object.ID
	url      string
	opts     object.CreateOptions
	logger   *slog.Logger
	position object.Point
	visible  bool
	params   param.Set
	torn     bool
}

func (e *element) ApplyParameters(set param.Set) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.torn || e.params == set {
		return
	}
	e.params = set
	e.logger.Debug("parameters applied",
		logging.String(logging.FieldObject, e.id.Key()),
		logging.Float64("volume", set.Volume),
		logging.Float64("speed", set.Speed),
		logging.Float64("scale", set.Scale))
}

func (e *element) SetPosition(pos object.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.torn {
		return
	}
	e.position = pos
}

func (e *element) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.torn || e.visible == visible {
		return
	}
	e.visible = visible
	e.logger.Debug("visibility changed",
		logging.String(logging.FieldObject, e.id.Key()),
		logging.Bool("visible", visible))
}

func (e *element) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.torn {
		return
	}
	e.torn = true
	e.logger.Info("video element torn down",
		logging.String(logging.FieldObject, e.id.Key()),
		logging.String("url", e.url))
}

// Camera is the headless camera passthrough layer. It satisfies
// object.CameraControl.
type Camera struct {
	mu      sync.Mutex
	visible bool
	logger  *slog.Logger
}

// NewCamera returns a camera layer that starts hidden.
func NewCamera(logger *slog.Logger) *Camera {
	return &Camera{logger: logging.NewComponentLogger(logger, "render")}
}

// SetVisible shows or hides the camera passthrough.
func (c *Camera) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible == visible {
		return
	}
	c.visible = visible
	c.logger.Debug("camera visibility changed", logging.Bool("visible", visible))
}

// Visible reports the current camera passthrough state.
func (c *Camera) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}
