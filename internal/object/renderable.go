package object

import "lumen/internal/param"

// Point is a normalized 2D position in the camera frame, origin top-left.
type Point struct {
	X float64
	Y float64
}

// Renderable is the narrow capability the engine holds on a live video
// object. The renderer behind it (3D scene graph, texture upload, filter
// construction) is an external collaborator.
type Renderable interface {
	// ApplyParameters pushes the full effective parameter set.
	ApplyParameters(set param.Set)
	// SetPosition moves the object to a normalized camera-frame position.
	SetPosition(pos Point)
	// SetVisible shows or hides the object without tearing it down.
	SetVisible(visible bool)
	// Teardown releases the underlying video element. The handle must not
	// be used afterwards.
	Teardown()
}

// CreateOptions carries the playback and placement hints resolved from a
// scene's object config.
type CreateOptions struct {
	Start  float64
	End    float64
	ZIndex int
	Scale  float64
}

// Factory creates live renderables for resolved video URLs.
type Factory interface {
	Create(id ID, url string, opts CreateOptions) (Renderable, error)
}

// CameraControl toggles visibility of the camera passthrough layer.
type CameraControl interface {
	SetVisible(visible bool)
}
