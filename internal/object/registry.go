package object

import (
	"log/slog"
	"sort"

	"lumen/internal/logging"
)

type live struct {
	handle Renderable
	locked bool
}

// Registry maps tracked-object identifiers to their live renderable handle.
// It is the single owner of handles: installing over an existing entry tears
// the old handle down first, so no video element is ever orphaned.
type Registry struct {
	objects map[ID]*live
	camera  CameraControl
	logger  *slog.Logger
}

// NewRegistry constructs an empty registry. The camera control may be nil
// when no passthrough layer exists.
func NewRegistry(camera CameraControl, logger *slog.Logger) *Registry {
	return &Registry{
		objects: make(map[ID]*live),
		camera:  camera,
		logger:  logging.NewComponentLogger(logger, "registry"),
	}
}

// Install registers a live handle for id, replacing (and tearing down) any
// previous handle.
func (r *Registry) Install(id ID, handle Renderable, locked bool) {
	if prev, ok := r.objects[id]; ok {
		prev.handle.Teardown()
		r.logger.Debug("replaced live object", logging.String("object", id.Key()))
	}
	r.objects[id] = &live{handle: handle, locked: locked}
}

// Remove tears down and forgets the handle for id, if present.
func (r *Registry) Remove(id ID) {
	entry, ok := r.objects[id]
	if !ok {
		return
	}
	entry.handle.Teardown()
	delete(r.objects, id)
}

// RemoveAll tears down every live object.
func (r *Registry) RemoveAll() {
	for id, entry := range r.objects {
		entry.handle.Teardown()
		delete(r.objects, id)
	}
}

// Get returns the live handle for id.
func (r *Registry) Get(id ID) (Renderable, bool) {
	entry, ok := r.objects[id]
	if !ok {
		return nil, false
	}
	return entry.handle, true
}

// Len returns the number of live objects.
func (r *Registry) Len() int { return len(r.objects) }

// IDs returns the live object identifiers ordered by key.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Key() < ids[j].Key() })
	return ids
}

// UpdateHand applies a tracked hand observation. Undetected hands are hidden
// rather than torn down; detected hands move to the centroid of their
// landmarks. A hand with no live handle is a no-op.
func (r *Registry) UpdateHand(id ID, detected bool, landmarks []Point) {
	entry, ok := r.objects[id]
	if !ok {
		return
	}
	entry.handle.SetVisible(detected)
	if !detected || len(landmarks) == 0 {
		return
	}
	entry.handle.SetPosition(centroid(landmarks))
}

// UpdateBall applies a tracked ball position. Locked balls keep their
// current position. A ball with no live handle is a no-op.
func (r *Registry) UpdateBall(id ID, pos Point) {
	entry, ok := r.objects[id]
	if !ok || entry.locked {
		return
	}
	entry.handle.SetPosition(pos)
}

// SetCameraVisible toggles the camera passthrough layer.
func (r *Registry) SetCameraVisible(visible bool) {
	if r.camera == nil {
		return
	}
	r.camera.SetVisible(visible)
}

func centroid(points []Point) Point {
	var sum Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: sum.X / n, Y: sum.Y / n}
}
