// Package testsupport provides shared fixtures: a recording renderable
// factory standing in for the external renderer, a scriptable resolver, and
// test configuration helpers.
package testsupport

import (
	"fmt"
	"sync"

	"lumen/internal/object"
	"lumen/internal/param"
)

// RenderOp is one recorded operation on a fake renderable.
type RenderOp struct {
	Object object.ID
	Op     string // "create", "params", "position", "visible", "teardown"
	Params param.Set
	Pos    object.Point
	Shown  bool
}

// RecordingFactory creates FakeRenderables and keeps a shared operation log
// so tests can assert exactly which side effects reconciliation produced.
type RecordingFactory struct {
	mu      sync.Mutex
	ops     []RenderOp
	handles map[string][]*FakeRenderable
	// FailFor makes Create return an error for the listed object keys.
	FailFor map[string]bool
}

// NewRecordingFactory returns an empty factory.
func NewRecordingFactory() *RecordingFactory {
	return &RecordingFactory{
		handles: make(map[string][]*FakeRenderable),
		FailFor: make(map[string]bool),
	}
}

// Create implements object.Factory.
func (f *RecordingFactory) Create(id object.ID, url string, opts object.CreateOptions) (object.Renderable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFor[id.Key()] {
		return nil, fmt.Errorf("create %s: refused by test factory", id.Key())
	}
	h := &FakeRenderable{factory: f, id: id, URL: url, Opts: opts}
	f.handles[id.Key()] = append(f.handles[id.Key()], h)
	f.ops = append(f.ops, RenderOp{Object: id, Op: "create"})
	return h, nil
}

// Ops returns a copy of the recorded operations in order.
func (f *RecordingFactory) Ops() []RenderOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RenderOp, len(f.ops))
	copy(out, f.ops)
	return out
}

// CountOps returns how many operations of the given kind were recorded for
// the object key; an empty key matches every object.
func (f *RecordingFactory) CountOps(key, op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.ops {
		if rec.Op != op {
			continue
		}
		if key == "" || rec.Object.Key() == key {
			n++
		}
	}
	return n
}

// Creations returns how many renderables were ever created for a key.
func (f *RecordingFactory) Creations(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles[key])
}

// Latest returns the most recently created renderable for a key.
func (f *RecordingFactory) Latest(key string) *FakeRenderable {
	f.mu.Lock()
	defer f.mu.Unlock()
	hs := f.handles[key]
	if len(hs) == 0 {
		return nil
	}
	return hs[len(hs)-1]
}

func (f *RecordingFactory) record(op RenderOp) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

// FakeRenderable records every call made through the narrow renderable
// capability.
type FakeRenderable struct {
	factory *RecordingFactory
	id      object.ID

	mu        sync.Mutex
	URL       string
	Opts      object.CreateOptions
	LastSet   param.Set
	LastPos   object.Point
	Visible   bool
	TornDown  bool
	ParamApplies int
}

// ApplyParameters implements object.Renderable.
func (r *FakeRenderable) ApplyParameters(set param.Set) {
	r.mu.Lock()
	r.LastSet = set
	r.ParamApplies++
	r.mu.Unlock()
	r.factory.record(RenderOp{Object: r.id, Op: "params", Params: set})
}

// SetPosition implements object.Renderable.
func (r *FakeRenderable) SetPosition(pos object.Point) {
	r.mu.Lock()
	r.LastPos = pos
	r.mu.Unlock()
	r.factory.record(RenderOp{Object: r.id, Op: "position", Pos: pos})
}

// SetVisible implements object.Renderable.
func (r *FakeRenderable) SetVisible(visible bool) {
	r.mu.Lock()
	r.Visible = visible
	r.mu.Unlock()
	r.factory.record(RenderOp{Object: r.id, Op: "visible", Shown: visible})
}

// Teardown implements object.Renderable.
func (r *FakeRenderable) Teardown() {
	r.mu.Lock()
	r.TornDown = true
	r.mu.Unlock()
	r.factory.record(RenderOp{Object: r.id, Op: "teardown"})
}

// Snapshot returns the current recorded state under the lock.
func (r *FakeRenderable) Snapshot() (param.Set, object.Point, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.LastSet, r.LastPos, r.Visible, r.TornDown
}

// FakeCamera records camera visibility toggles.
type FakeCamera struct {
	mu      sync.Mutex
	visible bool
	toggles int
}

// SetVisible implements object.CameraControl.
func (c *FakeCamera) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = visible
	c.toggles++
}

// Visible returns the last applied visibility.
func (c *FakeCamera) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Toggles returns how many times visibility was set.
func (c *FakeCamera) Toggles() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggles
}
