// Package scene defines the user-declared scene model (video assignments
// and visual parameters for tracked objects) and the ordered scene table
// that holds the current script output.
package scene

import (
	"sort"

	"lumen/internal/object"
	"lumen/internal/param"
)

// Scene is one named, user-declared configuration. Identity for
// reconciliation purposes is positional: the scene's index in the table.
type Scene struct {
	ID     string
	Name   string
	Config Config
}

// Config declares which tracked objects a scene uses and how.
type Config struct {
	Hands      Hands
	Balls      map[string]*ObjectConfig
	ShowCamera *bool
	GlobalFoot *FootMapping
}

// Hands holds the per-hand object configurations. A nil entry means the
// hand carries no video in this scene.
type Hands struct {
	Left  *ObjectConfig
	Right *ObjectConfig
}

// ObjectConfig assigns a video source and visual parameters to one tracked
// object.
type ObjectConfig struct {
	URL    string
	Start  *float64
	End    *float64
	Locked *bool
	ZIndex *int
	Foot   *FootMapping
	Params param.Overrides
}

// FootMapping binds the two axes of the foot control signal to parameters.
type FootMapping struct {
	X *AxisMapping
	Y *AxisMapping
}

// AxisMapping maps one normalized control axis onto a parameter range.
// Sensitivity zero means the default of 1.0.
type AxisMapping struct {
	Param       string
	Range       [2]float64
	Sensitivity float64
}

// CameraVisible reports the effective showCamera flag; unset means visible.
func (c Config) CameraVisible() bool {
	if c.ShowCamera == nil {
		return true
	}
	return *c.ShowCamera
}

// ObjectIDs returns the identifiers of every object the config declares,
// hands first, balls in sorted id order.
func (c Config) ObjectIDs() []object.ID {
	ids := make([]object.ID, 0, 2+len(c.Balls))
	if c.Hands.Left != nil {
		ids = append(ids, object.HandLeft())
	}
	if c.Hands.Right != nil {
		ids = append(ids, object.HandRight())
	}
	ballIDs := make([]string, 0, len(c.Balls))
	for id := range c.Balls {
		ballIDs = append(ballIDs, id)
	}
	sort.Strings(ballIDs)
	for _, id := range ballIDs {
		ids = append(ids, object.BallID(id))
	}
	return ids
}

// ObjectConfig returns the declaration for id, or nil when the scene does
// not use that object.
func (c Config) ObjectConfig(id object.ID) *ObjectConfig {
	switch id.Kind {
	case object.KindHandLeft:
		return c.Hands.Left
	case object.KindHandRight:
		return c.Hands.Right
	case object.KindBall:
		return c.Balls[id.Ball]
	}
	return nil
}

// StructurallyDiffers reports whether the set of declared object slots or
// the camera flag changed. These edits force a full scene reload.
func (c Config) StructurallyDiffers(other Config) bool {
	if (c.Hands.Left == nil) != (other.Hands.Left == nil) {
		return true
	}
	if (c.Hands.Right == nil) != (other.Hands.Right == nil) {
		return true
	}
	if len(c.Balls) != len(other.Balls) {
		return true
	}
	for id := range c.Balls {
		if _, ok := other.Balls[id]; !ok {
			return true
		}
	}
	return c.CameraVisible() != other.CameraVisible()
}

// ChangedURLs returns the objects present in both configs whose source
// reference differs. Callers must have ruled out structural changes first.
func ChangedURLs(old, new Config) []object.ID {
	var changed []object.ID
	for _, id := range new.ObjectIDs() {
		oldCfg := old.ObjectConfig(id)
		newCfg := new.ObjectConfig(id)
		if oldCfg == nil || newCfg == nil {
			continue
		}
		if oldCfg.URL != newCfg.URL {
			changed = append(changed, id)
		}
	}
	return changed
}

// Equal reports full declaration equality, used to distinguish a
// parameters-only edit from no change at all.
func (c Config) Equal(other Config) bool {
	if c.StructurallyDiffers(other) {
		return false
	}
	if !c.GlobalFoot.Equal(other.GlobalFoot) {
		return false
	}
	for _, id := range c.ObjectIDs() {
		if !c.ObjectConfig(id).equal(other.ObjectConfig(id)) {
			return false
		}
	}
	return true
}

func (o *ObjectConfig) equal(other *ObjectConfig) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.URL != other.URL {
		return false
	}
	if !eqFloatPtr(o.Start, other.Start) || !eqFloatPtr(o.End, other.End) {
		return false
	}
	if !eqBoolPtr(o.Locked, other.Locked) || !eqIntPtr(o.ZIndex, other.ZIndex) {
		return false
	}
	if !o.Foot.Equal(other.Foot) {
		return false
	}
	return o.Params.Equal(other.Params)
}

// Equal compares two foot mappings, treating nil as empty.
func (m *FootMapping) Equal(other *FootMapping) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.X.equal(other.X) && m.Y.equal(other.Y)
}

func (a *AxisMapping) equal(other *AxisMapping) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}

// EffectiveSensitivity returns the axis sensitivity with the 1.0 default
// applied.
func (a AxisMapping) EffectiveSensitivity() float64 {
	if a.Sensitivity == 0 {
		return 1.0
	}
	return a.Sensitivity
}

func eqFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// EffectiveParams merges the object's declared overrides, including the
// dedicated Locked/ZIndex fields, over the parameter defaults.
func (o *ObjectConfig) EffectiveParams() param.Set {
	set := param.Effective(o.Params)
	if o.Locked != nil {
		set.Locked = *o.Locked
	}
	if o.ZIndex != nil {
		set.ZIndex = *o.ZIndex
	}
	return set
}

// CreateOptions derives the renderable creation hints from the declaration.
func (o *ObjectConfig) CreateOptions() object.CreateOptions {
	opts := object.CreateOptions{Scale: 1}
	if o.Start != nil {
		opts.Start = *o.Start
	}
	if o.End != nil {
		opts.End = *o.End
	}
	if o.ZIndex != nil {
		opts.ZIndex = *o.ZIndex
	}
	if o.Params.Scale != nil {
		opts.Scale = *o.Params.Scale
	}
	return opts
}
