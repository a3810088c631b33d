// Package param holds the visual parameter model: the full parameter set
// applied to a tracked object's renderable, per-scene overrides, and the
// store of effective parameters keyed by object identity.
package param

// Set is the complete visual parameter set for one tracked object. Filter
// values use identity defaults so an empty override leaves the video
// untouched.
type Set struct {
	Volume     float64
	Speed      float64
	Hue        float64
	Saturation float64
	Brightness float64
	Contrast   float64
	Blur       float64
	Scale      float64
	Opacity    float64
	Grayscale  float64
	Sepia      float64
	ClipPath   string
	Locked     bool
	ZIndex     int
}

// Defaults returns the identity parameter set.
func Defaults() Set {
	return Set{
		Volume:     1,
		Speed:      1,
		Hue:        0,
		Saturation: 1,
		Brightness: 1,
		Contrast:   1,
		Blur:       0,
		Scale:      1,
		Opacity:    1,
		Grayscale:  0,
		Sepia:      0,
	}
}

// Overrides carries the optional per-object parameter fields a scene config
// may declare. Nil fields leave the default untouched.
type Overrides struct {
	Volume     *float64 `toml:"volume"`
	Speed      *float64 `toml:"speed"`
	Hue        *float64 `toml:"hue"`
	Saturation *float64 `toml:"saturation"`
	Brightness *float64 `toml:"brightness"`
	Contrast   *float64 `toml:"contrast"`
	Blur       *float64 `toml:"blur"`
	Scale      *float64 `toml:"scale"`
	Opacity    *float64 `toml:"opacity"`
	Grayscale  *float64 `toml:"grayscale"`
	Sepia      *float64 `toml:"sepia"`
	ClipPath   *string  `toml:"clip_path"`
	Locked     *bool    `toml:"locked"`
	ZIndex     *int     `toml:"z_index"`
}

// IsZero reports whether no override field is set.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// Equal compares two override sets field by field, treating nil and set
// pointers as distinct.
func (o Overrides) Equal(other Overrides) bool {
	return eqF(o.Volume, other.Volume) &&
		eqF(o.Speed, other.Speed) &&
		eqF(o.Hue, other.Hue) &&
		eqF(o.Saturation, other.Saturation) &&
		eqF(o.Brightness, other.Brightness) &&
		eqF(o.Contrast, other.Contrast) &&
		eqF(o.Blur, other.Blur) &&
		eqF(o.Scale, other.Scale) &&
		eqF(o.Opacity, other.Opacity) &&
		eqF(o.Grayscale, other.Grayscale) &&
		eqF(o.Sepia, other.Sepia) &&
		eqS(o.ClipPath, other.ClipPath) &&
		eqB(o.Locked, other.Locked) &&
		eqI(o.ZIndex, other.ZIndex)
}

func eqF(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqS(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqB(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqI(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Merge returns a copy of s with every set override applied on top.
func (s Set) Merge(o Overrides) Set {
	if o.Volume != nil {
		s.Volume = *o.Volume
	}
	if o.Speed != nil {
		s.Speed = *o.Speed
	}
	if o.Hue != nil {
		s.Hue = *o.Hue
	}
	if o.Saturation != nil {
		s.Saturation = *o.Saturation
	}
	if o.Brightness != nil {
		s.Brightness = *o.Brightness
	}
	if o.Contrast != nil {
		s.Contrast = *o.Contrast
	}
	if o.Blur != nil {
		s.Blur = *o.Blur
	}
	if o.Scale != nil {
		s.Scale = *o.Scale
	}
	if o.Opacity != nil {
		s.Opacity = *o.Opacity
	}
	if o.Grayscale != nil {
		s.Grayscale = *o.Grayscale
	}
	if o.Sepia != nil {
		s.Sepia = *o.Sepia
	}
	if o.ClipPath != nil {
		s.ClipPath = *o.ClipPath
	}
	if o.Locked != nil {
		s.Locked = *o.Locked
	}
	if o.ZIndex != nil {
		s.ZIndex = *o.ZIndex
	}
	return s
}

// Effective merges overrides over the defaults in one step.
func Effective(o Overrides) Set {
	return Defaults().Merge(o)
}

// SetField assigns a numeric parameter by its script-facing name. It returns
// false when the name does not resolve to a numeric field, which callers
// treat as a malformed mapping.
func (s *Set) SetField(name string, value float64) bool {
	switch name {
	case "volume":
		s.Volume = value
	case "speed":
		s.Speed = value
	case "hue":
		s.Hue = value
	case "saturation":
		s.Saturation = value
	case "brightness":
		s.Brightness = value
	case "contrast":
		s.Contrast = value
	case "blur":
		s.Blur = value
	case "scale":
		s.Scale = value
	case "opacity":
		s.Opacity = value
	case "grayscale":
		s.Grayscale = value
	case "sepia":
		s.Sepia = value
	default:
		return false
	}
	return true
}

// Field reads a numeric parameter by its script-facing name.
func (s Set) Field(name string) (float64, bool) {
	switch name {
	case "volume":
		return s.Volume, true
	case "speed":
		return s.Speed, true
	case "hue":
		return s.Hue, true
	case "saturation":
		return s.Saturation, true
	case "brightness":
		return s.Brightness, true
	case "contrast":
		return s.Contrast, true
	case "blur":
		return s.Blur, true
	case "scale":
		return s.Scale, true
	case "opacity":
		return s.Opacity, true
	case "grayscale":
		return s.Grayscale, true
	case "sepia":
		return s.Sepia, true
	}
	return 0, false
}
