package scene_test

import (
	"testing"

	"lumen/internal/object"
	"lumen/internal/scene"
)

func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func cfg(ballURLs map[string]string) scene.Config {
	c := scene.Config{Balls: make(map[string]*scene.ObjectConfig)}
	for id, url := range ballURLs {
		c.Balls[id] = &scene.ObjectConfig{URL: url}
	}
	return c
}

func TestObjectIDsOrderedHandsFirst(t *testing.T) {
	c := cfg(map[string]string{"2": "x", "10": "y"})
	c.Hands.Right = &scene.ObjectConfig{URL: "r"}

	ids := c.ObjectIDs()
	want := []string{"hand-right", "ball-10", "ball-2"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i, id := range ids {
		if id.Key() != want[i] {
			t.Fatalf("ids[%d] = %s, want %s", i, id.Key(), want[i])
		}
	}
}

func TestStructurallyDiffers(t *testing.T) {
	base := cfg(map[string]string{"0": "a"})

	cases := []struct {
		name  string
		other scene.Config
		want  bool
	}{
		{"identical", cfg(map[string]string{"0": "a"}), false},
		{"url change only", cfg(map[string]string{"0": "b"}), false},
		{"ball added", cfg(map[string]string{"0": "a", "1": "b"}), true},
		{"ball swapped", cfg(map[string]string{"1": "a"}), true},
		{"hand added", func() scene.Config {
			c := cfg(map[string]string{"0": "a"})
			c.Hands.Left = &scene.ObjectConfig{URL: "h"}
			return c
		}(), true},
		{"camera toggled", func() scene.Config {
			c := cfg(map[string]string{"0": "a"})
			c.ShowCamera = boolPtr(false)
			return c
		}(), true},
		{"camera explicitly true", func() scene.Config {
			c := cfg(map[string]string{"0": "a"})
			c.ShowCamera = boolPtr(true)
			return c
		}(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.StructurallyDiffers(tc.other); got != tc.want {
				t.Fatalf("StructurallyDiffers = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChangedURLs(t *testing.T) {
	old := cfg(map[string]string{"0": "a", "1": "b"})
	old.Hands.Left = &scene.ObjectConfig{URL: "h"}
	updated := cfg(map[string]string{"0": "a2", "1": "b"})
	updated.Hands.Left = &scene.ObjectConfig{URL: "h"}

	changed := scene.ChangedURLs(old, updated)
	if len(changed) != 1 || changed[0] != object.BallID("0") {
		t.Fatalf("ChangedURLs = %v, want [ball-0]", changed)
	}

	if got := scene.ChangedURLs(old, old); len(got) != 0 {
		t.Fatalf("identical configs changed = %v", got)
	}
}

func TestConfigEqualDistinguishesParamEdits(t *testing.T) {
	a := cfg(map[string]string{"0": "clip"})
	b := cfg(map[string]string{"0": "clip"})
	if !a.Equal(b) {
		t.Fatal("identical configs should be equal")
	}

	b.Balls["0"].Params.Hue = floatPtr(90)
	if a.Equal(b) {
		t.Fatal("parameter edit must break equality")
	}

	c := cfg(map[string]string{"0": "clip"})
	c.Balls["0"].Start = floatPtr(10)
	if a.Equal(c) {
		t.Fatal("playback-bound edit must break equality")
	}

	d := cfg(map[string]string{"0": "clip"})
	d.GlobalFoot = &scene.FootMapping{X: &scene.AxisMapping{Param: "hue", Range: [2]float64{0, 360}}}
	if a.Equal(d) {
		t.Fatal("foot-mapping edit must break equality")
	}
}

func TestEffectiveParams(t *testing.T) {
	oc := &scene.ObjectConfig{
		URL:    "clip",
		Locked: boolPtr(true),
		ZIndex: func() *int { v := 5; return &v }(),
	}
	oc.Params.Opacity = floatPtr(0.5)

	set := oc.EffectiveParams()
	if !set.Locked || set.ZIndex != 5 || set.Opacity != 0.5 {
		t.Fatalf("EffectiveParams = %+v", set)
	}
	if set.Volume != 1 {
		t.Fatal("unset fields keep defaults")
	}
}

func TestTableTruncateAndCurrent(t *testing.T) {
	table := scene.NewTable()
	for _, name := range []string{"a", "b", "c"} {
		table.Append(scene.Scene{ID: name, Name: name})
	}
	table.SetCurrent(2)

	table.Truncate(2)
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}
	if _, ok := table.Scene(2); ok {
		t.Fatal("truncated index still resolves")
	}
	// Current keeps pointing at the attempted target; navigation re-wraps.
	if table.Current() != 2 {
		t.Fatalf("Current = %d", table.Current())
	}
	if _, ok := table.CurrentScene(); ok {
		t.Fatal("current scene should be out of bounds after truncation")
	}
}

func TestAxisSensitivityDefault(t *testing.T) {
	a := scene.AxisMapping{Param: "hue", Range: [2]float64{0, 360}}
	if a.EffectiveSensitivity() != 1.0 {
		t.Fatalf("default sensitivity = %v", a.EffectiveSensitivity())
	}
	a.Sensitivity = 0.5
	if a.EffectiveSensitivity() != 0.5 {
		t.Fatal("explicit sensitivity ignored")
	}
}
