package param_test

import (
	"testing"

	"lumen/internal/param"
)

func TestDefaultsAreIdentity(t *testing.T) {
	d := param.Defaults()
	if d.Volume != 1 || d.Speed != 1 || d.Scale != 1 || d.Opacity != 1 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.Hue != 0 || d.Blur != 0 || d.Grayscale != 0 || d.Sepia != 0 {
		t.Fatalf("filter defaults should be zero: %+v", d)
	}
	if d.Saturation != 1 || d.Brightness != 1 || d.Contrast != 1 {
		t.Fatalf("multiplicative filter defaults should be one: %+v", d)
	}
	if d.Locked || d.ZIndex != 0 || d.ClipPath != "" {
		t.Fatalf("unexpected non-filter defaults: %+v", d)
	}
}

func TestMergeAppliesOnlySetFields(t *testing.T) {
	scale := 2.5
	locked := true
	merged := param.Effective(param.Overrides{Scale: &scale, Locked: &locked})
	if merged.Scale != 2.5 {
		t.Fatalf("Scale = %v, want 2.5", merged.Scale)
	}
	if !merged.Locked {
		t.Fatal("Locked override not applied")
	}
	if merged.Volume != 1 || merged.Hue != 0 {
		t.Fatalf("untouched fields changed: %+v", merged)
	}
}

func TestOverridesEqual(t *testing.T) {
	a, b := 1.0, 1.0
	cases := []struct {
		name string
		x, y param.Overrides
		want bool
	}{
		{"both empty", param.Overrides{}, param.Overrides{}, true},
		{"same value", param.Overrides{Hue: &a}, param.Overrides{Hue: &b}, true},
		{"set vs nil", param.Overrides{Hue: &a}, param.Overrides{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.x.Equal(tc.y); got != tc.want {
				t.Fatalf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetFieldByName(t *testing.T) {
	s := param.Defaults()
	if !s.SetField("hue", 180) {
		t.Fatal("hue should be assignable")
	}
	if s.Hue != 180 {
		t.Fatalf("Hue = %v, want 180", s.Hue)
	}
	if s.SetField("clip_path", 1) {
		t.Fatal("non-numeric field must not be assignable by name")
	}
	if s.SetField("bogus", 1) {
		t.Fatal("unknown field must report false")
	}
	if v, ok := s.Field("hue"); !ok || v != 180 {
		t.Fatalf("Field(hue) = %v, %v", v, ok)
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := param.NewStore()
	store.Init("ball-0", param.Defaults())

	if _, ok := store.Get("ball-0"); !ok {
		t.Fatal("expected entry after Init")
	}

	updated := param.Defaults()
	updated.Hue = 90
	if !store.Put("ball-0", updated) {
		t.Fatal("Put should succeed for existing entry")
	}
	got, _ := store.Get("ball-0")
	if got.Hue != 90 {
		t.Fatalf("Hue = %v, want 90", got.Hue)
	}

	if store.Put("ball-1", param.Defaults()) {
		t.Fatal("Put must not create entries")
	}

	store.Delete("ball-0")
	if store.Len() != 0 {
		t.Fatalf("Len = %d after delete", store.Len())
	}

	store.Init("hand-left", param.Defaults())
	store.Init("ball-2", param.Defaults())
	keys := store.Keys()
	if len(keys) != 2 || keys[0] != "ball-2" || keys[1] != "hand-left" {
		t.Fatalf("Keys = %v", keys)
	}
	store.Reset()
	if store.Len() != 0 {
		t.Fatal("Reset should drop all entries")
	}
}
