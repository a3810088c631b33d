package reconcile_test

import (
	"context"
	"testing"

	"lumen/internal/object"
	"lumen/internal/param"
	"lumen/internal/reconcile"
	"lumen/internal/scene"
	"lumen/internal/testsupport"
)

type rig struct {
	table      *scene.Table
	params     *param.Store
	registry   *object.Registry
	factory    *testsupport.RecordingFactory
	resolver   *testsupport.StubResolver
	camera     *testsupport.FakeCamera
	reconciler *reconcile.Reconciler
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		table:    scene.NewTable(),
		params:   param.NewStore(),
		factory:  testsupport.NewRecordingFactory(),
		resolver: testsupport.NewStubResolver(),
		camera:   &testsupport.FakeCamera{},
	}
	r.registry = object.NewRegistry(r.camera, nil)
	r.reconciler = reconcile.New(r.table, r.params, r.registry, r.resolver, r.factory, nil)
	return r
}

func ballScene(name string, urls map[string]string) scene.Scene {
	cfg := scene.Config{Balls: make(map[string]*scene.ObjectConfig)}
	for id, url := range urls {
		cfg.Balls[id] = &scene.ObjectConfig{URL: url}
	}
	return scene.Scene{ID: name, Name: name, Config: cfg}
}

func withHand(sc scene.Scene, url string) scene.Scene {
	sc.Config.Hands.Left = &scene.ObjectConfig{URL: url}
	return sc
}

func (r *rig) apply(t *testing.T, scenes ...scene.Scene) *reconcile.Report {
	t.Helper()
	report := r.reconciler.ApplyDiff(context.Background(), scenes)
	r.reconciler.WaitIdle()
	return report
}

func TestFirstRunRegistersAllAndLoadsSceneZero(t *testing.T) {
	r := newRig(t)

	report := r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b"}),
	)

	if !report.FirstRun || report.Registered != 2 {
		t.Fatalf("report = %+v, want first run with 2 registered", report)
	}
	if r.table.Len() != 2 || r.table.Current() != 0 {
		t.Fatalf("table len=%d current=%d", r.table.Len(), r.table.Current())
	}
	if r.factory.Creations("ball-0") != 1 {
		t.Fatalf("ball-0 creations = %d, want 1", r.factory.Creations("ball-0"))
	}
	if got := r.factory.Latest("ball-0").URL; got != "resolved://clip-a" {
		t.Fatalf("loaded url = %q, want scene 0's clip", got)
	}
}

func TestIdenticalDiffIsNoop(t *testing.T) {
	r := newRig(t)
	scenes := []scene.Scene{
		withHand(ballScene("a", map[string]string{"0": "clip-a"}), "hand-clip"),
		ballScene("b", map[string]string{"0": "clip-b"}),
	}
	r.apply(t, scenes...)
	before := len(r.factory.Ops())

	report := r.apply(t, scenes...)

	if report.Unchanged != 2 {
		t.Fatalf("Unchanged = %d, want 2", report.Unchanged)
	}
	if after := len(r.factory.Ops()); after != before {
		t.Fatalf("identical diff produced %d extra render ops", after-before)
	}
}

func TestStructuralChangeTakesPriorityOverURLChange(t *testing.T) {
	r := newRig(t)
	r.apply(t, ballScene("a", map[string]string{"0": "clip-a"}))

	// Ball added AND existing ball's url changed: full reload, never a
	// targeted one.
	report := r.apply(t, ballScene("a", map[string]string{"0": "clip-a2", "1": "clip-new"}))

	if len(report.Structural) != 1 || report.Structural[0] != 0 {
		t.Fatalf("Structural = %v, want [0]", report.Structural)
	}
	if len(report.URLReloads) != 0 {
		t.Fatalf("URLReloads = %v, want none", report.URLReloads)
	}
	if r.factory.Creations("ball-0") != 2 || r.factory.Creations("ball-1") != 1 {
		t.Fatalf("creations: ball-0=%d ball-1=%d", r.factory.Creations("ball-0"), r.factory.Creations("ball-1"))
	}
}

func TestTargetedReloadLeavesSiblingsAlone(t *testing.T) {
	r := newRig(t)
	r.apply(t, withHand(ballScene("a", map[string]string{"0": "clip-a"}), "hand-clip"))

	report := r.apply(t, withHand(ballScene("a", map[string]string{"0": "clip-b"}), "hand-clip"))

	keys, ok := report.URLReloads[0]
	if !ok || len(keys) != 1 || keys[0] != "ball-0" {
		t.Fatalf("URLReloads = %v, want ball-0 at index 0", report.URLReloads)
	}
	if r.factory.Creations("ball-0") != 2 {
		t.Fatalf("ball-0 creations = %d, want reload", r.factory.Creations("ball-0"))
	}
	if r.factory.Creations("hand-left") != 1 {
		t.Fatal("unchanged sibling hand must not be recreated")
	}
	// The sibling still gets a parameter refresh.
	if r.factory.Latest("hand-left").ParamApplies < 2 {
		t.Fatal("sibling should receive a parameter refresh")
	}
	if got := r.factory.Latest("ball-0").URL; got != "resolved://clip-b" {
		t.Fatalf("reloaded url = %q", got)
	}
}

func TestParametersOnlyChangeDoesNotReload(t *testing.T) {
	r := newRig(t)
	one := 1.0
	two := 2.0
	old := ballScene("a", map[string]string{"0": "clip-a"})
	old.Config.Balls["0"].Params.Scale = &one
	r.apply(t, old)

	posBefore := r.factory.CountOps("ball-0", "position")

	updated := ballScene("a", map[string]string{"0": "clip-a"})
	updated.Config.Balls["0"].Params.Scale = &two
	report := r.apply(t, updated)

	if len(report.ParamRefreshes) != 1 {
		t.Fatalf("ParamRefreshes = %v, want [0]", report.ParamRefreshes)
	}
	if r.factory.Creations("ball-0") != 1 {
		t.Fatal("parameters-only change must not reload the video")
	}
	set, _, _, _ := r.factory.Latest("ball-0").Snapshot()
	if set.Scale != 2.0 {
		t.Fatalf("Scale = %v, want 2.0", set.Scale)
	}
	if r.factory.CountOps("ball-0", "position") != posBefore {
		t.Fatal("parameter refresh must not reset position")
	}
}

func TestNonCurrentSceneChangesHaveNoVisualEffect(t *testing.T) {
	r := newRig(t)
	r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b"}),
	)
	before := len(r.factory.Ops())

	// Change scene 1 structurally while scene 0 is current.
	r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b2", "1": "clip-c"}),
	)

	if after := len(r.factory.Ops()); after != before {
		t.Fatal("non-current scene edits must not touch live objects")
	}
	sc, _ := r.table.Scene(1)
	if len(sc.Config.Balls) != 2 {
		t.Fatal("declaration replacement must still happen")
	}
}

func TestTruncationDropsTrailingScenes(t *testing.T) {
	r := newRig(t)
	r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b"}),
		ballScene("c", map[string]string{"0": "clip-c"}),
	)

	report := r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b"}),
	)

	if report.Truncated != 1 {
		t.Fatalf("Truncated = %d, want 1", report.Truncated)
	}
	if r.table.Len() != 2 {
		t.Fatalf("table len = %d, want 2", r.table.Len())
	}
}

func TestAddedSceneIsRegisteredWithoutLoading(t *testing.T) {
	r := newRig(t)
	r.apply(t, ballScene("a", map[string]string{"0": "clip-a"}))
	before := len(r.factory.Ops())

	report := r.apply(t,
		ballScene("a", map[string]string{"0": "clip-a"}),
		ballScene("b", map[string]string{"0": "clip-b"}),
	)

	if report.Added != 1 {
		t.Fatalf("Added = %d, want 1", report.Added)
	}
	if r.table.Len() != 2 {
		t.Fatalf("table len = %d", r.table.Len())
	}
	if after := len(r.factory.Ops()); after != before {
		t.Fatal("appended scenes must not load outside first run")
	}
}

func TestResolutionFailureSkipsOnlyThatObject(t *testing.T) {
	r := newRig(t)
	r.resolver.Fail["broken"] = true

	r.apply(t, ballScene("a", map[string]string{"0": "broken", "1": "clip-b"}))

	if r.factory.Creations("ball-0") != 0 {
		t.Fatal("failed resolution must not create a renderable")
	}
	if r.factory.Creations("ball-1") != 1 {
		t.Fatal("sibling objects must still load")
	}
	// The failed object keeps its parameter entry so a later retry merges
	// the same declaration, but has no live handle.
	if _, ok := r.registry.Get(object.BallID("0")); ok {
		t.Fatal("failed object should have no live handle")
	}
}

func TestCameraFlagAppliedOnLoad(t *testing.T) {
	r := newRig(t)
	hidden := false
	sc := ballScene("a", map[string]string{"0": "clip-a"})
	sc.Config.ShowCamera = &hidden

	r.apply(t, sc)

	if r.camera.Visible() {
		t.Fatal("showCamera=false must hide the camera layer")
	}

	// Structural toggle back to the default restores visibility.
	r.apply(t, ballScene("a", map[string]string{"0": "clip-a"}))
	if !r.camera.Visible() {
		t.Fatal("camera default is visible")
	}
}
