package script_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lumen/internal/script"
)

func run(t *testing.T, source string) error {
	t.Helper()
	_, err := script.NewRunner(nil).Run(context.Background(), source)
	return err
}

func TestRegisterCandidatesInCallOrder(t *testing.T) {
	source := `
registerCandidate("intro", "Intro", { balls = { ["0"] = { url = "clip-a" } } })
registerCandidate(2, "Main", {
  hands = { left = { url = "clip-l" }, right = { url = "clip-r" } },
  showCamera = false,
})
`
	scenes, err := script.NewRunner(nil).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(scenes))
	}
	if scenes[0].ID != "intro" || scenes[0].Name != "Intro" {
		t.Fatalf("scene 0 = %+v", scenes[0])
	}
	if scenes[0].Config.Balls["0"].URL != "clip-a" {
		t.Fatalf("ball url = %q", scenes[0].Config.Balls["0"].URL)
	}
	if scenes[1].ID != "2" {
		t.Fatalf("numeric id = %q, want \"2\"", scenes[1].ID)
	}
	if scenes[1].Config.Hands.Left == nil || scenes[1].Config.Hands.Right == nil {
		t.Fatal("hand configs missing")
	}
	if scenes[1].Config.CameraVisible() {
		t.Fatal("showCamera=false not honored")
	}
}

func TestParameterAndFootParsing(t *testing.T) {
	source := `
registerCandidate("s", "S", {
  balls = {
    ["0"] = {
      url = "clip",
      start = 10, ["end"] = 20,
      locked = true, zIndex = 3,
      hue = 90, scale = 2, clipPath = "circle(50%)",
      foot = { x = { param = "hue", range = {0, 360}, sensitivity = 0.5 } },
    },
  },
  global_foot = { y = { param = "opacity", range = {0, 1} } },
})
`
	scenes, err := script.NewRunner(nil).Run(context.Background(), source)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	oc := scenes[0].Config.Balls["0"]
	if oc.Start == nil || *oc.Start != 10 || oc.End == nil || *oc.End != 20 {
		t.Fatalf("bounds = %v %v", oc.Start, oc.End)
	}
	if oc.Locked == nil || !*oc.Locked || oc.ZIndex == nil || *oc.ZIndex != 3 {
		t.Fatalf("locked/zIndex = %v %v", oc.Locked, oc.ZIndex)
	}
	if oc.Params.Hue == nil || *oc.Params.Hue != 90 {
		t.Fatalf("hue override = %v", oc.Params.Hue)
	}
	if oc.Params.ClipPath == nil || *oc.Params.ClipPath != "circle(50%)" {
		t.Fatalf("clipPath = %v", oc.Params.ClipPath)
	}
	if oc.Foot == nil || oc.Foot.X == nil || oc.Foot.X.Param != "hue" ||
		oc.Foot.X.Range != [2]float64{0, 360} || oc.Foot.X.Sensitivity != 0.5 {
		t.Fatalf("foot mapping = %+v", oc.Foot)
	}
	gf := scenes[0].Config.GlobalFoot
	if gf == nil || gf.Y == nil || gf.Y.Param != "opacity" {
		t.Fatalf("global foot = %+v", gf)
	}
}

func TestScriptErrorSurfaces(t *testing.T) {
	err := run(t, `error("boom")`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want script error", err)
	}
}

func TestZeroScenesIsDistinctError(t *testing.T) {
	err := run(t, `local x = 1 + 1`)
	if !errors.Is(err, script.ErrNoScenes) {
		t.Fatalf("err = %v, want ErrNoScenes", err)
	}
}

func TestMissingURLIsScriptError(t *testing.T) {
	err := run(t, `registerCandidate("s", "S", { balls = { ["0"] = { hue = 1 } } })`)
	if err == nil || !strings.Contains(err.Error(), "url") {
		t.Fatalf("err = %v, want url requirement", err)
	}
}

func TestSandboxHasNoFilesystemOrOS(t *testing.T) {
	for _, source := range []string{
		`if io ~= nil then error("io leaked") end registerCandidate("s","S",{})`,
		`if os ~= nil then error("os leaked") end registerCandidate("s","S",{})`,
		`if dofile ~= nil then error("dofile leaked") end registerCandidate("s","S",{})`,
	} {
		if _, err := script.NewRunner(nil).Run(context.Background(), source); err != nil {
			t.Fatalf("sandbox leak: %v", err)
		}
	}
}

func TestRunawayScriptTimesOut(t *testing.T) {
	runner := script.NewRunner(nil, script.WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := runner.Run(context.Background(), `while true do end`)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout not enforced")
	}
}
