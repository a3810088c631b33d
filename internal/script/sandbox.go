// Package script executes user-authored scene scripts in an isolated Lua
// state. The script sees exactly one host capability, registerCandidate;
// the ordered list of calls it makes becomes the candidate scene list for
// one reconciliation pass.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"

	"lumen/internal/logging"
	"lumen/internal/param"
	"lumen/internal/scene"
)

// ErrNoScenes marks a script that ran successfully but registered nothing.
// The previous scene table stays live in that case.
var ErrNoScenes = errors.New("script registered no scenes")

// DefaultTimeout bounds one script execution.
const DefaultTimeout = 5 * time.Second

// Runner executes scene scripts.
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithTimeout overrides the execution bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner constructs a script runner.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		logger:  logging.NewComponentLogger(logger, "script"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the script source and returns the registered scenes in call
// order. A script error or a script that registers nothing returns an error
// and no scenes; callers must leave the previous table untouched.
func (r *Runner) Run(ctx context.Context, source string) ([]scene.Scene, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Only side-effect-free libraries are opened; there is no io, os, or
	// require in the sandbox.
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// The base library exposes file loaders; the sandbox has no
	// filesystem capability.
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("loadfile", lua.LNil)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	L.SetContext(runCtx)

	var scenes []scene.Scene
	L.SetGlobal("registerCandidate", L.NewFunction(func(L *lua.LState) int {
		id := candidateID(L, 1)
		name := L.CheckString(2)
		cfg := scene.Config{}
		if L.GetTop() >= 3 {
			cfg = toConfig(L, L.CheckTable(3))
		}
		scenes = append(scenes, scene.Scene{ID: id, Name: name, Config: cfg})
		return 0
	}))

	if err := L.DoString(source); err != nil {
		return nil, fmt.Errorf("script execution: %w", err)
	}
	if len(scenes) == 0 {
		return nil, ErrNoScenes
	}
	r.logger.Debug("script produced candidates", logging.Int("scenes", len(scenes)))
	return scenes, nil
}

// candidateID accepts a string or number scene id.
func candidateID(L *lua.LState, pos int) string {
	switch v := L.CheckAny(pos).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	default:
		L.ArgError(pos, "scene id must be a string or number")
		return ""
	}
}

func toConfig(L *lua.LState, tbl *lua.LTable) scene.Config {
	cfg := scene.Config{}

	if hands, ok := L.GetField(tbl, "hands").(*lua.LTable); ok {
		if left, ok := L.GetField(hands, "left").(*lua.LTable); ok {
			cfg.Hands.Left = toObjectConfig(L, left)
		}
		if right, ok := L.GetField(hands, "right").(*lua.LTable); ok {
			cfg.Hands.Right = toObjectConfig(L, right)
		}
	}

	if balls, ok := L.GetField(tbl, "balls").(*lua.LTable); ok {
		cfg.Balls = make(map[string]*scene.ObjectConfig)
		balls.ForEach(func(key, value lua.LValue) {
			obj, ok := value.(*lua.LTable)
			if !ok {
				L.RaiseError("ball %s: config must be a table", key.String())
				return
			}
			cfg.Balls[key.String()] = toObjectConfig(L, obj)
		})
	}

	if show, ok := L.GetField(tbl, "showCamera").(lua.LBool); ok {
		v := bool(show)
		cfg.ShowCamera = &v
	}

	if foot, ok := L.GetField(tbl, "global_foot").(*lua.LTable); ok {
		cfg.GlobalFoot = toFootMapping(L, foot)
	}

	return cfg
}

func toObjectConfig(L *lua.LState, tbl *lua.LTable) *scene.ObjectConfig {
	oc := &scene.ObjectConfig{}

	if url, ok := L.GetField(tbl, "url").(lua.LString); ok {
		oc.URL = string(url)
	} else {
		L.RaiseError("object config requires a url")
	}

	oc.Start = numberField(L, tbl, "start")
	oc.End = numberField(L, tbl, "end")
	if locked, ok := L.GetField(tbl, "locked").(lua.LBool); ok {
		v := bool(locked)
		oc.Locked = &v
	}
	if z, ok := L.GetField(tbl, "zIndex").(lua.LNumber); ok {
		v := int(z)
		oc.ZIndex = &v
	}
	if foot, ok := L.GetField(tbl, "foot").(*lua.LTable); ok {
		oc.Foot = toFootMapping(L, foot)
	}

	oc.Params = toOverrides(L, tbl)
	return oc
}

func toOverrides(L *lua.LState, tbl *lua.LTable) param.Overrides {
	o := param.Overrides{}
	o.Volume = numberField(L, tbl, "volume")
	o.Speed = numberField(L, tbl, "speed")
	o.Hue = numberField(L, tbl, "hue")
	o.Saturation = numberField(L, tbl, "saturation")
	o.Brightness = numberField(L, tbl, "brightness")
	o.Contrast = numberField(L, tbl, "contrast")
	o.Blur = numberField(L, tbl, "blur")
	o.Scale = numberField(L, tbl, "scale")
	o.Opacity = numberField(L, tbl, "opacity")
	o.Grayscale = numberField(L, tbl, "grayscale")
	o.Sepia = numberField(L, tbl, "sepia")
	if clip, ok := L.GetField(tbl, "clipPath").(lua.LString); ok {
		v := string(clip)
		o.ClipPath = &v
	}
	return o
}

func toFootMapping(L *lua.LState, tbl *lua.LTable) *scene.FootMapping {
	mapping := &scene.FootMapping{}
	if x, ok := L.GetField(tbl, "x").(*lua.LTable); ok {
		mapping.X = toAxis(L, x)
	}
	if y, ok := L.GetField(tbl, "y").(*lua.LTable); ok {
		mapping.Y = toAxis(L, y)
	}
	return mapping
}

func toAxis(L *lua.LState, tbl *lua.LTable) *scene.AxisMapping {
	axis := &scene.AxisMapping{}
	if p, ok := L.GetField(tbl, "param").(lua.LString); ok {
		axis.Param = string(p)
	}
	if rng, ok := L.GetField(tbl, "range").(*lua.LTable); ok {
		if lo, ok := L.RawGetInt(rng, 1).(lua.LNumber); ok {
			axis.Range[0] = float64(lo)
		}
		if hi, ok := L.RawGetInt(rng, 2).(lua.LNumber); ok {
			axis.Range[1] = float64(hi)
		}
	}
	if s, ok := L.GetField(tbl, "sensitivity").(lua.LNumber); ok {
		axis.Sensitivity = float64(s)
	}
	return axis
}

func numberField(L *lua.LState, tbl *lua.LTable, field string) *float64 {
	if n, ok := L.GetField(tbl, field).(lua.LNumber); ok {
		v := float64(n)
		return &v
	}
	return nil
}
