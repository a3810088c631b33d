// Package engine runs the performance control loop. All state mutations
// (script re-execution, scene navigation, tracking and foot-control updates)
// funnel through a single goroutine so the scene table, parameter store, and
// object registry never see concurrent writers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"lumen/internal/footmap"
	"lumen/internal/logging"
	"lumen/internal/navigate"
	"lumen/internal/object"
	"lumen/internal/param"
	"lumen/internal/reconcile"
	"lumen/internal/resolver"
	"lumen/internal/scene"
	"lumen/internal/script"
)

// command is one unit of work executed on the control loop goroutine.
type command func(ctx context.Context)

// Engine owns the live performance state and serializes access to it.
type Engine struct {
	table      *scene.Table
	params     *param.Store
	registry   *object.Registry
	reconciler *reconcile.Reconciler
	nav        *navigate.Controller
	feet       *footmap.Mapper
	runner     *script.Runner
	logger     *slog.Logger

	commands chan command
	frames   chan command

	// lastErr is only touched on the control loop goroutine.
	lastErr string
}

// New assembles an engine over the given collaborators. The resolver is
// whatever satisfies reconcile.Resolver; in the daemon that is the tracking
// server client.
func New(res reconcile.Resolver, factory object.Factory, camera object.CameraControl, logger *slog.Logger, reconcileOpts ...reconcile.Option) *Engine {
	log := logging.NewComponentLogger(logger, "engine")
	table := scene.NewTable()
	params := param.NewStore()
	registry := object.NewRegistry(camera, logger)
	rec := reconcile.New(table, params, registry, res, factory, logger, reconcileOpts...)
	return &Engine{
		table:      table,
		params:     params,
		registry:   registry,
		reconciler: rec,
		nav:        navigate.New(table, rec, logger),
		feet:       footmap.New(table, params, registry, logger),
		runner:     script.NewRunner(logger),
		logger:     log,
		commands:   make(chan command, 16),
		frames:     make(chan command, 16),
	}
}

// Run executes queued commands until ctx is cancelled, then waits for any
// in-flight video resolutions to settle.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("control loop started")
	for {
		select {
		case <-ctx.Done():
			e.reconciler.WaitIdle()
			e.logger.Info("control loop stopped")
			return ctx.Err()
		case cmd := <-e.commands:
			cmd(ctx)
		case cmd := <-e.frames:
			cmd(ctx)
		}
	}
}

// do runs fn on the control loop and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	cmd := func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}
	select {
	case e.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunScript executes scene-declaration source and reconciles the resulting
// candidate list against the live table. A script failure or an empty
// declaration leaves the previous table, parameters, and objects untouched.
func (e *Engine) RunScript(ctx context.Context, source string) (*reconcile.Report, error) {
	var (
		report    *reconcile.Report
		runErr    error
		candidate []scene.Scene
	)
	err := e.do(ctx, func(ctx context.Context) {
		candidate, runErr = e.runner.Run(ctx, source)
		if runErr != nil {
			e.lastErr = runErr.Error()
			e.logger.Error("script execution failed, keeping previous scenes", logging.Error(runErr))
			return
		}
		e.lastErr = ""
		report = e.reconciler.ApplyDiff(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}
	if runErr != nil {
		return nil, runErr
	}
	return report, nil
}

// RunScriptFile reads a script from disk and executes it.
func (e *Engine) RunScriptFile(ctx context.Context, path string) (*reconcile.Report, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return e.RunScript(ctx, string(source))
}

// Next advances to the following scene, wrapping past the end.
func (e *Engine) Next(ctx context.Context) (int, error) {
	var (
		index  int
		navErr error
	)
	if err := e.do(ctx, func(ctx context.Context) {
		index, navErr = e.nav.Next(ctx)
	}); err != nil {
		return -1, err
	}
	return index, navErr
}

// Previous steps back to the preceding scene, wrapping before the start.
func (e *Engine) Previous(ctx context.Context) (int, error) {
	var (
		index  int
		navErr error
	)
	if err := e.do(ctx, func(ctx context.Context) {
		index, navErr = e.nav.Previous(ctx)
	}); err != nil {
		return -1, err
	}
	return index, navErr
}

// Load switches directly to the scene at index.
func (e *Engine) Load(ctx context.Context, index int) error {
	var loadErr error
	if err := e.do(ctx, func(ctx context.Context) {
		loadErr = e.nav.Load(ctx, index)
	}); err != nil {
		return err
	}
	return loadErr
}

// WaitIdle blocks until all in-flight video resolutions have settled.
func (e *Engine) WaitIdle() {
	e.reconciler.WaitIdle()
}

// postFrame enqueues a tracking update. Frame data is lossy by nature, so a
// busy loop drops the update instead of backpressuring the stream reader.
func (e *Engine) postFrame(cmd command) {
	select {
	case e.frames <- cmd:
	default:
		e.logger.Debug("control loop busy, dropping tracking update")
	}
}

func toPoints(landmarks []resolver.Point) []object.Point {
	if len(landmarks) == 0 {
		return nil
	}
	points := make([]object.Point, len(landmarks))
	for i, lm := range landmarks {
		points[i] = object.Point{X: lm.X, Y: lm.Y}
	}
	return points
}

// HandleHands applies a hand-tracking update to the live hand objects.
func (e *Engine) HandleHands(left, right resolver.Hand) {
	e.postFrame(func(ctx context.Context) {
		e.registry.UpdateHand(object.HandLeft(), left.Detected, toPoints(left.Landmarks))
		e.registry.UpdateHand(object.HandRight(), right.Detected, toPoints(right.Landmarks))
	})
}

// HandleBalls applies ball-tracking positions to the live ball objects.
func (e *Engine) HandleBalls(balls []resolver.Ball) {
	e.postFrame(func(ctx context.Context) {
		for _, b := range balls {
			id := object.BallID(strconv.Itoa(b.ID))
			e.registry.UpdateBall(id, object.Point{X: b.X, Y: b.Y})
		}
	})
}

// HandleControl maps a foot-control position onto the current scene's
// parameter mappings.
func (e *Engine) HandleControl(x, y float64) {
	e.postFrame(func(ctx context.Context) {
		e.feet.Update(x, y)
	})
}

// HandleNavigate reacts to a navigation gesture from the tracking stream.
func (e *Engine) HandleNavigate(direction string) {
	cmd := func(ctx context.Context) {
		var err error
		switch direction {
		case "next":
			_, err = e.nav.Next(ctx)
		case "prev", "previous":
			_, err = e.nav.Previous(ctx)
		default:
			e.logger.Warn("unknown navigation direction", logging.String("direction", direction))
			return
		}
		if err != nil {
			e.logger.Error("gesture navigation failed", logging.Error(err))
		}
	}
	select {
	case e.commands <- cmd:
	default:
		e.logger.Warn("control loop busy, dropping navigation gesture")
	}
}

// Status summarizes the live performance state for operator tooling.
type Status struct {
	SceneCount   int         `json:"scene_count"`
	CurrentIndex int         `json:"current_index"`
	CurrentScene string      `json:"current_scene"`
	ObjectCount  int         `json:"object_count"`
	LastError    string      `json:"last_error"`
	Scenes       []SceneInfo `json:"scenes"`
}

// SceneInfo describes one declared scene.
type SceneInfo struct {
	Index   int      `json:"index"`
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Objects []string `json:"objects"`
	Current bool     `json:"current"`
}

// Status reports a consistent snapshot taken on the control loop.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var st Status
	err := e.do(ctx, func(ctx context.Context) {
		st.SceneCount = e.table.Len()
		st.CurrentIndex = e.table.Current()
		st.ObjectCount = e.registry.Len()
		st.LastError = e.lastErr
		if cur, ok := e.table.CurrentScene(); ok {
			st.CurrentScene = cur.Name
		}
		for i, s := range e.table.Scenes() {
			info := SceneInfo{Index: i, ID: s.ID, Name: s.Name, Current: i == e.table.Current()}
			for _, id := range s.Config.ObjectIDs() {
				info.Objects = append(info.Objects, id.Key())
			}
			st.Scenes = append(st.Scenes, info)
		}
	})
	return st, err
}
