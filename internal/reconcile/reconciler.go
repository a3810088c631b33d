// Package reconcile implements the scene reconciliation engine: it computes
// and applies the minimal visual side effects needed to move the live state
// from the previous script's scene declarations to the new ones, and owns
// the scene-load path the navigation controller drives.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lumen/internal/logging"
	"lumen/internal/object"
	"lumen/internal/param"
	"lumen/internal/scene"
)

// ErrInvalidIndex is returned for load requests outside [0, len).
var ErrInvalidIndex = errors.New("scene index out of range")

// DefaultResolveTimeout bounds one video-URL resolution round-trip.
const DefaultResolveTimeout = 30 * time.Second

// Resolver turns an opaque source reference into a playable URL. Calls are
// asynchronous round-trips to an external service and may fail or time out.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Reconciler applies scene diffs and loads scenes. All mutation of the scene
// table, parameter store, and registry happens under its lock; asynchronous
// resolution results re-acquire the lock before installing and are discarded
// when their load generation has been superseded.
type Reconciler struct {
	mu       sync.Mutex
	table    *scene.Table
	params   *param.Store
	registry *object.Registry
	resolver Resolver
	factory  object.Factory
	logger   *slog.Logger
	timeout  time.Duration

	generation uint64
	inflight   sync.WaitGroup
}

// Option configures optional reconciler behavior.
type Option func(*Reconciler)

// WithResolveTimeout overrides the per-object resolution bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New constructs a reconciler over the given collaborators.
func New(table *scene.Table, params *param.Store, registry *object.Registry, resolver Resolver, factory object.Factory, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		table:    table,
		params:   params,
		registry: registry,
		resolver: resolver,
		factory:  factory,
		logger:   logging.NewComponentLogger(logger, "reconciler"),
		timeout:  DefaultResolveTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyDiff reconciles the scene table against a freshly produced candidate
// list. Scenes are processed in increasing index order; only the current
// index produces visible side effects. The returned report records what
// happened for logging.
func (r *Reconciler) ApplyDiff(ctx context.Context, candidates []scene.Scene) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := newReport()

	// First run: no previous script output to diff against. Clear all
	// state, register everything, load scene 0.
	if r.table.Len() == 0 {
		report.FirstRun = true
		r.registry.RemoveAll()
		r.params.Reset()
		r.table.Clear()
		for _, sc := range candidates {
			r.table.Append(sc)
			report.Registered++
		}
		if r.table.Len() > 0 {
			r.table.SetCurrent(0)
			if err := r.loadSceneLocked(ctx, 0); err != nil {
				r.logger.Error("initial scene load failed", logging.Error(err))
			}
		}
		report.logTo(r.logger)
		return report
	}

	old := r.table.Scenes()
	current := r.table.Current()

	for i, cand := range candidates {
		if i >= len(old) {
			// Scene added by the edit. Registered without visual
			// effect; loads only happen on first run.
			r.table.Append(cand)
			report.Added++
			continue
		}

		oldCfg := old[i].Config
		newCfg := cand.Config

		switch {
		case oldCfg.StructurallyDiffers(newCfg):
			r.table.Replace(i, cand)
			report.Structural = append(report.Structural, i)
			if i == current {
				if err := r.loadSceneLocked(ctx, i); err != nil {
					r.logger.Error("structural reload failed", logging.Int(logging.FieldScene, i), logging.Error(err))
				}
			}
		case len(scene.ChangedURLs(oldCfg, newCfg)) > 0:
			changed := scene.ChangedURLs(oldCfg, newCfg)
			r.table.Replace(i, cand)
			keys := make([]string, len(changed))
			for j, id := range changed {
				keys[j] = id.Key()
			}
			report.URLReloads[i] = keys
			if i == current {
				r.reloadObjectsLocked(ctx, i, changed)
				// Unrelated parameter edits in the same script
				// edit still apply.
				r.refreshParamsLocked(newCfg)
			}
		case !oldCfg.Equal(newCfg):
			r.table.Replace(i, cand)
			report.ParamRefreshes = append(report.ParamRefreshes, i)
			if i == current {
				r.refreshParamsLocked(newCfg)
			}
		default:
			// Identical declaration: still replaced to keep the
			// table in sync.
			r.table.Replace(i, cand)
			report.Unchanged++
		}
	}

	if len(candidates) < len(old) {
		r.table.Truncate(len(candidates))
		report.Truncated = len(old) - len(candidates)
	}

	report.logTo(r.logger)
	return report
}

// LoadScene validates the index and performs a full scene load: all live
// objects are torn down and every object the target scene declares is
// resolved and installed.
func (r *Reconciler) LoadScene(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadSceneLocked(ctx, index)
}

// WaitIdle blocks until every in-flight resolution has completed or been
// discarded.
func (r *Reconciler) WaitIdle() {
	r.inflight.Wait()
}

func (r *Reconciler) loadSceneLocked(ctx context.Context, index int) error {
	sc, ok := r.table.Scene(index)
	if !ok {
		r.logger.Warn("load requested for invalid scene index",
			logging.Int(logging.FieldScene, index),
			logging.Int("scenes", r.table.Len()))
		return ErrInvalidIndex
	}

	r.generation++
	gen := r.generation

	r.registry.RemoveAll()
	r.params.Reset()
	r.registry.SetCameraVisible(sc.Config.CameraVisible())

	ids := sc.Config.ObjectIDs()
	for _, id := range ids {
		cfg := sc.Config.ObjectConfig(id)
		r.params.Init(id.Key(), cfg.EffectiveParams())
		r.resolveAndInstall(ctx, gen, index, id, cfg)
	}

	r.logger.Info("scene load issued",
		logging.Int(logging.FieldScene, index),
		logging.String("name", sc.Name),
		logging.Int("objects", len(ids)),
		logging.Bool("camera", sc.Config.CameraVisible()),
		logging.Uint64(logging.FieldGeneration, gen))
	return nil
}

// reloadObjectsLocked tears down and re-resolves exactly the given objects
// of the current scene, leaving their siblings untouched.
func (r *Reconciler) reloadObjectsLocked(ctx context.Context, index int, ids []object.ID) {
	sc, ok := r.table.Scene(index)
	if !ok {
		return
	}
	gen := r.generation
	for _, id := range ids {
		cfg := sc.Config.ObjectConfig(id)
		if cfg == nil {
			continue
		}
		r.registry.Remove(id)
		r.params.Init(id.Key(), cfg.EffectiveParams())
		r.resolveAndInstall(ctx, gen, index, id, cfg)
	}
}

// refreshParamsLocked recomputes effective parameters from the new config
// for every declared object and pushes them to the live handles without
// touching playback state.
func (r *Reconciler) refreshParamsLocked(cfg scene.Config) {
	for _, id := range cfg.ObjectIDs() {
		oc := cfg.ObjectConfig(id)
		set := oc.EffectiveParams()
		r.params.Init(id.Key(), set)
		if handle, ok := r.registry.Get(id); ok {
			handle.ApplyParameters(set)
		}
	}
}

// resolveAndInstall issues one asynchronous resolution. Hand and ball
// resolutions for the same load are independent and may complete out of
// order; only the install step is serialized. Results from a superseded
// generation are discarded.
func (r *Reconciler) resolveAndInstall(ctx context.Context, gen uint64, index int, id object.ID, cfg *scene.ObjectConfig) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		resolveCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		url, err := r.resolver.Resolve(resolveCtx, cfg.URL)
		if err != nil {
			// The object is skipped; siblings and other scenes are
			// unaffected.
			r.logger.Error("video resolution failed",
				logging.Int(logging.FieldScene, index),
				logging.String(logging.FieldObject, id.Key()),
				logging.String("ref", cfg.URL),
				logging.Error(err))
			return
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if gen != r.generation {
			r.logger.Debug("discarding stale resolution",
				logging.Int(logging.FieldScene, index),
				logging.String(logging.FieldObject, id.Key()),
				logging.Uint64(logging.FieldGeneration, gen))
			return
		}

		handle, err := r.factory.Create(id, url, cfg.CreateOptions())
		if err != nil {
			r.logger.Error("renderable creation failed",
				logging.String(logging.FieldObject, id.Key()),
				logging.Error(err))
			return
		}

		set, ok := r.params.Get(id.Key())
		if !ok {
			set = cfg.EffectiveParams()
			r.params.Init(id.Key(), set)
		}
		r.registry.Install(id, handle, set.Locked)
		handle.ApplyParameters(set)
		handle.SetVisible(true)
	}()
}
