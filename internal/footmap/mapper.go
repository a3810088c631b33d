// Package footmap maps the continuous 2D foot-control signal onto visual
// parameters of the active scene's balls, via the mapping rules the scene
// declares.
package footmap

import (
	"log/slog"
	"math"
	"sort"

	"lumen/internal/logging"
	"lumen/internal/object"
	"lumen/internal/param"
	"lumen/internal/scene"
)

// Mapper applies foot-control updates. It shares the scene table, parameter
// store, and registry with the reconciler and runs on the same control loop.
type Mapper struct {
	table    *scene.Table
	params   *param.Store
	registry *object.Registry
	logger   *slog.Logger
}

// New constructs a mapper.
func New(table *scene.Table, params *param.Store, registry *object.Registry, logger *slog.Logger) *Mapper {
	return &Mapper{
		table:    table,
		params:   params,
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "footmap"),
	}
}

// Update applies one control tick with x, y in [-1, 1]. The scene's global
// mapping applies to every ball first, then each ball's own mapping, so a
// per-ball mapping wins when both write the same parameter. Changed
// parameter sets are pushed to the live renderable immediately.
func (m *Mapper) Update(x, y float64) {
	sc, ok := m.table.CurrentScene()
	if !ok {
		return
	}
	cfg := sc.Config

	ballIDs := make([]string, 0, len(cfg.Balls))
	for id := range cfg.Balls {
		ballIDs = append(ballIDs, id)
	}
	sort.Strings(ballIDs)

	for _, bid := range ballIDs {
		id := object.BallID(bid)
		set, ok := m.params.Get(id.Key())
		if !ok {
			continue
		}

		changed := false
		if cfg.GlobalFoot != nil {
			changed = applyMapping(&set, cfg.GlobalFoot, x, y) || changed
		}
		if bc := cfg.Balls[bid]; bc != nil && bc.Foot != nil {
			changed = applyMapping(&set, bc.Foot, x, y) || changed
		}
		if !changed {
			continue
		}

		m.params.Put(id.Key(), set)
		if handle, ok := m.registry.Get(id); ok {
			handle.ApplyParameters(set)
		}
	}
}

func applyMapping(set *param.Set, mapping *scene.FootMapping, x, y float64) bool {
	changed := applyAxis(set, mapping.X, x)
	changed = applyAxis(set, mapping.Y, y) || changed
	return changed
}

// applyAxis maps one normalized control value onto the axis's parameter.
// Malformed mappings (unknown parameter, non-finite range) are a silent
// no-op for that axis.
func applyAxis(set *param.Set, axis *scene.AxisMapping, value float64) bool {
	if axis == nil {
		return false
	}
	lo, hi := axis.Range[0], axis.Range[1]
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) {
		return false
	}

	previous, ok := set.Field(axis.Param)
	if !ok {
		return false
	}

	normalized := (value + 1) / 2
	mapped := lo + normalized*(hi-lo)*axis.EffectiveSensitivity()
	mapped = clamp(mapped, lo, hi)

	if mapped == previous {
		return false
	}
	set.SetField(axis.Param, mapped)
	return true
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
