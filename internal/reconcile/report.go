package reconcile

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lumen/internal/logging"
)

// Report collects what one reconciliation pass did, per strategy.
type Report struct {
	// FirstRun marks the no-diff path taken when no previous script
	// output existed.
	FirstRun bool
	// Registered counts scenes registered on a first run.
	Registered int
	// Added counts scenes appended beyond the old table length.
	Added int
	// Structural lists indices that were classified as structural
	// changes.
	Structural []int
	// URLReloads maps scene index to the object keys whose source
	// reference changed.
	URLReloads map[int][]string
	// ParamRefreshes lists indices with parameters-only changes.
	ParamRefreshes []int
	// Unchanged counts identical declarations.
	Unchanged int
	// Truncated counts scenes dropped because the new script declared
	// fewer.
	Truncated int
}

func newReport() *Report {
	return &Report{URLReloads: make(map[int][]string)}
}

// Summary renders a compact one-line description.
func (r *Report) Summary() string {
	if r.FirstRun {
		return fmt.Sprintf("first run: %d scenes registered", r.Registered)
	}
	parts := make([]string, 0, 6)
	if r.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", r.Added))
	}
	if len(r.Structural) > 0 {
		parts = append(parts, fmt.Sprintf("%d structural", len(r.Structural)))
	}
	if len(r.URLReloads) > 0 {
		parts = append(parts, fmt.Sprintf("%d url-reload", len(r.URLReloads)))
	}
	if len(r.ParamRefreshes) > 0 {
		parts = append(parts, fmt.Sprintf("%d param-refresh", len(r.ParamRefreshes)))
	}
	if r.Truncated > 0 {
		parts = append(parts, fmt.Sprintf("%d truncated", r.Truncated))
	}
	if r.Unchanged > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", r.Unchanged))
	}
	if len(parts) == 0 {
		return "no scenes"
	}
	return strings.Join(parts, ", ")
}

func (r *Report) logTo(logger *slog.Logger) {
	attrs := []logging.Attr{logging.String("summary", r.Summary())}
	if len(r.URLReloads) > 0 {
		indices := make([]int, 0, len(r.URLReloads))
		for i := range r.URLReloads {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		for _, i := range indices {
			attrs = append(attrs, logging.String(
				fmt.Sprintf("reload_%d", i),
				strings.Join(r.URLReloads[i], ",")))
		}
	}
	logger.Info("reconciliation applied", logging.Args(attrs...)...)
}
