// Package navigate advances and retreats the active scene index, wrapping
// around both ends of the scene table.
package navigate

import (
	"context"
	"log/slog"

	"lumen/internal/logging"
	"lumen/internal/scene"
)

// Loader is the scene-load path the controller drives.
type Loader interface {
	LoadScene(ctx context.Context, index int) error
}

// Controller owns scene navigation. It shares the scene table with the
// reconciler and runs on the same control loop.
type Controller struct {
	table  *scene.Table
	loader Loader
	logger *slog.Logger
}

// New constructs a navigation controller.
func New(table *scene.Table, loader Loader, logger *slog.Logger) *Controller {
	return &Controller{
		table:  table,
		loader: loader,
		logger: logging.NewComponentLogger(logger, "navigate"),
	}
}

// Next advances to the following scene, wrapping to 0 past the end. With an
// empty table it is a no-op. It returns the attempted target index.
func (c *Controller) Next(ctx context.Context) (int, error) {
	return c.step(ctx, 1)
}

// Previous retreats to the preceding scene, wrapping to the last index
// before 0.
func (c *Controller) Previous(ctx context.Context) (int, error) {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, delta int) (int, error) {
	n := c.table.Len()
	if n == 0 {
		c.logger.Debug("navigation ignored: no scenes")
		return -1, nil
	}
	// The current index may sit beyond the table right after a
	// truncating reconciliation; the double modulo wraps it back in.
	target := ((c.table.Current()+delta)%n + n) % n
	err := c.loader.LoadScene(ctx, target)
	// The index reflects the attempted target once the load is issued.
	c.table.SetCurrent(target)
	if err != nil {
		c.logger.Warn("scene load failed",
			logging.Int(logging.FieldScene, target),
			logging.Error(err))
	}
	return target, err
}

// Load jumps to an explicit index. Out-of-range requests are a warned no-op
// and leave the current index untouched.
func (c *Controller) Load(ctx context.Context, index int) error {
	if err := c.loader.LoadScene(ctx, index); err != nil {
		c.logger.Warn("scene load failed",
			logging.Int(logging.FieldScene, index),
			logging.Error(err))
		return err
	}
	c.table.SetCurrent(index)
	return nil
}
