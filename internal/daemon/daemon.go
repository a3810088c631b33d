// Package daemon coordinates the long-running performance services: the
// tracking server connection, the engine control loop, and single-instance
// enforcement via a lock file.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"lumen/internal/config"
	"lumen/internal/engine"
	"lumen/internal/logging"
	"lumen/internal/reconcile"
	"lumen/internal/render"
	"lumen/internal/resolver"
)

// Daemon owns the engine and the tracking connection and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *engine.Engine
	tracking *resolver.Client
	camera   *render.Camera
	factory  *render.Factory

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// Status represents daemon runtime information.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	Engine   engine.Status
}

// New constructs a daemon with initialized collaborators.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	camera := render.NewCamera(logger)
	factory := render.NewFactory(logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		camera:   camera,
		factory:  factory,
		lockPath: cfg.Paths.LockPath,
		lock:     flock.New(cfg.Paths.LockPath),
		shutdown: make(chan struct{}),
	}

	d.tracking = resolver.New(cfg.Tracking.ServerURL, &handlerProxy{d: d}, logger,
		resolver.WithResolveTimeout(cfg.ResolveTimeout()),
		resolver.WithReconnectMaxDelay(time.Duration(cfg.Tracking.ReconnectMaxSeconds)*time.Second))
	d.engine = engine.New(d.tracking, factory, camera, logger,
		reconcile.WithResolveTimeout(cfg.ResolveTimeout()))
	return d, nil
}

// handlerProxy routes tracking pushes to the engine. The client and engine
// reference each other, so the proxy breaks the construction cycle.
type handlerProxy struct {
	d *Daemon
}

func (p *handlerProxy) HandleHands(left, right resolver.Hand) { p.d.engine.HandleHands(left, right) }
func (p *handlerProxy) HandleBalls(balls []resolver.Ball)     { p.d.engine.HandleBalls(balls) }
func (p *handlerProxy) HandleControl(x, y float64)            { p.d.engine.HandleControl(x, y) }
func (p *handlerProxy) HandleNavigate(direction string)       { p.d.engine.HandleNavigate(direction) }

// Engine exposes the control loop for IPC handlers.
func (d *Daemon) Engine() *engine.Engine { return d.engine }

// RequestShutdown signals the hosting process to exit. Safe to call more
// than once and from RPC handlers.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdown) })
}

// ShutdownRequested is closed when an IPC stop request arrives.
func (d *Daemon) ShutdownRequested() <-chan struct{} { return d.shutdown }

// Start acquires the daemon lock and launches the engine loop and the
// tracking connection. When a startup script is configured and present it is
// executed once the loop is up.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lumen daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		return d.engine.Run(groupCtx)
	})
	group.Go(func() error {
		return d.tracking.Run(groupCtx)
	})

	go func() {
		defer close(d.done)
		if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("daemon service exited", logging.Error(err))
		}
	}()

	d.runStartupScript(runCtx)
	d.logger.Info("lumen daemon started", logging.String("lock", d.lockPath))
	return nil
}

// runStartupScript executes the configured scene script if it exists. A
// missing or failing script leaves the daemon running with no scenes.
func (d *Daemon) runStartupScript(ctx context.Context) {
	path := d.cfg.Script.Path
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		d.logger.Info("no startup script", logging.String("path", path))
		return
	}
	report, err := d.engine.RunScriptFile(ctx, path)
	if err != nil {
		d.logger.Error("startup script failed", logging.String("path", path), logging.Error(err))
		return
	}
	d.logger.Info("startup script applied",
		logging.String("path", path),
		logging.String("summary", report.Summary()))
}

// Stop cancels background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	d.engine.WaitIdle()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lumen daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports runtime information including an engine snapshot.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	st := Status{
		Running:  d.running.Load(),
		PID:      os.Getpid(),
		LockPath: d.lockPath,
	}
	if !st.Running {
		return st, nil
	}
	engineStatus, err := d.engine.Status(ctx)
	if err != nil {
		return st, err
	}
	st.Engine = engineStatus
	return st, nil
}
