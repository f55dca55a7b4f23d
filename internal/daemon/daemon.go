package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"racecarr/internal/config"
	"racecarr/internal/logging"
	"racecarr/internal/scheduler"
	"racecarr/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Daemon coordinates the scheduler and the API server and enforces
// single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	scheduler *scheduler.Service
	handler   http.Handler

	lockPath string
	lock     *flock.Flock

	httpServer *http.Server
	listenAddr atomic.Value
	running    atomic.Bool
	cancel     context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool   `json:"running"`
	ListenAddr   string `json:"listen_addr"`
	DatabasePath string `json:"database_path"`
	LockFilePath string `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, sched *scheduler.Service, handler http.Handler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || sched == nil || handler == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, scheduler, handler, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "racecarrd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     st,
		scheduler: sched,
		handler:   handler,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers interrupted schedules, and
// launches the scheduler loops and the HTTP listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another racecarr daemon instance is already running")
	}

	// Items stuck in running from a previous crash go back to pending so the
	// next tick picks them up.
	reset, err := d.store.ResetRunning(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reset running schedules: %w", err)
	}
	if reset > 0 {
		d.logger.Info("recovered interrupted schedules", slog.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.scheduler.Start(runCtx)

	listener, err := net.Listen("tcp", d.cfg.Paths.APIBind)
	if err != nil {
		d.scheduler.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("listen on %s: %w", d.cfg.Paths.APIBind, err)
	}
	d.listenAddr.Store(listener.Addr().String())

	d.httpServer = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := d.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server stopped", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("daemon started",
		slog.String("listen", listener.Addr().String()),
		slog.String("lock", d.lockPath))
	return nil
}

// Run starts the daemon and blocks until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Stop shuts down the API server and scheduler loops and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("api server shutdown", logging.Error(err))
		}
		cancel()
		d.httpServer = nil
	}

	d.scheduler.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// ListenAddr returns the bound API address, or empty before Start.
func (d *Daemon) ListenAddr() string {
	if addr, ok := d.listenAddr.Load().(string); ok {
		return addr
	}
	return ""
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		ListenAddr:   d.ListenAddr(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
