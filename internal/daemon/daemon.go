package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/scanner"
)

// Daemon ties the poller, scanner, catalog, and HTTP API together and
// enforces single-instance execution through a lock file.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *catalog.Store
	poller      *ingest.Poller
	pipeline    *ingest.Pipeline
	scanner     *scanner.Scanner
	botUsername string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	CatalogDBPath string
	LockFilePath  string
	BotUsername   string
	FeedChannel   string
	Poller        ingest.PollerStatus
	Catalog       catalog.Stats
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, poller *ingest.Poller, pipeline *ingest.Pipeline, sc *scanner.Scanner, botUsername string, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || poller == nil || pipeline == nil || sc == nil {
		return nil, errors.New("daemon requires config, store, poller, pipeline, and scanner")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "nestvisiond.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "daemon"),
		store:       store,
		poller:      poller,
		pipeline:    pipeline,
		scanner:     sc,
		botUsername: botUsername,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock and launches the poller and HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another nestvision daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.poller.Start(runCtx); err != nil {
		d.releaseOnStartFailure()
		return fmt.Errorf("start poller: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.poller.Stop()
		d.releaseOnStartFailure()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("nestvision daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseOnStartFailure() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.poller.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("nestvision daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// APIAddr reports the bound API listen address, empty before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Scan runs the folder scanner once.
func (d *Daemon) Scan(ctx context.Context) (int, error) {
	return d.scanner.Scan(ctx)
}

// Process ingests an externally supplied recording tuple.
func (d *Daemon) Process(ctx context.Context, req ingest.RemoteRequest) (*catalog.VideoRecord, error) {
	return d.pipeline.ProcessRemote(ctx, req)
}

// ListVideos returns catalogued recordings, optionally filtered by category.
func (d *Daemon) ListVideos(ctx context.Context, cat string) ([]*catalog.VideoRecord, error) {
	if cat == "" {
		return d.store.List(ctx)
	}
	parsed, err := category.Parse(cat)
	if err != nil {
		return nil, err
	}
	return d.store.ListByCategory(ctx, parsed)
}

// GetVideo returns one recording or nil when unknown.
func (d *Daemon) GetVideo(ctx context.Context, id int64) (*catalog.VideoRecord, error) {
	return d.store.GetByID(ctx, id)
}

// Status returns the current daemon status. Catalog stats failures degrade to
// zero counts rather than failing the status surface.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("catalog stats unavailable", logging.Error(err))
	}
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		CatalogDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		BotUsername:   d.botUsername,
		FeedChannel:   d.cfg.Feed.ChannelUsername,
		Poller:        d.poller.Status(),
		Catalog:       stats,
	}
}
