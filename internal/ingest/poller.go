package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/feed"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
)

// UpdateSource supplies ordered feed message batches. Satisfied by
// *feed.Client.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, limit, timeoutSec int) ([]feed.Message, error)
}

// Processor consumes one feed message. Satisfied by *Pipeline.
type Processor interface {
	ProcessMessage(ctx context.Context, msg feed.Message) (*catalog.VideoRecord, error)
}

// PollerStatus is a snapshot of the poller's progress counters.
type PollerStatus struct {
	Running    bool  `json:"running"`
	Cursor     int64 `json:"cursor"`
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Skipped    int64 `json:"skipped"`
	Failures   int64 `json:"failures"`
}

// Poller drives the feed cursor: long-poll a batch, dispatch each message to
// the pipeline, advance the cursor past the batch. The cursor is process
// local; replays after a restart are absorbed by the duplicate detector.
type Poller struct {
	source    UpdateSource
	processor Processor
	logger    *slog.Logger

	batchLimit      int
	longPollTimeout int
	pollInterval    time.Duration
	errorRetry      time.Duration

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	cursor     int64
	processed  int64
	duplicates int64
	skipped    int64
	failures   int64
}

// NewPoller constructs a Poller starting at the configured feed offset.
func NewPoller(cfg *config.Config, source UpdateSource, processor Processor, logger *slog.Logger) *Poller {
	return &Poller{
		source:          source,
		processor:       processor,
		logger:          logging.WithComponent(logger, "poller"),
		batchLimit:      cfg.Feed.BatchLimit,
		longPollTimeout: cfg.Feed.LongPollTimeout,
		pollInterval:    time.Duration(cfg.Feed.PollInterval) * time.Second,
		errorRetry:      time.Duration(cfg.Feed.ErrorRetryInterval) * time.Second,
		cursor:          cfg.Feed.StartOffset,
	}
}

// Start begins background polling.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("poller already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(runCtx)
	return nil
}

// Stop terminates polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

// Status returns a snapshot of the poller counters.
func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PollerStatus{
		Running:    p.running,
		Cursor:     p.cursor,
		Processed:  p.processed,
		Duplicates: p.duplicates,
		Skipped:    p.skipped,
		Failures:   p.failures,
	}
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.logger.Info("feed polling started", logging.Int64(logging.FieldCursor, p.currentCursor()))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := p.source.GetUpdates(ctx, p.currentCursor(), p.batchLimit, p.longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Cursor stays put so the failed batch is refetched.
			p.logger.Warn("feed fetch failed, retrying",
				logging.Error(err),
				logging.Int64(logging.FieldCursor, p.currentCursor()),
			)
			if !sleepCtx(ctx, p.errorRetry) {
				return
			}
			continue
		}

		p.dispatchBatch(ctx, messages)

		if !sleepCtx(ctx, p.pollInterval) {
			return
		}
	}
}

// dispatchBatch processes messages in feed order and advances the cursor past
// the highest update id seen. Per-message failures are logged and counted,
// never allowed to stall the cursor.
func (p *Poller) dispatchBatch(ctx context.Context, messages []feed.Message) {
	maxUpdateID := int64(-1)
	for _, msg := range messages {
		if msg.UpdateID > maxUpdateID {
			maxUpdateID = msg.UpdateID
		}

		_, err := p.processor.ProcessMessage(ctx, msg)
		switch {
		case err == nil:
			p.bump(&p.processed)
		case errors.Is(err, ErrNoVideo):
			p.bump(&p.skipped)
		case errors.Is(err, catalog.ErrDuplicate):
			p.bump(&p.duplicates)
			p.logger.Debug("duplicate recording skipped",
				logging.Int64(logging.FieldMessageID, msg.MessageID),
			)
		case errors.Is(err, context.Canceled):
			return
		default:
			p.bump(&p.failures)
			p.logger.Error("message ingestion failed",
				logging.Error(err),
				logging.Int64(logging.FieldMessageID, msg.MessageID),
			)
		}
	}

	if maxUpdateID >= 0 {
		p.mu.Lock()
		if next := maxUpdateID + 1; next > p.cursor {
			p.cursor = next
		}
		p.mu.Unlock()
	}
}

func (p *Poller) currentCursor() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Poller) bump(counter *int64) {
	p.mu.Lock()
	*counter++
	p.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
