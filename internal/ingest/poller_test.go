package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/feed"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/testsupport"
)

// pollStep is one scripted GetUpdates response.
type pollStep struct {
	messages []feed.Message
	err      error
}

// scriptedSource replays steps in order, records the offset of every fetch,
// and blocks once the script is exhausted. done closes on the first fetch
// after exhaustion, which guarantees all scripted batches were dispatched.
type scriptedSource struct {
	mu      sync.Mutex
	steps   []pollStep
	offsets []int64
	done    chan struct{}
	once    sync.Once
}

func newScriptedSource(steps ...pollStep) *scriptedSource {
	return &scriptedSource{steps: steps, done: make(chan struct{})}
}

func (s *scriptedSource) GetUpdates(ctx context.Context, offset int64, _, _ int) ([]feed.Message, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	if len(s.steps) == 0 {
		s.mu.Unlock()
		s.once.Do(func() { close(s.done) })
		<-ctx.Done()
		return nil, ctx.Err()
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()
	return step.messages, step.err
}

func (s *scriptedSource) seenOffsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.offsets...)
}

// stubProcessor returns a scripted error per message id, nil otherwise.
type stubProcessor struct {
	mu   sync.Mutex
	errs map[int64]error
	seen []int64
}

func (sp *stubProcessor) ProcessMessage(_ context.Context, msg feed.Message) (*catalog.VideoRecord, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.seen = append(sp.seen, msg.MessageID)
	if sp.errs != nil {
		if err, ok := sp.errs[msg.MessageID]; ok {
			return nil, err
		}
	}
	return &catalog.VideoRecord{ID: msg.MessageID}, nil
}

func fastPollConfig(t *testing.T) *config.Config {
	cfg := testsupport.NewConfig(t)
	cfg.Feed.PollInterval = 0
	cfg.Feed.ErrorRetryInterval = 0
	return cfg
}

func runPoller(t *testing.T, cfg *config.Config, source *scriptedSource, processor ingest.Processor) *ingest.Poller {
	t.Helper()

	poller := ingest.NewPoller(cfg, source, processor, logging.NewNop())
	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(poller.Stop)

	select {
	case <-source.done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not drain the scripted batches")
	}
	poller.Stop()
	return poller
}

func msgWith(updateID, messageID int64) feed.Message {
	return feed.Message{UpdateID: updateID, MessageID: messageID}
}

func TestPollerAdvancesCursorPastEachBatch(t *testing.T) {
	source := newScriptedSource(
		pollStep{messages: []feed.Message{msgWith(0, 100), msgWith(1, 101), msgWith(2, 102)}},
		pollStep{messages: []feed.Message{msgWith(3, 103), msgWith(4, 104)}},
	)
	processor := &stubProcessor{}
	poller := runPoller(t, fastPollConfig(t), source, processor)

	offsets := source.seenOffsets()
	want := []int64{0, 3, 5}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", offsets, want)
		}
	}

	status := poller.Status()
	if status.Cursor != 5 {
		t.Fatalf("cursor = %d, want 5", status.Cursor)
	}
	if status.Processed != 5 {
		t.Fatalf("processed = %d, want 5", status.Processed)
	}
}

func TestPollerHoldsCursorOnFetchFailure(t *testing.T) {
	source := newScriptedSource(
		pollStep{err: fmt.Errorf("%w: connection refused", feed.ErrTransport)},
		pollStep{messages: []feed.Message{msgWith(7, 107)}},
	)
	poller := runPoller(t, fastPollConfig(t), source, &stubProcessor{})

	offsets := source.seenOffsets()
	// Failed fetch refetches at the same cursor; success advances past it.
	want := []int64{0, 0, 8}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", offsets, want)
		}
	}
	if status := poller.Status(); status.Cursor != 8 {
		t.Fatalf("cursor = %d, want 8", status.Cursor)
	}
}

func TestPollerEmptyBatchKeepsCursor(t *testing.T) {
	source := newScriptedSource(
		pollStep{},
		pollStep{messages: []feed.Message{msgWith(2, 102)}},
	)
	poller := runPoller(t, fastPollConfig(t), source, &stubProcessor{})

	if status := poller.Status(); status.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3", status.Cursor)
	}
	offsets := source.seenOffsets()
	if offsets[0] != 0 || offsets[1] != 0 {
		t.Fatalf("empty batch must not advance the cursor: %v", offsets)
	}
}

func TestPollerIsolatesPerMessageFailures(t *testing.T) {
	source := newScriptedSource(
		pollStep{messages: []feed.Message{msgWith(0, 100), msgWith(1, 101), msgWith(2, 102)}},
	)
	processor := &stubProcessor{errs: map[int64]error{
		101: errors.New("materialize blew up"),
	}}
	poller := runPoller(t, fastPollConfig(t), source, processor)

	status := poller.Status()
	if status.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3 despite mid-batch failure", status.Cursor)
	}
	if status.Processed != 2 || status.Failures != 1 {
		t.Fatalf("processed = %d failures = %d, want 2 and 1", status.Processed, status.Failures)
	}
	if len(processor.seen) != 3 {
		t.Fatalf("all messages must be dispatched, got %v", processor.seen)
	}
}

func TestPollerCountsSkipsAndDuplicates(t *testing.T) {
	source := newScriptedSource(
		pollStep{messages: []feed.Message{msgWith(0, 100), msgWith(1, 101), msgWith(2, 102)}},
	)
	processor := &stubProcessor{errs: map[int64]error{
		100: ingest.ErrNoVideo,
		101: fmt.Errorf("already catalogued: %w", catalog.ErrDuplicate),
	}}
	poller := runPoller(t, fastPollConfig(t), source, processor)

	status := poller.Status()
	if status.Skipped != 1 || status.Duplicates != 1 || status.Processed != 1 {
		t.Fatalf("unexpected counters: %+v", status)
	}
}

func TestPollerStartsAtConfiguredOffset(t *testing.T) {
	cfg := fastPollConfig(t)
	cfg.Feed.StartOffset = 42
	source := newScriptedSource(
		pollStep{messages: []feed.Message{msgWith(42, 200)}},
	)
	runPoller(t, cfg, source, &stubProcessor{})

	if offsets := source.seenOffsets(); offsets[0] != 42 {
		t.Fatalf("first fetch at offset %d, want 42", offsets[0])
	}
}

func TestPollerStartTwiceFails(t *testing.T) {
	source := newScriptedSource()
	poller := ingest.NewPoller(fastPollConfig(t), source, &stubProcessor{}, logging.NewNop())
	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer poller.Stop()
	if err := poller.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
	poller.Stop()
	poller.Stop()
}
