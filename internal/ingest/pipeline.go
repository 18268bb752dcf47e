package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/feed"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/timestamp"
)

// ErrNoVideo marks feed messages that carry no recording. The poller skips
// these silently.
var ErrNoVideo = errors.New("ingest: message has no video attachment")

// Pipeline runs the classify, dedup, materialize, insert sequence for a
// single recording. All ingestion paths (poller, manual trigger) funnel
// through one Pipeline, and the gate mutex serializes check-and-insert so two
// copies of the same recording cannot race past the duplicate check.
type Pipeline struct {
	store        *catalog.Store
	detector     *Detector
	materializer *Materializer
	logger       *slog.Logger

	gate sync.Mutex
}

// RemoteRequest is a manually supplied ingestion tuple, typically relayed by
// an external forwarder that already holds the feed file id.
type RemoteRequest struct {
	FileID       string
	FileName     string
	MessageID    int64
	Category     string
	RecordedHint string
}

// NewPipeline constructs the ingest pipeline.
func NewPipeline(store *catalog.Store, detector *Detector, materializer *Materializer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:        store,
		detector:     detector,
		materializer: materializer,
		logger:       logging.WithComponent(logger, "ingest"),
	}
}

// ProcessMessage ingests one feed message. Messages without a video return
// ErrNoVideo; already-ingested recordings return catalog.ErrDuplicate. On
// success the inserted record is returned.
func (p *Pipeline) ProcessMessage(ctx context.Context, msg feed.Message) (*catalog.VideoRecord, error) {
	if msg.Video == nil {
		return nil, ErrNoVideo
	}

	fileName := msg.Video.FileName
	if fileName == "" {
		fileName = synthesizeFileName(msg.MessageID)
	}

	// Feed messages carry an authoritative delivery time; filename patterns
	// are only consulted for files found on disk.
	recordedAt := timestamp.FromUnix(msg.Date)

	messageID := msg.MessageID
	record := &catalog.VideoRecord{
		FileName:        fileName,
		Category:        category.Classify(msg.Caption, msg.ChatTitle),
		RecordedAt:      recordedAt,
		SourceFileID:    msg.Video.FileID,
		SourceMessageID: &messageID,
	}
	if msg.Video.Duration > 0 {
		duration := msg.Video.Duration
		record.DurationSeconds = &duration
	}

	return p.ingest(ctx, record, Candidate{
		SourceFileID:    msg.Video.FileID,
		SourceMessageID: msg.MessageID,
		FileName:        fileName,
		SizeBytes:       msg.Video.FileSize,
	})
}

// ProcessRemote ingests an externally supplied tuple. Category and recorded
// time are taken from the request when present, otherwise classified and
// defaulted the same way feed messages are.
func (p *Pipeline) ProcessRemote(ctx context.Context, req RemoteRequest) (*catalog.VideoRecord, error) {
	if req.FileID == "" {
		return nil, errors.New("ingest: file id is required")
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = synthesizeFileName(req.MessageID)
	}

	recordedAt, ok := timestamp.ParseHint(req.RecordedHint)
	if !ok {
		recordedAt = time.Now()
	}

	record := &catalog.VideoRecord{
		FileName:     fileName,
		Category:     category.Classify(req.Category, ""),
		RecordedAt:   recordedAt,
		SourceFileID: req.FileID,
	}
	if req.MessageID != 0 {
		messageID := req.MessageID
		record.SourceMessageID = &messageID
	}

	return p.ingest(ctx, record, Candidate{
		SourceFileID:    req.FileID,
		SourceMessageID: req.MessageID,
		FileName:        fileName,
	})
}

func (p *Pipeline) ingest(ctx context.Context, record *catalog.VideoRecord, candidate Candidate) (*catalog.VideoRecord, error) {
	p.gate.Lock()
	defer p.gate.Unlock()

	duplicate, err := p.detector.IsDuplicate(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, fmt.Errorf("recording %s already catalogued: %w", record.FileName, catalog.ErrDuplicate)
	}

	path, size, err := p.materializer.Materialize(ctx, record.SourceFileID, record.FileName, record.Category)
	if err != nil {
		return nil, err
	}
	record.FilePath = path
	if size > 0 {
		record.SizeBytes = &size
	}

	inserted, err := p.store.Insert(ctx, record)
	if err != nil {
		return nil, err
	}

	p.logger.Info("recording ingested",
		logging.Int64(logging.FieldRecordID, inserted.ID),
		logging.String(logging.FieldFileID, inserted.SourceFileID),
		logging.String(logging.FieldCategory, inserted.Category.String()),
		logging.String("path", inserted.FilePath),
	)
	return inserted, nil
}

func synthesizeFileName(messageID int64) string {
	return fmt.Sprintf("video_%d.mp4", messageID)
}
