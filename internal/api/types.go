package api

import (
	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Video describes a catalogued recording in a transport-friendly format.
type Video struct {
	ID              int64  `json:"id"`
	FileName        string `json:"fileName"`
	FilePath        string `json:"filePath"`
	Category        string `json:"category"`
	RecordedAt      string `json:"recordedAt"`
	UploadedAt      string `json:"uploadedAt"`
	DurationSeconds *int64 `json:"durationSeconds,omitempty"`
	SizeBytes       *int64 `json:"sizeBytes,omitempty"`
	SourceMessageID *int64 `json:"sourceMessageId,omitempty"`
}

// PollerStatus summarizes feed polling progress.
type PollerStatus struct {
	Running    bool  `json:"running"`
	Cursor     int64 `json:"cursor"`
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Skipped    int64 `json:"skipped"`
	Failures   int64 `json:"failures"`
}

// CatalogStats reports record counts per category.
type CatalogStats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool         `json:"running"`
	PID           int          `json:"pid"`
	CatalogDBPath string       `json:"catalogDbPath"`
	LockFilePath  string       `json:"lockFilePath"`
	BotUsername   string       `json:"botUsername,omitempty"`
	FeedChannel   string       `json:"feedChannel,omitempty"`
	Poller        PollerStatus `json:"poller"`
	Catalog       CatalogStats `json:"catalog"`
}

// VideoListResponse wraps a collection of recordings.
type VideoListResponse struct {
	Videos []Video `json:"videos"`
}

// VideoResponse wraps a single recording.
type VideoResponse struct {
	Video Video `json:"video"`
}

// ScanResponse reports the outcome of a manual folder scan.
type ScanResponse struct {
	Success    bool   `json:"success"`
	AddedCount int    `json:"addedCount"`
	Message    string `json:"message"`
}

// ProcessRequest is the manual ingestion tuple accepted by the process
// trigger. Field names follow the external relay's payload.
type ProcessRequest struct {
	FileID           string `json:"fileId"`
	FileName         string `json:"fileName,omitempty"`
	MessageID        int64  `json:"messageId,omitempty"`
	Category         string `json:"category,omitempty"`
	RecordedDateTime string `json:"recordedDateTime,omitempty"`
}

// ProcessResponse reports the outcome of a manual ingestion.
type ProcessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FromRecord converts a catalog record to its API shape.
func FromRecord(record *catalog.VideoRecord) Video {
	return Video{
		ID:              record.ID,
		FileName:        record.FileName,
		FilePath:        record.FilePath,
		Category:        record.Category.String(),
		RecordedAt:      record.RecordedAt.Format(dateTimeFormat),
		UploadedAt:      record.UploadedAt.Format(dateTimeFormat),
		DurationSeconds: record.DurationSeconds,
		SizeBytes:       record.SizeBytes,
		SourceMessageID: record.SourceMessageID,
	}
}

// FromRecords converts a record slice, preserving order.
func FromRecords(records []*catalog.VideoRecord) []Video {
	out := make([]Video, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

// FromPollerStatus converts the ingest poller snapshot to its API shape.
func FromPollerStatus(status ingest.PollerStatus) PollerStatus {
	return PollerStatus{
		Running:    status.Running,
		Cursor:     status.Cursor,
		Processed:  status.Processed,
		Duplicates: status.Duplicates,
		Skipped:    status.Skipped,
		Failures:   status.Failures,
	}
}

// ToRemoteRequest converts a process trigger payload to the pipeline's input.
func (r ProcessRequest) ToRemoteRequest() ingest.RemoteRequest {
	return ingest.RemoteRequest{
		FileID:       r.FileID,
		FileName:     r.FileName,
		MessageID:    r.MessageID,
		Category:     r.Category,
		RecordedHint: r.RecordedDateTime,
	}
}
