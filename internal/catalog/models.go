package catalog

import (
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/category"
)

// VideoRecord is one cataloged incident recording.
//
// DurationSeconds and SizeBytes are nil when the source did not report them;
// zero is a real value for neither. SourceFileID and SourceMessageID identify
// the feed origin and stay empty/nil for folder-scanned records.
type VideoRecord struct {
	ID              int64
	FileName        string
	FilePath        string
	Category        category.Category
	RecordedAt      time.Time
	UploadedAt      time.Time
	DurationSeconds *int64
	SizeBytes       *int64
	SourceFileID    string
	SourceMessageID *int64
}

// Stats aggregates catalog contents per category.
type Stats struct {
	Total      int
	ByCategory map[category.Category]int
}
