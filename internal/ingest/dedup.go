package ingest

import (
	"context"
	"fmt"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
)

// Candidate carries the identity facets of an incoming recording that the
// duplicate detector compares against the catalog.
type Candidate struct {
	SourceFileID    string
	SourceMessageID int64
	FileName        string
	SizeBytes       int64
}

// Detector answers "has this recording been ingested before". Each check
// re-reads the catalog so records inserted since the last call are seen.
type Detector struct {
	store *catalog.Store
}

// NewDetector constructs a Detector over the given catalog store.
func NewDetector(store *catalog.Store) *Detector {
	return &Detector{store: store}
}

// IsDuplicate reports whether any existing record matches the candidate.
// Identity tiers are checked strongest first: source file id, then source
// message id, then file name combined with byte size. A facet absent on
// either side never matches.
func (d *Detector) IsDuplicate(ctx context.Context, candidate Candidate) (bool, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("load catalog for duplicate check: %w", err)
	}

	for i := range records {
		record := records[i]
		if candidate.SourceFileID != "" && record.SourceFileID != "" &&
			candidate.SourceFileID == record.SourceFileID {
			return true, nil
		}
		if candidate.SourceMessageID != 0 && record.SourceMessageID != nil &&
			candidate.SourceMessageID == *record.SourceMessageID {
			return true, nil
		}
		if candidate.FileName != "" && candidate.SizeBytes > 0 &&
			record.SizeBytes != nil &&
			candidate.FileName == record.FileName &&
			candidate.SizeBytes == *record.SizeBytes {
			return true, nil
		}
	}
	return false, nil
}

// IsKnownLocal is the scanner-side check: a file already catalogued under the
// same name at the same absolute path is not re-added. The same name at a
// different path is a distinct recording.
func (d *Detector) IsKnownLocal(ctx context.Context, fileName, filePath string) (bool, error) {
	records, err := d.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("load catalog for scan check: %w", err)
	}
	for i := range records {
		if records[i].FileName == fileName && records[i].FilePath == filePath {
			return true, nil
		}
	}
	return false, nil
}
