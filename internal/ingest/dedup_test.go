package ingest_test

import (
	"context"
	"testing"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/testsupport"
)

func TestDetectorTiers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	detector := ingest.NewDetector(store)

	msgID := int64(500)
	testsupport.InsertRecord(t, store, catalog.VideoRecord{
		FileName:        "known.mp4",
		FilePath:        "/videos/sudden_event/known.mp4",
		SourceFileID:    "file-known",
		SourceMessageID: &msgID,
		SizeBytes:       testsupport.Int64(4096),
	})

	ctx := context.Background()
	cases := []struct {
		name      string
		candidate ingest.Candidate
		want      bool
	}{
		{"source file id match", ingest.Candidate{SourceFileID: "file-known"}, true},
		{"source message id match", ingest.Candidate{SourceMessageID: 500}, true},
		{"name and size match", ingest.Candidate{FileName: "known.mp4", SizeBytes: 4096}, true},
		{"name match wrong size", ingest.Candidate{FileName: "known.mp4", SizeBytes: 1}, false},
		{"size match wrong name", ingest.Candidate{FileName: "other.mp4", SizeBytes: 4096}, false},
		{"unknown everything", ingest.Candidate{SourceFileID: "file-new", SourceMessageID: 501, FileName: "new.mp4", SizeBytes: 10}, false},
		{"empty candidate", ingest.Candidate{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detector.IsDuplicate(ctx, tc.candidate)
			if err != nil {
				t.Fatalf("IsDuplicate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsDuplicate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectorIgnoresAbsentFacets(t *testing.T) {
	// A record without a size must never collide with a candidate on the
	// name+size tier, and empty source ids on both sides are not equal.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	detector := ingest.NewDetector(store)

	testsupport.InsertRecord(t, store, catalog.VideoRecord{
		FileName: "sizeless.mp4",
		FilePath: "/videos/sudden_event/sizeless.mp4",
	})

	got, err := detector.IsDuplicate(context.Background(), ingest.Candidate{
		FileName:  "sizeless.mp4",
		SizeBytes: 2048,
	})
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if got {
		t.Fatal("record without size must not match the name+size tier")
	}

	got, err = detector.IsDuplicate(context.Background(), ingest.Candidate{FileName: "other.mp4"})
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if got {
		t.Fatal("empty source ids must not be treated as equal")
	}
}

func TestDetectorIsKnownLocal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	detector := ingest.NewDetector(store)

	testsupport.InsertRecord(t, store, catalog.VideoRecord{
		FileName: "local.mp4",
		FilePath: "/videos/sudden_event/local.mp4",
	})

	ctx := context.Background()
	cases := []struct {
		name     string
		fileName string
		filePath string
		want     bool
	}{
		{"same name and path", "local.mp4", "/videos/sudden_event/local.mp4", true},
		{"same name different dir", "local.mp4", "/elsewhere/local.mp4", false},
		{"same path different name facet", "renamed.mp4", "/videos/sudden_event/local.mp4", false},
		{"unknown file", "fresh.mp4", "/videos/sudden_event/fresh.mp4", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detector.IsKnownLocal(ctx, tc.fileName, tc.filePath)
			if err != nil {
				t.Fatalf("IsKnownLocal: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsKnownLocal = %v, want %v", got, tc.want)
			}
		})
	}
}
