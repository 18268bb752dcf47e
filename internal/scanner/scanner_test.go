package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/scanner"
	"github.com/yeldaryernazarov/NestVision/internal/testsupport"
)

func newScanner(t *testing.T, cfg *config.Config, store *catalog.Store) *scanner.Scanner {
	t.Helper()
	return scanner.New(cfg, store, ingest.NewDetector(store), logging.NewNop())
}

func dropFile(t *testing.T, cfg *config.Config, folder, name, content string) string {
	t.Helper()
	dir := filepath.Join(cfg.Paths.StorageDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanCreatesCanonicalFolders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	if err := os.MkdirAll(cfg.Paths.StorageDir, 0o755); err != nil {
		t.Fatal(err)
	}

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0 on empty tree", added)
	}

	for _, folder := range category.CanonicalFolders() {
		info, err := os.Stat(filepath.Join(cfg.Paths.StorageDir, folder))
		if err != nil || !info.IsDir() {
			t.Fatalf("canonical folder %s missing after scan: %v", folder, err)
		}
	}
}

func TestScanCatalogsDroppedRecordings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	path := dropFile(t, cfg, "aggression_teacher", "2025-07-07_12-12-12.mp4", "bytes")

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	record := records[0]
	if record.Category != category.AggressionTeacher {
		t.Fatalf("category = %s, want AGGRESSION_TEACHER", record.Category)
	}
	if record.FilePath != path {
		t.Fatalf("path = %s, want %s", record.FilePath, path)
	}
	want := time.Date(2025, 7, 7, 12, 12, 12, 0, time.Local)
	if !record.RecordedAt.Equal(want) {
		t.Fatalf("recorded_at = %v, want filename timestamp %v", record.RecordedAt, want)
	}
	if record.SizeBytes == nil || *record.SizeBytes != int64(len("bytes")) {
		t.Fatalf("size = %v, want file size", record.SizeBytes)
	}
	if record.SourceFileID != "" {
		t.Fatalf("scanned records carry no source file id, got %q", record.SourceFileID)
	}
}

func TestScanResolvesAliasFolders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	dropFile(t, cfg, "агрессия_дети", "clip.mp4", "x")
	dropFile(t, cfg, "sudden-event", "other.mp4", "y")

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}

	aggression, err := store.ListByCategory(context.Background(), category.AggressionBetweenChildren)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(aggression) != 1 || aggression[0].FileName != "clip.mp4" {
		t.Fatalf("alias folder not resolved: %#v", aggression)
	}
}

func TestScanSkipsUnrecognizedFoldersAndNonVideos(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	dropFile(t, cfg, "random_stuff", "clip.mp4", "x")
	dropFile(t, cfg, "sudden_event", "notes.txt", "y")
	dropFile(t, cfg, "sudden_event", "thumb.jpg", "z")

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	dropFile(t, cfg, "sudden_event", "clip.mp4", "x")

	s := newScanner(t, cfg, store)
	if added, err := s.Scan(context.Background()); err != nil || added != 1 {
		t.Fatalf("first scan: added=%d err=%v", added, err)
	}
	if added, err := s.Scan(context.Background()); err != nil || added != 0 {
		t.Fatalf("second scan: added=%d err=%v, want 0 new", added, err)
	}
}

func TestScanCatalogsSameNameAtNewPath(t *testing.T) {
	// A name collision alone is not identity: a file sharing its name with a
	// catalogued recording but sitting at a different path is still new.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	testsupport.InsertRecord(t, store, catalog.VideoRecord{
		FileName: "clip.mp4",
		FilePath: "/elsewhere/clip.mp4",
	})
	dropFile(t, cfg, "sudden_event", "clip.mp4", "x")

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
}

func TestScanSkipsRecordsAlreadyIngestedFromFeed(t *testing.T) {
	// A recording materialized by the pipeline is found on disk during a later
	// scan; matching file name plus path keeps it from being double counted.
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	path := dropFile(t, cfg, "sudden_event", "clip.mp4", "x")
	testsupport.InsertRecord(t, store, catalog.VideoRecord{
		FileName:     "clip.mp4",
		FilePath:     path,
		SourceFileID: "vid-1",
	})

	added, err := newScanner(t, cfg, store).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d, want 0", added)
	}
}
