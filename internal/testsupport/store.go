package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertRecord inserts a record built from the supplied template, filling
// required fields with defaults when empty.
func InsertRecord(t testing.TB, store *catalog.Store, record catalog.VideoRecord) *catalog.VideoRecord {
	t.Helper()

	if record.FileName == "" {
		record.FileName = "sample.mp4"
	}
	if record.FilePath == "" {
		record.FilePath = "/videos/sudden_event/sample.mp4"
	}
	if record.Category == "" {
		record.Category = category.SuddenEvent
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	inserted, err := store.Insert(context.Background(), &record)
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return inserted
}

// Int64 returns a pointer to v, for optional record fields.
func Int64(v int64) *int64 {
	return &v
}
