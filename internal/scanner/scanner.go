package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/timestamp"
)

// videoExtensions are the file suffixes treated as recordings.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".mkv":  {},
	".wmv":  {},
	".flv":  {},
	".webm": {},
}

// Scanner catalogs recordings that were dropped into the storage tree by
// hand, outside the feed pipeline.
type Scanner struct {
	storageDir string
	store      *catalog.Store
	detector   *ingest.Detector
	logger     *slog.Logger
}

// New constructs a Scanner over the configured storage root.
func New(cfg *config.Config, store *catalog.Store, detector *ingest.Detector, logger *slog.Logger) *Scanner {
	return &Scanner{
		storageDir: cfg.Paths.StorageDir,
		store:      store,
		detector:   detector,
		logger:     logging.WithComponent(logger, "scanner"),
	}
}

// Scan walks the storage tree once and returns the number of newly catalogued
// recordings. The four canonical category folders are created first so a
// fresh deployment ends the scan with the expected layout. Subdirectories
// whose names match no category alias are skipped, as are files that are not
// recordings or are already catalogued.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	if err := s.ensureCanonicalFolders(); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		return 0, fmt.Errorf("read storage root %s: %w", s.storageDir, err)
	}

	added := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if !entry.IsDir() {
			continue
		}

		cat, ok := category.FromFolderName(entry.Name())
		if !ok {
			s.logger.Debug("skipping unrecognized folder", logging.String("folder", entry.Name()))
			continue
		}

		count, err := s.scanFolder(ctx, filepath.Join(s.storageDir, entry.Name()), cat)
		if err != nil {
			return added, err
		}
		added += count
	}

	s.logger.Info("folder scan complete", logging.Int("added", added))
	return added, nil
}

func (s *Scanner) scanFolder(ctx context.Context, dir string, cat category.Category) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read category folder %s: %w", dir, err)
	}

	added := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if entry.IsDir() {
			continue
		}
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		known, err := s.detector.IsKnownLocal(ctx, entry.Name(), path)
		if err != nil {
			return added, err
		}
		if known {
			continue
		}

		record := &catalog.VideoRecord{
			FileName:   entry.Name(),
			FilePath:   path,
			Category:   cat,
			RecordedAt: timestamp.ForFile(path),
		}
		if info, err := entry.Info(); err == nil {
			size := info.Size()
			record.SizeBytes = &size
		}

		if _, err := s.store.Insert(ctx, record); err != nil {
			return added, fmt.Errorf("catalog %s: %w", path, err)
		}
		added++

		s.logger.Info("recording catalogued from disk",
			logging.String("path", path),
			logging.String(logging.FieldCategory, cat.String()),
		)
	}
	return added, nil
}

func (s *Scanner) ensureCanonicalFolders() error {
	for _, cat := range category.All() {
		dir := filepath.Join(s.storageDir, cat.FolderName())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create category folder %s: %w", dir, err)
		}
	}
	return nil
}
