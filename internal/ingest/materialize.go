package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
)

// FileResolver resolves a remote file id to its byte stream. Satisfied by
// *feed.Client; tests substitute an in-memory resolver.
type FileResolver interface {
	ResolveFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Materializer streams remote recordings into the category folder layout
// under the storage root. Files land via temp-file-then-rename so a crashed
// download never leaves a half-written recording at the final path.
type Materializer struct {
	resolver   FileResolver
	storageDir string
	logger     *slog.Logger
}

// NewMaterializer constructs a Materializer rooted at the configured storage
// directory.
func NewMaterializer(resolver FileResolver, cfg *config.Config, logger *slog.Logger) *Materializer {
	return &Materializer{
		resolver:   resolver,
		storageDir: cfg.Paths.StorageDir,
		logger:     logging.WithComponent(logger, "materializer"),
	}
}

// Materialize downloads the remote file and places it at
// <storage>/<category folder>/<fileName>. It returns the absolute final path
// and the byte count written. On any failure nothing remains at the final
// path.
func (m *Materializer) Materialize(ctx context.Context, fileID, fileName string, cat category.Category) (string, int64, error) {
	if fileID == "" {
		return "", 0, fmt.Errorf("materialize: empty file id")
	}
	if fileName == "" {
		return "", 0, fmt.Errorf("materialize: empty file name")
	}

	targetDir := filepath.Join(m.storageDir, cat.FolderName())
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create category directory %s: %w", targetDir, err)
	}

	body, err := m.resolver.ResolveFile(ctx, fileID)
	if err != nil {
		return "", 0, fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	defer body.Close()

	// Temp file lives in the target directory so the final rename stays on
	// one filesystem and therefore atomic.
	tmp, err := os.CreateTemp(targetDir, ".nestvision-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file in %s: %w", targetDir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	written, err := io.Copy(tmp, body)
	if err != nil {
		cleanup()
		return "", 0, fmt.Errorf("stream file %s: %w", fileID, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("close %s: %w", tmpPath, err)
	}

	finalPath := filepath.Join(targetDir, fileName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("rename into place: %w", err)
	}

	m.logger.Debug("recording materialized",
		logging.String(logging.FieldFileID, fileID),
		logging.String("path", finalPath),
		logging.Int64("bytes", written),
	)
	return finalPath, written, nil
}
