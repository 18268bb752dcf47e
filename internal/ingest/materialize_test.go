package ingest_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yeldaryernazarov/NestVision/internal/category"
	"github.com/yeldaryernazarov/NestVision/internal/ingest"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
	"github.com/yeldaryernazarov/NestVision/internal/testsupport"
)

// fakeResolver serves file ids from an in-memory map.
type fakeResolver struct {
	files map[string]string
	err   error
}

func (f *fakeResolver) ResolveFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.files[fileID]
	if !ok {
		return nil, errors.New("unknown file id")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func TestMaterializePlacesFileInCategoryFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{files: map[string]string{"vid-1": "recording bytes"}}
	materializer := ingest.NewMaterializer(resolver, cfg, logging.NewNop())

	path, size, err := materializer.Materialize(context.Background(), "vid-1", "clip.mp4", category.AggressionTeacher)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	wantPath := filepath.Join(cfg.Paths.StorageDir, "aggression_teacher", "clip.mp4")
	if path != wantPath {
		t.Fatalf("path = %s, want %s", path, wantPath)
	}
	if size != int64(len("recording bytes")) {
		t.Fatalf("size = %d, want %d", size, len("recording bytes"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read materialized file: %v", err)
	}
	if string(data) != "recording bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestMaterializeLeavesNothingOnFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{err: errors.New("feed unavailable")}
	materializer := ingest.NewMaterializer(resolver, cfg, logging.NewNop())

	_, _, err := materializer.Materialize(context.Background(), "vid-1", "clip.mp4", category.SuddenEvent)
	if err == nil {
		t.Fatal("expected resolve failure")
	}

	finalPath := filepath.Join(cfg.Paths.StorageDir, "sudden_event", "clip.mp4")
	if _, err := os.Stat(finalPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file at %s, stat err = %v", finalPath, err)
	}
}

func TestMaterializeOverwritesExistingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := &fakeResolver{files: map[string]string{"vid-1": "new bytes"}}
	materializer := ingest.NewMaterializer(resolver, cfg, logging.NewNop())

	dir := filepath.Join(cfg.Paths.StorageDir, "sudden_event")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	finalPath := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(finalPath, []byte("old bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, _, err := materializer.Materialize(context.Background(), "vid-1", "clip.mp4", category.SuddenEvent)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new bytes" {
		t.Fatalf("content = %q, want overwrite", data)
	}
}

func TestMaterializeValidatesArguments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	materializer := ingest.NewMaterializer(&fakeResolver{}, cfg, logging.NewNop())

	if _, _, err := materializer.Materialize(context.Background(), "", "clip.mp4", category.SuddenEvent); err == nil {
		t.Fatal("expected error for empty file id")
	}
	if _, _, err := materializer.Materialize(context.Background(), "vid-1", "", category.SuddenEvent); err == nil {
		t.Fatal("expected error for empty file name")
	}
}
