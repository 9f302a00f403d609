package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "movie.mkv")
	dst := filepath.Join(dir, "dst", "Movie (2024)", "Movie (2024).mkv")
	writeFile(t, src, 4096)

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("expected source to be gone")
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat destination: %v", err)
	}
	if info.Size() != 4096 {
		t.Errorf("expected 4096 bytes, got %d", info.Size())
	}
}

func TestMoveFile_DestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	dst := filepath.Join(dir, "existing.mkv")
	writeFile(t, src, 100)
	writeFile(t, dst, 200)

	err := MoveFile(src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}

	// Neither file is touched.
	if info, _ := os.Stat(dst); info.Size() != 200 {
		t.Error("destination must be untouched")
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source must be untouched")
	}
}

func TestMoveFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "ghost.mkv"), filepath.Join(dir, "out.mkv"))
	if !errors.Is(err, ErrMoveFailed) {
		t.Errorf("expected ErrMoveFailed, got %v", err)
	}
}
