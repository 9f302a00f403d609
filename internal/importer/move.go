package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDestinationExists indicates the destination file already exists.
var ErrDestinationExists = errors.New("destination file already exists")

// MoveFile moves src to dst, creating the destination directory. A
// plain rename is tried first; when src and dst sit on different
// filesystems the move falls back to copy, sync, and remove. Returns
// ErrDestinationExists without touching anything if dst is present.
func MoveFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return ErrDestinationExists
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrMoveFailed, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Rename failed, most likely EXDEV. Copy across filesystems.
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: remove source after copy: %v", ErrMoveFailed, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open source: %v", ErrMoveFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create destination: %v", ErrMoveFailed, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		// Clean up the partial file
		_ = os.Remove(dst)
		return fmt.Errorf("%w: copy content: %v", ErrMoveFailed, err)
	}

	if err := dstFile.Sync(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: sync: %v", ErrMoveFailed, err)
	}
	return nil
}
