package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// videoExtensions are the file extensions treated as video.
var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".ts":   true,
	".webm": true,
}

// junkIndicators mark filenames that are not the main feature.
var junkIndicators = []string{"sample", "trailer", "preview", "extra", "bonus"}

// IsVideoFile reports whether the path has a video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// isJunkName reports whether a filename contains a non-feature indicator.
func isJunkName(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range junkIndicators {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// FindLargestVideo finds the largest eligible video file at or under
// path. Files below minSize bytes and files whose names contain
// sample/trailer/preview/extra/bonus indicators are skipped. Returns
// ErrNoVideoFile when nothing qualifies.
func FindLargestVideo(path string, minSize int64) (string, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat download path: %w", err)
	}

	// A direct file path qualifies on its own merits.
	if !info.IsDir() {
		if IsVideoFile(path) && !isJunkName(info.Name()) && info.Size() >= minSize {
			return path, info.Size(), nil
		}
		return "", 0, ErrNoVideoFile
	}

	var largestPath string
	var largestSize int64

	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if info.IsDir() || !IsVideoFile(p) || isJunkName(info.Name()) {
			return nil
		}
		if info.Size() < minSize {
			return nil
		}
		if info.Size() > largestSize {
			largestSize = info.Size()
			largestPath = p
		}
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walk download path: %w", err)
	}

	if largestPath == "" {
		return "", 0, ErrNoVideoFile
	}
	return largestPath, largestSize, nil
}
