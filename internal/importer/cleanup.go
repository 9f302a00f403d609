package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RemoveDownloadDir deletes a drained download directory. It refuses
// to delete any configured root folder and any path shallower than two
// components, so a misconfigured mapping can never wipe /downloads or
// worse.
func RemoveDownloadDir(path string, rootFolders []string) error {
	clean := filepath.Clean(path)

	for _, root := range rootFolders {
		if clean == filepath.Clean(root) {
			return fmt.Errorf("%w: %s is a root folder", ErrUnsafeDelete, clean)
		}
	}

	if pathDepth(clean) < 2 {
		return fmt.Errorf("%w: %s", ErrUnsafeDelete, clean)
	}

	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("remove download dir: %w", err)
	}
	return nil
}

// pathDepth counts the non-empty components of a cleaned path.
func pathDepth(path string) int {
	depth := 0
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part != "" && part != "." {
			depth++
		}
	}
	return depth
}
