package importer

import (
	"strings"
)

// PathMapping translates a download client's view of a path to the
// local filesystem view, for clients running on another host.
type PathMapping struct {
	Client     string // client name the mapping applies to
	RemotePath string
	LocalPath  string
}

// TranslatePath rewrites path using the mappings configured for the
// named client. The longest matching remote prefix wins; with no match
// the path is returned unchanged.
func TranslatePath(clientName, path string, mappings []PathMapping) string {
	var best *PathMapping
	for i := range mappings {
		m := &mappings[i]
		if m.Client != clientName {
			continue
		}
		if !strings.HasPrefix(path, m.RemotePath) {
			continue
		}
		if best == nil || len(m.RemotePath) > len(best.RemotePath) {
			best = m
		}
	}
	if best == nil {
		return path
	}
	return best.LocalPath + strings.TrimPrefix(path, best.RemotePath)
}
