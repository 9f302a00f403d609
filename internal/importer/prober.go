package importer

import "context"

// Prober inspects an imported media file. Probing is best-effort;
// failures are logged and never fail an import.
type Prober interface {
	Probe(ctx context.Context, path string) error
}
