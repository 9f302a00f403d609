package importer

import "testing"

func TestTranslatePath(t *testing.T) {
	mappings := []PathMapping{
		{Client: "sab", RemotePath: "/data", LocalPath: "/mnt/nas"},
		{Client: "sab", RemotePath: "/data/complete", LocalPath: "/mnt/complete"},
		{Client: "nzb", RemotePath: "/data", LocalPath: "/mnt/other"},
	}

	tests := []struct {
		client string
		path   string
		want   string
	}{
		// Longest matching remote prefix wins.
		{"sab", "/data/complete/Movie", "/mnt/complete/Movie"},
		{"sab", "/data/incomplete/Movie", "/mnt/nas/incomplete/Movie"},
		// Mappings are scoped per client.
		{"nzb", "/data/complete/Movie", "/mnt/other/complete/Movie"},
		// No mapping leaves the path unchanged.
		{"sab", "/other/Movie", "/other/Movie"},
		{"ghost", "/data/Movie", "/data/Movie"},
	}
	for _, tt := range tests {
		if got := TranslatePath(tt.client, tt.path, mappings); got != tt.want {
			t.Errorf("TranslatePath(%s, %s) = %s, want %s", tt.client, tt.path, got, tt.want)
		}
	}
}

func TestTranslatePath_NoMappings(t *testing.T) {
	if got := TranslatePath("sab", "/downloads/x", nil); got != "/downloads/x" {
		t.Errorf("expected unchanged path, got %s", got)
	}
}
