package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// FFProbe verifies imported files by running ffprobe against them. A
// file with no decodable video stream counts as a probe failure.
type FFProbe struct {
	path    string
	timeout time.Duration
}

// NewFFProbe creates a prober running the given ffprobe binary.
func NewFFProbe(path string) *FFProbe {
	return &FFProbe{path: path, timeout: 30 * time.Second}
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// Probe runs ffprobe on the file and checks for a video stream.
func (f *FFProbe) Probe(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.path,
		"-v", "quiet", "-print_format", "json", "-show_streams", path)
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var result probeOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return fmt.Errorf("parse ffprobe output: %w", err)
	}
	for _, s := range result.Streams {
		if s.CodecType == "video" {
			return nil
		}
	}
	return fmt.Errorf("no video stream in %s", path)
}
