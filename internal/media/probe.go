package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Info describes a local media file as reported by ffprobe.
type Info struct {
	Path       string
	Width      int
	Height     int
	Duration   time.Duration
	FrameRate  float64
	VideoCodec string
	AudioCodec string
	HasAudio   bool
}

// Prober inspects media files with ffprobe.
type Prober struct {
	binary string
}

// NewProber returns a Prober using the given ffprobe binary.
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe runs ffprobe against path and returns the decoded stream metadata.
// Files without a video stream are rejected.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("probe: empty path")
	}

	cmd := commandContext(ctx, p.binary,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}
	return parseProbeOutput(output, path)
}

func parseProbeOutput(output []byte, path string) (*Info, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("probe parse: %w", err)
	}

	info := &Info{Path: path}
	if seconds, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	for _, stream := range result.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if info.Width == 0 {
				info.Width = stream.Width
				info.Height = stream.Height
				info.VideoCodec = stream.CodecName
				info.FrameRate = parseFrameRate(stream.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = stream.CodecName
			}
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("probe %s: no video stream", path)
	}
	return info, nil
}

// parseFrameRate converts an ffprobe rational like "30000/1001" to a float.
func parseFrameRate(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}
