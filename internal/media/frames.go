package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Frame pairs a clip-local sample time with an extracted still image.
type Frame struct {
	Time time.Duration
	Path string
}

// FrameExtractor pulls still frames out of a media file with ffmpeg for the
// detector to inspect.
type FrameExtractor struct {
	binary string
}

// NewFrameExtractor returns a FrameExtractor using the given ffmpeg binary.
func NewFrameExtractor(binary string) *FrameExtractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FrameExtractor{binary: binary}
}

// Extract writes the frame at the given clip-local time to destPath.
func (e *FrameExtractor) Extract(ctx context.Context, videoPath string, at time.Duration, destPath string) error {
	cmd := commandContext(ctx, e.binary,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", at.Seconds()),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", destPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("extract frame at %v: %w: %s", at, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Sample extracts one frame per interval across [0, duration) into dir,
// starting at time zero. The final partial interval is skipped.
func (e *FrameExtractor) Sample(ctx context.Context, videoPath string, duration, interval time.Duration, dir string) ([]Frame, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sample interval %v must be positive", interval)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	var frames []Frame
	for at := time.Duration(0); at < duration; at += interval {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("frame-%08d.jpg", at.Milliseconds()))
		if err := e.Extract(ctx, videoPath, at, path); err != nil {
			return nil, err
		}
		frames = append(frames, Frame{Time: at, Path: path})
	}
	return frames, nil
}
