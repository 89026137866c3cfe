package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/logging"
	"clipper/internal/services"
)

// Downloader fetches a time range of a source video into a local file.
// Implementations are fallible and retryable; callers decide the retry
// policy.
type Downloader interface {
	Fetch(ctx context.Context, sourceID string, start, end time.Duration, destDir string) (string, error)
}

// YtDlp downloads source sections with the yt-dlp command line tool. A
// sourceID naming an existing local file bypasses the download entirely.
type YtDlp struct {
	binary  string
	format  string
	timeout time.Duration
	logger  *slog.Logger
}

// YtDlpOption adjusts a YtDlp downloader.
type YtDlpOption func(*YtDlp)

// WithFormat overrides the yt-dlp format selector.
func WithFormat(format string) YtDlpOption {
	return func(d *YtDlp) {
		if strings.TrimSpace(format) != "" {
			d.format = format
		}
	}
}

// WithDownloadTimeout bounds a single fetch attempt.
func WithDownloadTimeout(timeout time.Duration) YtDlpOption {
	return func(d *YtDlp) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewYtDlp builds a yt-dlp backed downloader.
func NewYtDlp(binary string, logger *slog.Logger, opts ...YtDlpOption) *YtDlp {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &YtDlp{
		binary:  binary,
		format:  "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
		timeout: 10 * time.Minute,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads the [start,end] section of the source into destDir and
// returns the local file path.
func (d *YtDlp) Fetch(ctx context.Context, sourceID string, start, end time.Duration, destDir string) (string, error) {
	if end <= start {
		return "", services.Wrap(services.ErrInvalidRequest, "download", "fetch",
			fmt.Sprintf("section end %v not after start %v", end, start), nil)
	}

	// Local source files skip the network path.
	if info, err := os.Stat(sourceID); err == nil && !info.IsDir() {
		return sourceID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	dest := filepath.Join(destDir, fmt.Sprintf("source-%s.mp4", sanitizeSourceID(sourceID)))
	section := fmt.Sprintf("*%s-%s", sectionTimestamp(start), sectionTimestamp(end))

	args := []string{
		"--no-playlist",
		"--force-keyframes-at-cuts",
		"--download-sections", section,
		"-f", d.format,
		"--merge-output-format", "mp4",
		"-o", dest,
		sourceID,
	}
	d.logger.Debug("fetching source section",
		logging.String("source", sourceID),
		logging.String("section", section),
		logging.String("dest", dest))

	cmd := commandContext(ctx, d.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		marker := services.ErrDownloadFailed
		if ctx.Err() != nil {
			marker = services.ErrTimeout
		}
		return "", services.Wrap(marker, "download", "yt-dlp",
			strings.TrimSpace(string(output)), err)
	}

	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		return "", services.Wrap(services.ErrDownloadFailed, "download", "yt-dlp",
			fmt.Sprintf("no usable output at %s", dest), err)
	}
	return dest, nil
}

// sectionTimestamp renders a duration as HH:MM:SS.mmm for --download-sections.
func sectionTimestamp(d time.Duration) string {
	millis := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		millis/3_600_000, millis%3_600_000/60_000, millis%60_000/1000, millis%1000)
}

// sanitizeSourceID keeps only filename-safe characters from a source ID.
func sanitizeSourceID(sourceID string) string {
	var sb strings.Builder
	for _, r := range sourceID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "clip"
	}
	const maxLen = 64
	s := sb.String()
	if len(s) > maxLen {
		s = s[len(s)-maxLen:]
	}
	return s
}
