package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clipper/internal/captions"
	"clipper/internal/croptrack"
	"clipper/internal/logging"
	"clipper/internal/services"
)

var commandContext = exec.CommandContext

// FFmpeg renders clips by shelling out to ffmpeg with a crop-scale-caption
// filter chain derived from the instructions.
type FFmpeg struct {
	binary       string
	preset       string
	crf          int
	audioBitrate string
	timeout      time.Duration
	logger       *slog.Logger
}

// FFmpegOption adjusts an FFmpeg encoder.
type FFmpegOption func(*FFmpeg)

// WithPreset sets the libx264 encoder preset.
func WithPreset(preset string) FFmpegOption {
	return func(e *FFmpeg) {
		if strings.TrimSpace(preset) != "" {
			e.preset = preset
		}
	}
}

// WithCRF sets the constant rate factor.
func WithCRF(crf int) FFmpegOption {
	return func(e *FFmpeg) {
		if crf >= 0 && crf <= 51 {
			e.crf = crf
		}
	}
}

// WithAudioBitrate sets the AAC bitrate, e.g. "128k".
func WithAudioBitrate(bitrate string) FFmpegOption {
	return func(e *FFmpeg) {
		if strings.TrimSpace(bitrate) != "" {
			e.audioBitrate = bitrate
		}
	}
}

// WithEncodeTimeout bounds a single render.
func WithEncodeTimeout(timeout time.Duration) FFmpegOption {
	return func(e *FFmpeg) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewFFmpeg builds an ffmpeg-backed encoder.
func NewFFmpeg(binary string, logger *slog.Logger, opts ...FFmpegOption) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &FFmpeg{
		binary:       binary,
		preset:       "fast",
		crf:          23,
		audioBitrate: "128k",
		timeout:      30 * time.Minute,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render encodes one clip. A failed or cancelled run removes any partial
// output before returning.
func (e *FFmpeg) Render(ctx context.Context, instructions Instructions) error {
	if instructions.Track == nil {
		return services.Wrap(services.ErrEncodeFailed, "render", "ffmpeg", "missing crop track", nil)
	}

	assPath, err := e.writeCaptions(instructions)
	if err != nil {
		return err
	}

	filters := buildFilterChain(instructions, assPath)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", instructions.MediaPath,
		"-vf", filters,
		"-c:v", "libx264",
		"-preset", e.preset,
		"-crf", strconv.Itoa(e.crf),
		"-c:a", "aac",
		"-b:a", e.audioBitrate,
		"-movflags", "+faststart",
		instructions.OutputPath,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debug("rendering clip",
		logging.String("media", instructions.MediaPath),
		logging.String("output", instructions.OutputPath),
		logging.String("filters", filters))

	cmd := commandContext(ctx, e.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(instructions.OutputPath)
		marker := services.ErrEncodeFailed
		if ctx.Err() != nil {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "render", "ffmpeg",
			strings.TrimSpace(string(output)), err)
	}

	if info, statErr := os.Stat(instructions.OutputPath); statErr != nil || info.Size() == 0 {
		_ = os.Remove(instructions.OutputPath)
		return services.Wrap(services.ErrEncodeFailed, "render", "ffmpeg",
			fmt.Sprintf("no usable output at %s", instructions.OutputPath), statErr)
	}
	return nil
}

// writeCaptions renders the cue list to an ASS file in the work directory.
// It returns "" when the preset draws no captions or there are no cues.
func (e *FFmpeg) writeCaptions(instructions Instructions) (string, error) {
	style, ok := captions.StyleFor(instructions.Preset)
	if !ok || len(instructions.Cues) == 0 {
		return "", nil
	}

	outW, outH := instructions.Aspect.Resolution()
	renderer, err := captions.NewRenderer(style, outW, outH)
	if err != nil {
		return "", services.Wrap(services.ErrEncodeFailed, "render", "captions", "build renderer", err)
	}

	assPath := filepath.Join(instructions.WorkDir, "captions.ass")
	if err := renderer.WriteFile(assPath, instructions.Cues); err != nil {
		return "", services.Wrap(services.ErrEncodeFailed, "render", "captions", "write subtitle file", err)
	}
	return assPath, nil
}

// buildFilterChain assembles crop, scale, and caption filters. The crop
// position follows the track's keyframes as a piecewise-linear function of
// the frame timestamp.
func buildFilterChain(instructions Instructions, assPath string) string {
	cropW, cropH := instructions.Track.CropSize()
	outW, outH := instructions.Aspect.Resolution()

	filters := []string{
		fmt.Sprintf("crop=%d:%d:x='%s':y='%s'",
			evenInt(cropW), evenInt(cropH),
			cropPositionExpr(instructions.Track, axisX),
			cropPositionExpr(instructions.Track, axisY)),
		fmt.Sprintf("scale=%d:%d", outW, outH),
	}
	if assPath != "" {
		filters = append(filters, "ass="+escapeFilterPath(assPath))
	}
	return strings.Join(filters, ",")
}

type axis int

const (
	axisX axis = iota
	axisY
)

// cropPositionExpr renders the track's crop origin on one axis as an ffmpeg
// expression in t, linearly interpolating between keyframes and holding the
// edge values outside their range.
func cropPositionExpr(track *croptrack.Track, ax axis) string {
	keyframes := track.Keyframes()
	type point struct {
		t string
		v string
	}
	points := make([]point, 0, len(keyframes))
	var lastTime time.Duration = -1
	for _, kf := range keyframes {
		if kf.Time == lastTime {
			continue
		}
		lastTime = kf.Time
		rect := track.RectAt(kf.Time)
		value := rect.X
		if ax == axisY {
			value = rect.Y
		}
		points = append(points, point{t: exprNum(kf.Time.Seconds()), v: exprNum(value)})
	}
	if len(points) == 0 {
		return "0"
	}
	if len(points) == 1 {
		return points[0].v
	}

	// Build the nested conditionals inside out, ending with the final
	// keyframe's value as the hold branch.
	expr := points[len(points)-1].v
	for i := len(points) - 1; i >= 1; i-- {
		a, b := points[i-1], points[i]
		segment := fmt.Sprintf("%s+(%s-%s)*(t-%s)/(%s-%s)", a.v, b.v, a.v, a.t, b.t, a.t)
		expr = fmt.Sprintf("if(lt(t,%s),%s,%s)", b.t, segment, expr)
	}
	return fmt.Sprintf("if(lt(t,%s),%s,%s)", points[0].t, points[0].v, expr)
}

func exprNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// evenInt rounds down to an even pixel count, which libx264 requires.
func evenInt(v float64) int {
	n := int(v)
	if n%2 != 0 {
		n--
	}
	if n < 2 {
		n = 2
	}
	return n
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument.
func escapeFilterPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "\\'")
	path = strings.ReplaceAll(path, ",", "\\,")
	return path
}
