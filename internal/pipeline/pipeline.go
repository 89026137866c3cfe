package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/captions"
	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/internal/croptrack"
	"clipper/internal/detect"
	"clipper/internal/logging"
	"clipper/internal/media"
	"clipper/internal/render"
	"clipper/internal/scheduler"
	"clipper/internal/services"
)

// prober and frameSampler narrow the media helpers to what the pipeline
// needs, so tests can substitute them.
type prober interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
}

type frameSampler interface {
	Sample(ctx context.Context, videoPath string, duration, interval time.Duration, dir string) ([]media.Frame, error)
}

type boxDetector interface {
	Detect(ctx context.Context, framePath string) []detect.Box
}

// Pipeline implements the scheduler's per-job stages against the real
// external tools: yt-dlp for fetching, the detector CLI for subject boxes,
// and ffmpeg for rendering.
type Pipeline struct {
	cfg        *config.Config
	downloader media.Downloader
	prober     prober
	frames     frameSampler
	detector   boxDetector
	encoder    render.Encoder
	registry   *render.Registry
	transcript []captions.Cue
	logger     *slog.Logger
}

// Option adjusts a Pipeline, mainly for substituting collaborators in tests.
type Option func(*Pipeline)

// WithDownloader substitutes the media downloader.
func WithDownloader(d media.Downloader) Option {
	return func(p *Pipeline) { p.downloader = d }
}

// WithEncoder substitutes the render encoder.
func WithEncoder(e render.Encoder) Option {
	return func(p *Pipeline) { p.encoder = e }
}

// WithProber substitutes the media prober.
func WithProber(pr prober) Option {
	return func(p *Pipeline) { p.prober = pr }
}

// WithFrameSampler substitutes the frame extractor.
func WithFrameSampler(fs frameSampler) Option {
	return func(p *Pipeline) { p.frames = fs }
}

// WithDetector substitutes the subject detector.
func WithDetector(d boxDetector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// WithTranscript supplies the source video's absolute subtitle cues. Without
// a transcript, clips render without captions.
func WithTranscript(cues []captions.Cue) Option {
	return func(p *Pipeline) { p.transcript = cues }
}

// New assembles a Pipeline from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg: cfg,
		downloader: media.NewYtDlp(cfg.Download.Binary, logger,
			media.WithFormat(cfg.Download.Format),
			media.WithDownloadTimeout(time.Duration(cfg.Download.TimeoutSeconds)*time.Second)),
		prober: media.NewProber(cfg.FFprobeBinary()),
		frames: media.NewFrameExtractor(cfg.FFmpegBinary()),
		detector: detect.NewAdapter(
			detect.NewCLI(detect.WithBinary(cfg.Tracking.DetectorBinary)),
			time.Duration(cfg.Tracking.DetectTimeoutSeconds*float64(time.Second)),
			cfg.Tracking.MinConfidence,
			logger),
		encoder: render.NewFFmpeg(cfg.FFmpegBinary(), logger,
			render.WithPreset(cfg.Encode.Preset),
			render.WithCRF(cfg.Encode.CRF),
			render.WithAudioBitrate(cfg.Encode.AudioBitrate),
			render.WithEncodeTimeout(time.Duration(cfg.Encode.TimeoutSeconds)*time.Second)),
		registry: render.NewRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Download fetches the clip's media section into the job's work directory.
func (p *Pipeline) Download(ctx context.Context, job *scheduler.Job) error {
	jobDir, err := p.jobDir(job)
	if err != nil {
		return err
	}
	path, err := p.downloader.Fetch(ctx, job.SourceID, job.Request.Start, job.Request.End, jobDir)
	if err != nil {
		return err
	}
	job.MediaPath = path
	job.Item.MediaPath = path
	return nil
}

// Track samples frames from the downloaded section, runs detection on each,
// and folds the observations into the clip's crop track and caption cues.
func (p *Pipeline) Track(ctx context.Context, job *scheduler.Job) error {
	info, err := p.prober.Probe(ctx, job.MediaPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tracking", "probe", "inspect media", err)
	}
	job.Media = info

	interval := time.Duration(p.cfg.Tracking.SampleIntervalSeconds * float64(time.Second))
	framesDir := filepath.Join(filepath.Dir(job.MediaPath), "frames")
	frames, err := p.frames.Sample(ctx, job.MediaPath, job.Request.Duration(), interval, framesDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tracking", "sample", "extract frames", err)
	}

	samples := make([]detect.Sample, 0, len(frames))
	for _, frame := range frames {
		samples = append(samples, detect.Sample{
			Time:  frame.Time,
			Boxes: p.detector.Detect(ctx, frame.Path),
		})
	}

	aspectW, aspectH := job.Request.Aspect.Ratio()
	builder, err := croptrack.NewBuilder(croptrack.Params{
		FrameWidth:     info.Width,
		FrameHeight:    info.Height,
		AspectW:        aspectW,
		AspectH:        aspectH,
		HoldTimeout:    time.Duration(p.cfg.Tracking.HoldTimeoutSeconds * float64(time.Second)),
		SmoothingAlpha: p.cfg.Tracking.SmoothingAlpha,
	})
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tracking", "build", "crop track params", err)
	}
	track, err := builder.Build(samples)
	if err != nil {
		return services.Wrap(services.ErrValidation, "tracking", "build", "crop track", err)
	}
	job.Track = track

	if job.Request.Preset != clip.PresetNone && len(p.transcript) > 0 {
		cues, err := captions.Synchronize(p.transcript, captions.Window{
			Start: job.Request.Start,
			End:   job.Request.End,
		})
		if err != nil {
			return services.Wrap(services.ErrValidation, "tracking", "captions", "synchronize cues", err)
		}
		job.Cues = cues
	}
	return nil
}

// Render claims the artifact path and hands the encoder the full render
// order. A failed encode releases the claim so a retry can reclaim it.
func (p *Pipeline) Render(ctx context.Context, job *scheduler.Job) error {
	outputPath := filepath.Join(p.cfg.Paths.OutputDir, render.ArtifactName(job.Request))
	if err := p.registry.Claim(outputPath, job.Item.ID); err != nil {
		return err
	}

	jobDir, err := p.jobDir(job)
	if err != nil {
		return err
	}
	err = p.encoder.Render(ctx, render.Instructions{
		MediaPath:  job.MediaPath,
		Track:      job.Track,
		Cues:       job.Cues,
		Preset:     job.Request.Preset,
		Aspect:     job.Request.Aspect,
		OutputPath: outputPath,
		WorkDir:    jobDir,
	})
	if err != nil {
		p.registry.Release(outputPath, job.Item.ID)
		return err
	}

	job.OutputPath = outputPath
	p.cleanup(job, jobDir)
	return nil
}

func (p *Pipeline) jobDir(job *scheduler.Job) (string, error) {
	dir := filepath.Join(p.cfg.Paths.WorkDir, fmt.Sprintf("job-%d", job.Item.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "workdir", dir, err)
	}
	return dir, nil
}

// cleanup drops the job's intermediate files. The downloaded section is kept
// only when it was the caller's own local file.
func (p *Pipeline) cleanup(job *scheduler.Job, jobDir string) {
	if !strings.HasPrefix(job.MediaPath, jobDir+string(filepath.Separator)) {
		// Local source passthrough lives outside the work directory.
		if err := os.RemoveAll(filepath.Join(jobDir, "frames")); err != nil {
			p.logger.Debug("frame cleanup failed", logging.Error(err))
		}
		return
	}
	if err := os.RemoveAll(jobDir); err != nil {
		p.logger.Debug("workdir cleanup failed", logging.Error(err))
	}
}
