package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipper/internal/analyze"
	"clipper/internal/captions"
	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/internal/pipeline"
	"clipper/internal/queue"
	"clipper/internal/scheduler"
	"clipper/internal/segments"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var segmentsPath string
	var transcriptPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Extract clips from a source video",
		Long: `Run schedules one rendering job per clip segment against the given source,
a video URL or a local file path. Segments come from a segments file
(--segments) or from LLM analysis of the transcript (--transcript).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "clipper.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another clipper run is already using %s", cfg.Paths.WorkDir)
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var transcript []captions.Cue
			if strings.TrimSpace(transcriptPath) != "" {
				transcript, err = captions.ReadSRT(transcriptPath)
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
			}

			doc, err := loadSegments(runCtx, cmd, cfg, segmentsPath, transcript)
			if err != nil {
				return err
			}

			defaults, err := requestDefaults(cfg)
			if err != nil {
				return err
			}
			requests, rejections := doc.Requests(defaults)
			for _, rejection := range rejections {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipping segment %d (%s): %v\n",
					rejection.Entry.ID, rejection.Entry.SuggestedTitle, rejection.Reason)
			}
			if len(requests) == 0 {
				return fmt.Errorf("no valid clip segments to extract")
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				p := pipeline.New(cfg, logger, pipeline.WithTranscript(transcript))
				sched := scheduler.New(store, p, logger,
					scheduler.WithWorkers(resolveWorkers(workers, cfg)),
					scheduler.WithMaxRetries(cfg.Workflow.MaxRetries),
					scheduler.WithRetryDelay(time.Duration(cfg.Workflow.RetryDelaySeconds)*time.Second))

				report, err := sched.Run(runCtx, args[0], requests)
				if err != nil {
					return err
				}

				printReport(cmd, report)
				if report.Completed() == 0 {
					return fmt.Errorf("all %d clips failed", report.Failed())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&segmentsPath, "segments", "s", "", "Path to a segments JSON file")
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Path to the source transcript (SRT)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent rendering jobs (default from config)")
	return cmd
}

// loadSegments prefers an explicit segments file; without one it analyzes
// the transcript through the configured LLM.
func loadSegments(ctx context.Context, cmd *cobra.Command, cfg *config.Config, segmentsPath string, transcript []captions.Cue) (*segments.Document, error) {
	if strings.TrimSpace(segmentsPath) != "" {
		doc, err := segments.ReadFile(segmentsPath)
		if err != nil {
			return nil, fmt.Errorf("read segments: %w", err)
		}
		return doc, nil
	}
	if len(transcript) == 0 {
		return nil, fmt.Errorf("provide --segments or --transcript to determine which clips to extract")
	}

	client, err := newAnalyzeClient(cfg)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Analyzing transcript for clip-worthy segments...")
	doc, err := client.AnalyzeCues(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("analyze transcript: %w", err)
	}
	return doc, nil
}

func newAnalyzeClient(cfg *config.Config) (*analyze.Client, error) {
	return analyze.NewClient(cfg.LLM.APIKey,
		analyze.WithBaseURL(cfg.LLM.BaseURL),
		analyze.WithModel(cfg.LLM.Model),
		analyze.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second))
}

func requestDefaults(cfg *config.Config) (segments.Defaults, error) {
	aspect, err := clip.ParseAspect(cfg.Clips.DefaultAspect)
	if err != nil {
		return segments.Defaults{}, fmt.Errorf("default aspect: %w", err)
	}
	preset, err := clip.ParsePreset(cfg.Clips.DefaultPreset)
	if err != nil {
		return segments.Defaults{}, fmt.Errorf("default preset: %w", err)
	}
	return segments.Defaults{
		Aspect: aspect,
		Preset: preset,
		Limits: clip.Limits{
			MinDuration: time.Duration(cfg.Clips.MinDurationSeconds * float64(time.Second)),
			MaxDuration: time.Duration(cfg.Clips.MaxDurationSeconds * float64(time.Second)),
		},
	}, nil
}

func resolveWorkers(flagValue int, cfg *config.Config) int {
	if flagValue > 0 {
		return flagValue
	}
	return cfg.Workflow.Workers
}

func printReport(cmd *cobra.Command, report *scheduler.Report) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)

	rows := make([][]string, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		result := string(outcome.Status)
		switch {
		case outcome.Succeeded():
			result = colorize(result, ansiGreen, color)
		case outcome.Status == queue.StatusFailed:
			result = colorize(result, ansiRed, color)
		default:
			result = colorize(result, ansiYellow, color)
		}

		detail := outcome.ArtifactPath
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", outcome.JobID),
			outcome.Request.Title,
			string(outcome.Request.Aspect),
			result,
			fmt.Sprintf("%d", outcome.Attempts+1),
			detail,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Job", "Title", "Aspect", "Result", "Attempts", "Artifact / Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(out, "Session %s: %d completed, %d failed\n",
		report.SessionID, report.Completed(), report.Failed())
}
