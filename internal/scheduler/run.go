package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clipper/internal/clip"
	"clipper/internal/logging"
	"clipper/internal/queue"
	"clipper/internal/services"
)

// stageStep binds a lifecycle status to the pipeline call that serves it.
type stageStep struct {
	status queue.Status
	run    func(context.Context, *Job) error
}

// Run schedules the requests against one source and processes them to
// completion. The returned report lists every job's outcome in dispatch
// order; Run itself only fails when the batch cannot be set up at all.
func (s *Scheduler) Run(ctx context.Context, sourceID string, requests []clip.Request) (*Report, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("no clip requests to schedule")
	}

	sessionID := uuid.NewString()
	ctx = services.WithRequestID(ctx, sessionID)
	batchLogger := logging.WithContext(ctx, s.logger)
	ordered := orderByScore(requests)

	jobs := make([]*Job, 0, len(ordered))
	for _, request := range ordered {
		item, err := s.store.NewClip(ctx, sessionID, sourceID, request)
		if err != nil {
			return nil, fmt.Errorf("enqueue clip %q: %w", request.Title, err)
		}
		jobs = append(jobs, &Job{Item: item, Request: request, SourceID: sourceID})
	}

	batchLogger.Info("batch scheduled",
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", s.workers))

	outcomes := make([]Outcome, len(jobs))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for index, job := range jobs {
		index, job := index, job
		group.Go(func() error {
			outcome := s.processJob(groupCtx, job)
			mu.Lock()
			outcomes[index] = outcome
			mu.Unlock()
			// Job failures are outcomes, not group errors; the batch
			// always runs to completion.
			return nil
		})
	}
	_ = group.Wait()

	report := &Report{SessionID: sessionID, Outcomes: outcomes}
	batchLogger.Info("batch finished",
		logging.Int("completed", report.Completed()),
		logging.Int("failed", report.Failed()))
	return report, nil
}

func (s *Scheduler) processJob(ctx context.Context, job *Job) Outcome {
	jobCtx := services.WithJobID(ctx, job.Item.ID)
	jobLogger := logging.WithContext(jobCtx, s.logger).With(
		logging.String(logging.FieldClipTitle, job.Request.Title))

	steps := []stageStep{
		{status: queue.StatusDownloading, run: s.pipeline.Download},
		{status: queue.StatusTracking, run: s.pipeline.Track},
		{status: queue.StatusRendering, run: s.pipeline.Render},
	}

	for _, step := range steps {
		if err := jobCtx.Err(); err != nil {
			return s.failJob(jobCtx, job, jobLogger, fmt.Errorf("batch cancelled: %w", err))
		}
		if err := s.transition(jobCtx, job, step.status); err != nil {
			return s.failJob(jobCtx, job, jobLogger, err)
		}
		if err := s.runStage(services.WithStage(jobCtx, string(step.status)), job, jobLogger, step); err != nil {
			return s.failJob(jobCtx, job, jobLogger, err)
		}
	}

	job.Item.Status = queue.StatusCompleted
	job.Item.ArtifactPath = job.OutputPath
	job.Item.MediaPath = job.MediaPath
	if err := s.store.Update(jobCtx, job.Item); err != nil {
		jobLogger.Error("failed to persist completion", logging.Error(err))
	}
	jobLogger.Info("clip completed", logging.String("artifact", job.OutputPath))

	return Outcome{
		JobID:        job.Item.ID,
		Request:      job.Request,
		Status:       queue.StatusCompleted,
		ArtifactPath: job.OutputPath,
		Attempts:     job.Item.RetryCount,
	}
}

// runStage executes one pipeline stage with the retry budget. Only failures
// the error taxonomy marks retryable consume further attempts.
func (s *Scheduler) runStage(ctx context.Context, job *Job, jobLogger *slog.Logger, step stageStep) error {
	stageLogger := jobLogger
	if stage, ok := services.StageFromContext(ctx); ok {
		stageLogger = stageLogger.With(logging.String(logging.FieldStage, stage))
	}
	stageStart := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = step.run(ctx, job)
		if lastErr == nil {
			stageLogger.Info("stage finished",
				logging.String(logging.FieldEventType, "stage_finish"),
				logging.Duration("elapsed", time.Since(stageStart)))
			return nil
		}
		if !services.Retryable(lastErr) || attempt >= s.maxRetries {
			break
		}

		job.Item.RetryCount++
		if err := s.store.Update(ctx, job.Item); err != nil {
			stageLogger.Warn("failed to persist retry count", logging.Error(err))
		}
		delay := s.retryDelay * time.Duration(attempt+1)
		stageLogger.Warn("stage failed, retrying",
			logging.Error(lastErr),
			logging.Int("attempt", attempt+1),
			logging.Duration("backoff", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("batch cancelled during backoff: %w", ctx.Err())
		}
	}
	return lastErr
}

func (s *Scheduler) transition(ctx context.Context, job *Job, status queue.Status) error {
	job.Item.Status = status
	if err := s.store.Update(ctx, job.Item); err != nil {
		return fmt.Errorf("persist %s status: %w", status, err)
	}
	return nil
}

func (s *Scheduler) failJob(ctx context.Context, job *Job, jobLogger *slog.Logger, cause error) Outcome {
	job.Item.Status = queue.StatusFailed
	job.Item.ErrorMessage = cause.Error()
	// Persist with a fresh context so cancellation doesn't lose the outcome.
	persistCtx := ctx
	if persistCtx.Err() != nil {
		persistCtx = context.Background()
	}
	if err := s.store.Update(persistCtx, job.Item); err != nil {
		jobLogger.Error("failed to persist failure", logging.Error(err))
	}
	jobLogger.Error("clip failed", logging.Error(cause))

	return Outcome{
		JobID:    job.Item.ID,
		Request:  job.Request,
		Status:   queue.StatusFailed,
		Err:      cause,
		Attempts: job.Item.RetryCount,
	}
}
