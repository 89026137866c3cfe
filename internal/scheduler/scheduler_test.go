package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"clipper/internal/clip"
	"clipper/internal/queue"
	"clipper/internal/scheduler"
	"clipper/internal/services"
	"clipper/internal/testsupport"
)

type fakePipeline struct {
	mu         sync.Mutex
	order      []string
	inFlight   int
	maxFlight  int
	downloadFn func(job *scheduler.Job) error
	renderFn   func(job *scheduler.Job) error
}

func (p *fakePipeline) enter(job *scheduler.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight++
	if p.inFlight > p.maxFlight {
		p.maxFlight = p.inFlight
	}
	p.order = append(p.order, job.Request.Title)
}

func (p *fakePipeline) leave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--
}

func (p *fakePipeline) Download(_ context.Context, job *scheduler.Job) error {
	p.enter(job)
	defer p.leave()
	time.Sleep(5 * time.Millisecond)
	if p.downloadFn != nil {
		if err := p.downloadFn(job); err != nil {
			return err
		}
	}
	job.MediaPath = "/tmp/" + job.Request.Title + ".mp4"
	return nil
}

func (p *fakePipeline) Track(_ context.Context, job *scheduler.Job) error {
	return nil
}

func (p *fakePipeline) Render(_ context.Context, job *scheduler.Job) error {
	if p.renderFn != nil {
		if err := p.renderFn(job); err != nil {
			return err
		}
	}
	job.OutputPath = "/out/" + job.Request.Title + ".mp4"
	return nil
}

func openStore(t *testing.T) *queue.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func request(title string, score float64) clip.Request {
	return clip.Request{
		Start:  0,
		End:    30 * time.Second,
		Title:  title,
		Score:  score,
		Aspect: clip.AspectVertical,
		Preset: clip.PresetNone,
	}
}

func TestRunDispatchesByScoreStable(t *testing.T) {
	store := openStore(t)
	pipeline := &fakePipeline{}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(1), scheduler.WithRetryDelay(0))

	report, err := sched.Run(context.Background(), "source", []clip.Request{
		request("low", 3),
		request("high", 9),
		request("mid-a", 5),
		request("mid-b", 5),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"high", "mid-a", "mid-b", "low"}
	if len(pipeline.order) != len(want) {
		t.Fatalf("expected %d dispatches, got %v", len(want), pipeline.order)
	}
	for i, title := range want {
		if pipeline.order[i] != title {
			t.Fatalf("dispatch order %v, want %v", pipeline.order, want)
		}
	}
	if report.Completed() != 4 || report.Failed() != 0 {
		t.Fatalf("unexpected report: %d completed, %d failed", report.Completed(), report.Failed())
	}
	// Outcomes follow dispatch order too.
	if report.Outcomes[0].Request.Title != "high" {
		t.Fatalf("outcomes out of order: %#v", report.Outcomes)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	store := openStore(t)
	pipeline := &fakePipeline{}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(2), scheduler.WithRetryDelay(0))

	var requests []clip.Request
	for i := 0; i < 8; i++ {
		requests = append(requests, request(fmt.Sprintf("clip-%d", i), float64(i)))
	}
	if _, err := sched.Run(context.Background(), "source", requests); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if pipeline.maxFlight > 2 {
		t.Fatalf("worker limit exceeded: %d in flight", pipeline.maxFlight)
	}
}

func TestRunRetriesRetryableFailures(t *testing.T) {
	store := openStore(t)
	attempts := 0
	pipeline := &fakePipeline{
		downloadFn: func(job *scheduler.Job) error {
			attempts++
			if attempts < 3 {
				return services.Wrap(services.ErrDownloadFailed, "download", "fetch", "flaky network", nil)
			}
			return nil
		},
	}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(1), scheduler.WithMaxRetries(2), scheduler.WithRetryDelay(time.Millisecond))

	report, err := sched.Run(context.Background(), "source", []clip.Request{request("flaky", 5)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if report.Completed() != 1 {
		t.Fatalf("expected recovery, got %#v", report.Outcomes)
	}
	if report.Outcomes[0].Attempts != 2 {
		t.Fatalf("expected 2 recorded retries, got %d", report.Outcomes[0].Attempts)
	}
}

func TestRunDoesNotRetryInvalidRequests(t *testing.T) {
	store := openStore(t)
	attempts := 0
	pipeline := &fakePipeline{
		downloadFn: func(job *scheduler.Job) error {
			attempts++
			return services.Wrap(services.ErrNamingCollision, "render", "claim", "taken", nil)
		},
	}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(1), scheduler.WithMaxRetries(5), scheduler.WithRetryDelay(0))

	report, err := sched.Run(context.Background(), "source", []clip.Request{request("doomed", 5)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("non-retryable error retried %d times", attempts)
	}
	if report.Failed() != 1 {
		t.Fatalf("expected failure outcome, got %#v", report.Outcomes)
	}
}

func TestRunContinuesPastFailedJob(t *testing.T) {
	store := openStore(t)
	pipeline := &fakePipeline{
		renderFn: func(job *scheduler.Job) error {
			if job.Request.Title == "broken" {
				return services.Wrap(services.ErrEncodeFailed, "render", "ffmpeg", "encoder crashed", nil)
			}
			return nil
		},
	}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(1), scheduler.WithMaxRetries(1), scheduler.WithRetryDelay(time.Millisecond))

	report, err := sched.Run(context.Background(), "source", []clip.Request{
		request("broken", 9),
		request("healthy", 5),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Completed() != 1 || report.Failed() != 1 {
		t.Fatalf("unexpected report: %d completed, %d failed", report.Completed(), report.Failed())
	}

	var broken, healthy scheduler.Outcome
	for _, outcome := range report.Outcomes {
		switch outcome.Request.Title {
		case "broken":
			broken = outcome
		case "healthy":
			healthy = outcome
		}
	}
	if broken.Status != queue.StatusFailed || !errors.Is(broken.Err, services.ErrEncodeFailed) {
		t.Fatalf("unexpected broken outcome: %#v", broken)
	}
	if healthy.Status != queue.StatusCompleted {
		t.Fatalf("healthy job dragged down: %#v", healthy)
	}

	// Terminal states are persisted.
	failed, err := store.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ErrorMessage == "" {
		t.Fatalf("failure not persisted: %#v", failed)
	}
	completed, _ := store.List(context.Background(), queue.StatusCompleted)
	if len(completed) != 1 || completed[0].ArtifactPath != "/out/healthy.mp4" {
		t.Fatalf("completion not persisted: %#v", completed)
	}
}

func TestRunCancellationAbortsBatchButReportsEveryJob(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline := &fakePipeline{
		downloadFn: func(job *scheduler.Job) error {
			if job.Request.Title == "first" {
				cancel()
			}
			return nil
		},
	}
	sched := scheduler.New(store, pipeline, nil,
		scheduler.WithWorkers(1), scheduler.WithMaxRetries(2), scheduler.WithRetryDelay(0))

	report, err := sched.Run(ctx, "source", []clip.Request{
		request("first", 9),
		request("second", 5),
		request("third", 3),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("expected an outcome per job, got %d", len(report.Outcomes))
	}
	if report.Completed() != 0 || report.Failed() != 3 {
		t.Fatalf("unexpected report: %d completed, %d failed", report.Completed(), report.Failed())
	}
	for _, outcome := range report.Outcomes {
		if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), "batch cancelled") {
			t.Fatalf("expected cancellation error for %q, got %v", outcome.Request.Title, outcome.Err)
		}
	}

	// Failures survive the cancelled context via the background persist.
	failed, err := store.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 3 {
		t.Fatalf("expected 3 persisted failures, got %d", len(failed))
	}
	for _, item := range failed {
		if item.ErrorMessage == "" {
			t.Fatalf("failure for job %d persisted without a message", item.ID)
		}
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	sched := scheduler.New(openStore(t), &fakePipeline{}, nil)
	if _, err := sched.Run(context.Background(), "source", nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}
