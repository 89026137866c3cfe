package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"clipper/internal/captions"
	"clipper/internal/clip"
	"clipper/internal/croptrack"
	"clipper/internal/logging"
	"clipper/internal/media"
	"clipper/internal/queue"
)

// Job carries one clip through the pipeline. Ownership transfers with the
// job: only the stage currently processing it may mutate its fields.
type Job struct {
	Item    *queue.Item
	Request clip.Request
	// SourceID names the media origin, a URL or a local file path.
	SourceID string
	// MediaPath, Media, Track, and Cues are filled in by successive stages.
	MediaPath  string
	Media      *media.Info
	Track      *croptrack.Track
	Cues       []captions.Cue
	OutputPath string
}

// Pipeline is the per-job work the scheduler drives. Each method corresponds
// to one lifecycle stage; an error fails the stage and is classified for
// retry by the scheduler.
type Pipeline interface {
	Download(ctx context.Context, job *Job) error
	Track(ctx context.Context, job *Job) error
	Render(ctx context.Context, job *Job) error
}

// Scheduler orders clip requests by score and processes them with a bounded
// worker pool, retrying transient failures and reporting every job's
// outcome. One clip's failure never aborts the batch.
type Scheduler struct {
	store      *queue.Store
	pipeline   Pipeline
	logger     *slog.Logger
	workers    int
	maxRetries int
	retryDelay time.Duration
}

// Option adjusts a Scheduler.
type Option func(*Scheduler)

// WithWorkers bounds concurrent in-flight jobs.
func WithWorkers(workers int) Option {
	return func(s *Scheduler) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithMaxRetries sets how many extra attempts a retryable stage failure gets.
func WithMaxRetries(retries int) Option {
	return func(s *Scheduler) {
		if retries >= 0 {
			s.maxRetries = retries
		}
	}
}

// WithRetryDelay sets the base backoff between attempts; each further
// attempt waits proportionally longer.
func WithRetryDelay(delay time.Duration) Option {
	return func(s *Scheduler) {
		if delay >= 0 {
			s.retryDelay = delay
		}
	}
}

// New builds a Scheduler over the given store and pipeline.
func New(store *queue.Store, pipeline Pipeline, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scheduler{
		store:      store,
		pipeline:   pipeline,
		logger:     logger,
		workers:    2,
		maxRetries: 2,
		retryDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// orderByScore returns the requests sorted by descending score without
// mutating the input. Equal scores keep their original relative order.
func orderByScore(requests []clip.Request) []clip.Request {
	ordered := make([]clip.Request, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}
