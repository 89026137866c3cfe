package scheduler

import (
	"clipper/internal/clip"
	"clipper/internal/queue"
)

// Outcome is one job's terminal result.
type Outcome struct {
	JobID        int64
	Request      clip.Request
	Status       queue.Status
	ArtifactPath string
	Err          error
	Attempts     int
}

// Succeeded reports whether the job produced its artifact.
func (o Outcome) Succeeded() bool {
	return o.Status == queue.StatusCompleted
}

// Report collects every outcome of one batch run in dispatch order.
type Report struct {
	SessionID string
	Outcomes  []Outcome
}

// Completed counts jobs that produced an artifact.
func (r *Report) Completed() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Succeeded() {
			count++
		}
	}
	return count
}

// Failed counts jobs that exhausted their chances.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Completed()
}
