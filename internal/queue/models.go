package queue

import (
	"fmt"
	"strings"
	"time"

	"clipper/internal/clip"
)

// Status represents the lifecycle of a clip job.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusTracking    Status = "tracking"
	StatusRendering   Status = "rendering"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusDownloading,
	StatusTracking,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// processingStatuses are the in-flight states a crashed run can leave behind.
var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusTracking:    {},
	StatusRendering:   {},
}

// ParseStatus validates a stored status string.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[status]; !ok {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return status, nil
}

// IsTerminal reports whether the status ends the job's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether the status marks in-flight work.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Statuses returns every known status in lifecycle order.
func Statuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// Item is one persisted clip job.
type Item struct {
	ID           int64
	SessionID    string
	SourceID     string
	Title        string
	Start        time.Duration
	End          time.Duration
	Score        float64
	Aspect       clip.Aspect
	Preset       clip.Preset
	Status       Status
	RetryCount   int
	ErrorMessage string
	MediaPath    string
	ArtifactPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Request reconstructs the clip request the item was scheduled from.
func (i *Item) Request() clip.Request {
	return clip.Request{
		Start:  i.Start,
		End:    i.End,
		Title:  i.Title,
		Score:  i.Score,
		Aspect: i.Aspect,
		Preset: i.Preset,
	}
}

// Summary aggregates queue counts for status reporting.
type Summary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Failed     int
}
