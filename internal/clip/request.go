package clip

import (
	"fmt"
	"time"

	"clipper/internal/services"
)

// Request describes one clip to extract from a source video. Immutable once
// scheduled.
type Request struct {
	Start  time.Duration
	End    time.Duration
	Title  string
	Score  float64
	Aspect Aspect
	Preset Preset
}

// Duration returns the clip length.
func (r Request) Duration() time.Duration {
	return r.End - r.Start
}

// Limits bounds acceptable clip durations.
type Limits struct {
	MinDuration time.Duration
	MaxDuration time.Duration
}

// Validate rejects malformed requests before they reach the scheduler. Every
// violation is reported as an invalid-request error, never silently dropped.
func (r Request) Validate(limits Limits) error {
	if r.Start < 0 {
		return services.Wrap(services.ErrInvalidRequest, "", "validate",
			fmt.Sprintf("start %.1fs before video start", r.Start.Seconds()), nil)
	}
	if r.End <= r.Start {
		return services.Wrap(services.ErrInvalidRequest, "", "validate",
			fmt.Sprintf("end %.1fs not after start %.1fs", r.End.Seconds(), r.Start.Seconds()), nil)
	}
	duration := r.Duration()
	if limits.MinDuration > 0 && duration < limits.MinDuration {
		return services.Wrap(services.ErrInvalidRequest, "", "validate",
			fmt.Sprintf("duration %.1fs below minimum %.1fs", duration.Seconds(), limits.MinDuration.Seconds()), nil)
	}
	if limits.MaxDuration > 0 && duration > limits.MaxDuration {
		return services.Wrap(services.ErrInvalidRequest, "", "validate",
			fmt.Sprintf("duration %.1fs above maximum %.1fs", duration.Seconds(), limits.MaxDuration.Seconds()), nil)
	}
	if _, err := ParseAspect(string(r.Aspect)); err != nil {
		return services.Wrap(services.ErrInvalidRequest, "", "validate", err.Error(), nil)
	}
	if _, err := ParsePreset(string(r.Preset)); err != nil {
		return services.Wrap(services.ErrInvalidRequest, "", "validate", err.Error(), nil)
	}
	return nil
}
