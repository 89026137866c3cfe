package captions

import (
	"fmt"
	"time"
)

// Cue is a single subtitle entry. Timestamps are absolute source-video times
// when the cue comes from a subtitle file and clip-local times after
// synchronization against a clip window.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns the cue's on-screen time.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Window is a clip's absolute time span within the source video.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End - w.Start
}

func (w Window) validate() error {
	if w.Start < 0 {
		return fmt.Errorf("window start %v must not be negative", w.Start)
	}
	if w.End <= w.Start {
		return fmt.Errorf("window end %v must be after start %v", w.End, w.Start)
	}
	return nil
}

// Synchronize retimes absolute subtitle cues into a clip's local timeline.
// Cues fully inside the window shift by -window.Start, cues partially
// overlapping are clipped to the boundary first, and cues entirely outside
// are dropped. Every returned cue satisfies 0 <= Start < End <= Duration and
// indices are renumbered from one.
func Synchronize(cues []Cue, window Window) ([]Cue, error) {
	if err := window.validate(); err != nil {
		return nil, fmt.Errorf("caption window: %w", err)
	}

	local := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if cue.End <= window.Start || cue.Start >= window.End {
			continue
		}
		start := max(cue.Start, window.Start) - window.Start
		end := min(cue.End, window.End) - window.Start
		if end <= start {
			continue
		}
		local = append(local, Cue{
			Index: len(local) + 1,
			Start: start,
			End:   end,
			Text:  cue.Text,
		})
	}
	return local, nil
}
