package croptrack

import (
	"errors"
	"fmt"
	"time"

	"clipper/internal/detect"
)

// Params configures track construction for one clip.
type Params struct {
	FrameWidth  int
	FrameHeight int
	// AspectW:AspectH is the target crop ratio.
	AspectW int
	AspectH int
	// HoldTimeout is how long the last known subject center is reused when
	// detection drops out before falling back to the frame center.
	HoldTimeout time.Duration
	// SmoothingAlpha is the EMA weight for each new observation.
	SmoothingAlpha float64
}

func (p Params) validate() error {
	if p.FrameWidth <= 0 || p.FrameHeight <= 0 {
		return fmt.Errorf("frame dimensions %dx%d must be positive", p.FrameWidth, p.FrameHeight)
	}
	if p.AspectW <= 0 || p.AspectH <= 0 {
		return fmt.Errorf("aspect ratio %d:%d must be positive", p.AspectW, p.AspectH)
	}
	if p.SmoothingAlpha <= 0 || p.SmoothingAlpha > 1 {
		return errors.New("smoothing alpha must be in (0, 1]")
	}
	if p.HoldTimeout < 0 {
		return errors.New("hold timeout must not be negative")
	}
	return nil
}

// Builder folds detection samples into a smoothed, bounds-clamped crop track.
// Building is a pure function of the samples and params: identical input
// always yields an identical track.
type Builder struct {
	params Params
}

// NewBuilder validates params and returns a Builder.
func NewBuilder(params Params) (*Builder, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("crop track params: %w", err)
	}
	return &Builder{params: params}, nil
}

// Build reduces the time-ordered samples into one keyframe per sample.
// Sample times must be strictly increasing; the smoothing recurrence makes
// the reduction inherently sequential.
func (b *Builder) Build(samples []detect.Sample) (*Track, error) {
	p := b.params
	frameCenterX := float64(p.FrameWidth) / 2
	frameCenterY := float64(p.FrameHeight) / 2

	if len(samples) == 0 {
		return newTrack(p, []Keyframe{{Time: 0, CenterX: frameCenterX, CenterY: frameCenterY}}), nil
	}

	keyframes := make([]Keyframe, 0, len(samples))

	var (
		smoothedX, smoothedY float64
		seeded               bool
		lastObserved         time.Duration
		haveObservation      bool
		prevChosenX          float64
		prevChosenY          float64
	)

	for i, sample := range samples {
		if i > 0 && sample.Time <= samples[i-1].Time {
			return nil, fmt.Errorf("sample times must be strictly increasing: %v after %v",
				sample.Time, samples[i-1].Time)
		}

		var observedX, observedY float64
		switch {
		case len(sample.Boxes) > 0:
			box := selectBox(sample.Boxes, haveObservation, prevChosenX, prevChosenY)
			observedX, observedY = box.CenterX(), box.CenterY()
			prevChosenX, prevChosenY = observedX, observedY
			lastObserved = sample.Time
			haveObservation = true
		case seeded && haveObservation && sample.Time-lastObserved <= p.HoldTimeout:
			// Short dropout: freeze the track at its last value.
			keyframes = append(keyframes, Keyframe{Time: sample.Time, CenterX: smoothedX, CenterY: smoothedY})
			continue
		default:
			// Lost for longer than the hold window (or never seen): drift
			// back to the frame center.
			observedX, observedY = frameCenterX, frameCenterY
		}

		if !seeded {
			smoothedX, smoothedY = observedX, observedY
			seeded = true
		} else {
			smoothedX = p.SmoothingAlpha*observedX + (1-p.SmoothingAlpha)*smoothedX
			smoothedY = p.SmoothingAlpha*observedY + (1-p.SmoothingAlpha)*smoothedY
		}

		keyframes = append(keyframes, Keyframe{Time: sample.Time, CenterX: smoothedX, CenterY: smoothedY})
	}

	return newTrack(p, keyframes), nil
}

// selectBox picks the subject box for one sample: highest confidence first,
// then nearest to the previously chosen center, then larger area.
func selectBox(boxes []detect.Box, havePrev bool, prevX, prevY float64) detect.Box {
	best := boxes[0]
	for _, candidate := range boxes[1:] {
		if betterBox(candidate, best, havePrev, prevX, prevY) {
			best = candidate
		}
	}
	return best
}

func betterBox(a, b detect.Box, havePrev bool, prevX, prevY float64) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if havePrev {
		distA := distanceSquared(a.CenterX(), a.CenterY(), prevX, prevY)
		distB := distanceSquared(b.CenterX(), b.CenterY(), prevX, prevY)
		if distA != distB {
			return distA < distB
		}
	}
	return a.Area() > b.Area()
}

func distanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}
