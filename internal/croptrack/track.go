package croptrack

import "time"

// Keyframe is one smoothed crop-center decision at a sampled time.
type Keyframe struct {
	Time    time.Duration
	CenterX float64
	CenterY float64
}

// Rect is a crop rectangle in source-frame pixels.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Track is a read-only view over a clip's keyframes. It answers crop
// rectangle queries for any time, interpolating linearly between keyframes
// and holding the nearest keyframe's value outside their range. Every
// rectangle it returns lies fully inside the source frame and matches the
// target aspect ratio exactly.
type Track struct {
	keyframes   []Keyframe
	frameWidth  float64
	frameHeight float64
	cropWidth   float64
	cropHeight  float64
}

func newTrack(p Params, keyframes []Keyframe) *Track {
	frameW := float64(p.FrameWidth)
	frameH := float64(p.FrameHeight)

	// Largest rectangle of the target ratio that fits the frame. One side
	// always spans the frame, the other derives from the ratio so the
	// aspect stays exact.
	var cropW, cropH float64
	if frameW*float64(p.AspectH) >= frameH*float64(p.AspectW) {
		cropH = frameH
		cropW = frameH * float64(p.AspectW) / float64(p.AspectH)
	} else {
		cropW = frameW
		cropH = frameW * float64(p.AspectH) / float64(p.AspectW)
	}

	// Keyframes keep their raw smoothed centers; clamping happens per query
	// so the stored sequence remains the smoothing recurrence verbatim.
	return &Track{
		keyframes:   keyframes,
		frameWidth:  frameW,
		frameHeight: frameH,
		cropWidth:   cropW,
		cropHeight:  cropH,
	}
}

// Keyframes returns a copy of the track's keyframe sequence.
func (t *Track) Keyframes() []Keyframe {
	cp := make([]Keyframe, len(t.keyframes))
	copy(cp, t.keyframes)
	return cp
}

// CropSize returns the constant crop rectangle dimensions.
func (t *Track) CropSize() (float64, float64) {
	return t.cropWidth, t.cropHeight
}

// RectAt returns the crop rectangle for the given clip-local time.
func (t *Track) RectAt(at time.Duration) Rect {
	cx, cy := t.centerAt(at)
	return Rect{
		X: cx - t.cropWidth/2,
		Y: cy - t.cropHeight/2,
		W: t.cropWidth,
		H: t.cropHeight,
	}
}

func (t *Track) centerAt(at time.Duration) (float64, float64) {
	frames := t.keyframes
	if len(frames) == 0 {
		return t.clampCenter(t.frameWidth/2, t.frameHeight/2)
	}
	if at <= frames[0].Time {
		return t.clampCenter(frames[0].CenterX, frames[0].CenterY)
	}
	last := frames[len(frames)-1]
	if at >= last.Time {
		return t.clampCenter(last.CenterX, last.CenterY)
	}

	// Binary search for the first keyframe at or after the query time.
	lo, hi := 0, len(frames)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if frames[mid].Time <= at {
			lo = mid
		} else {
			hi = mid
		}
	}
	before, after := frames[lo], frames[hi]
	if after.Time == before.Time {
		return t.clampCenter(after.CenterX, after.CenterY)
	}

	fraction := float64(at-before.Time) / float64(after.Time-before.Time)
	cx := before.CenterX + fraction*(after.CenterX-before.CenterX)
	cy := before.CenterY + fraction*(after.CenterY-before.CenterY)
	return t.clampCenter(cx, cy)
}

// clampCenter keeps the whole crop rectangle inside the frame: the center can
// never approach an edge closer than half the rectangle's dimension.
func (t *Track) clampCenter(cx, cy float64) (float64, float64) {
	halfW := t.cropWidth / 2
	halfH := t.cropHeight / 2

	cx = clamp(cx, halfW, t.frameWidth-halfW)
	cy = clamp(cy, halfH, t.frameHeight-halfH)
	return cx, cy
}

func clamp(value, lower, upper float64) float64 {
	if lower > upper {
		// Crop spans the full frame on this axis; only one center is legal.
		return (lower + upper) / 2
	}
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
