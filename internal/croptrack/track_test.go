package croptrack_test

import (
	"math"
	"testing"
	"time"

	"clipper/internal/croptrack"
	"clipper/internal/detect"
)

func buildTrack(t *testing.T, params croptrack.Params, samples []detect.Sample) *croptrack.Track {
	t.Helper()
	builder := mustBuilder(t, params)
	track, err := builder.Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return track
}

func TestCropSizeMatchesAspectExactly(t *testing.T) {
	cases := []struct {
		name             string
		frameW, frameH   int
		aspectW, aspectH int
		wantW, wantH     float64
	}{
		{"vertical from landscape", 1920, 1080, 9, 16, 607.5, 1080},
		{"square from landscape", 1920, 1080, 1, 1, 1080, 1080},
		{"horizontal from landscape", 1920, 1080, 16, 9, 1920, 1080},
		{"horizontal from portrait", 1080, 1920, 16, 9, 1080, 607.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			params.FrameWidth = tc.frameW
			params.FrameHeight = tc.frameH
			params.AspectW = tc.aspectW
			params.AspectH = tc.aspectH

			track := buildTrack(t, params, nil)
			w, h := track.CropSize()
			if math.Abs(w-tc.wantW) > 1e-9 || math.Abs(h-tc.wantH) > 1e-9 {
				t.Fatalf("crop size %vx%v, want %vx%v", w, h, tc.wantW, tc.wantH)
			}
			if got, want := w*float64(tc.aspectH), h*float64(tc.aspectW); math.Abs(got-want) > 1e-6 {
				t.Fatalf("aspect drifted: w*ah=%v h*aw=%v", got, want)
			}
		})
	}
}

func TestRectAtStaysInsideFrame(t *testing.T) {
	params := testParams()
	// Centers chosen to push the crop past every edge.
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(10, 10, 40, 40, 0.9)}},
		{Time: 3 * time.Second, Boxes: []detect.Box{boxAt(1910, 1070, 40, 40, 0.9)}},
		{Time: 6 * time.Second, Boxes: []detect.Box{boxAt(960, 540, 40, 40, 0.9)}},
	}
	track := buildTrack(t, params, samples)

	for at := -time.Second; at <= 8*time.Second; at += 250 * time.Millisecond {
		rect := track.RectAt(at)
		if rect.X < -1e-9 || rect.Y < -1e-9 {
			t.Fatalf("rect at %v starts outside frame: %#v", at, rect)
		}
		if rect.X+rect.W > float64(params.FrameWidth)+1e-9 ||
			rect.Y+rect.H > float64(params.FrameHeight)+1e-9 {
			t.Fatalf("rect at %v exceeds frame: %#v", at, rect)
		}
		if math.Abs(rect.W*float64(params.AspectH)-rect.H*float64(params.AspectW)) > 1e-6 {
			t.Fatalf("rect at %v broke aspect: %#v", at, rect)
		}
	}
}

func TestRectAtInterpolatesLinearly(t *testing.T) {
	params := testParams()
	params.SmoothingAlpha = 1 // keyframes equal the observations
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(600, 540, 40, 40, 0.9)}},
		{Time: 4 * time.Second, Boxes: []detect.Box{boxAt(1000, 540, 40, 40, 0.9)}},
	}
	track := buildTrack(t, params, samples)

	rect := track.RectAt(2 * time.Second)
	wantCenter := 800.0
	if got := rect.X + rect.W/2; math.Abs(got-wantCenter) > 1e-9 {
		t.Fatalf("midpoint center x=%v, want %v", got, wantCenter)
	}
	rect = track.RectAt(3 * time.Second)
	wantCenter = 900.0
	if got := rect.X + rect.W/2; math.Abs(got-wantCenter) > 1e-9 {
		t.Fatalf("three-quarter center x=%v, want %v", got, wantCenter)
	}
}

func TestRectAtHoldsOutsideKeyframeRange(t *testing.T) {
	params := testParams()
	params.SmoothingAlpha = 1
	samples := []detect.Sample{
		{Time: time.Second, Boxes: []detect.Box{boxAt(700, 540, 40, 40, 0.9)}},
		{Time: 3 * time.Second, Boxes: []detect.Box{boxAt(1100, 540, 40, 40, 0.9)}},
	}
	track := buildTrack(t, params, samples)

	before := track.RectAt(0)
	first := track.RectAt(time.Second)
	if before != first {
		t.Fatalf("expected first keyframe held before range, got %#v vs %#v", before, first)
	}
	after := track.RectAt(10 * time.Second)
	last := track.RectAt(3 * time.Second)
	if after != last {
		t.Fatalf("expected last keyframe held after range, got %#v vs %#v", after, last)
	}
}

func TestRectAtClampsOffFrameCenters(t *testing.T) {
	params := testParams()
	params.SmoothingAlpha = 1
	// Subject at the far left edge: raw center 10 is closer to the edge than
	// half the crop width allows.
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(10, 540, 40, 40, 0.9)}},
	}
	track := buildTrack(t, params, samples)

	if raw := track.Keyframes()[0].CenterX; raw != 10 {
		t.Fatalf("expected raw keyframe center preserved, got %v", raw)
	}
	rect := track.RectAt(0)
	if math.Abs(rect.X) > 1e-9 {
		t.Fatalf("expected crop pinned to left edge, got x=%v", rect.X)
	}
}

func TestRectAtPinsFullSpanAxis(t *testing.T) {
	params := testParams() // 9:16 from 1920x1080: crop height spans the frame
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(960, 100, 40, 40, 0.9)}},
	}
	track := buildTrack(t, params, samples)

	rect := track.RectAt(0)
	if math.Abs(rect.Y) > 1e-9 || math.Abs(rect.H-1080) > 1e-9 {
		t.Fatalf("expected full-height crop pinned at y=0, got %#v", rect)
	}
}
