package croptrack_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"clipper/internal/croptrack"
	"clipper/internal/detect"
)

func testParams() croptrack.Params {
	return croptrack.Params{
		FrameWidth:     1920,
		FrameHeight:    1080,
		AspectW:        9,
		AspectH:        16,
		HoldTimeout:    3 * time.Second,
		SmoothingAlpha: 0.5,
	}
}

func mustBuilder(t *testing.T, params croptrack.Params) *croptrack.Builder {
	t.Helper()
	builder, err := croptrack.NewBuilder(params)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	return builder
}

func boxAt(cx, cy, w, h, confidence float64) detect.Box {
	return detect.Box{X: cx - w/2, Y: cy - h/2, W: w, H: h, Confidence: confidence}
}

func TestBuildHoldsThenSmoothsAfterDropout(t *testing.T) {
	builder := mustBuilder(t, testParams())
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(100, 100, 80, 80, 0.9)}},
		{Time: 2 * time.Second},
		{Time: 5 * time.Second, Boxes: []detect.Box{boxAt(140, 160, 80, 80, 0.9)}},
	}

	track, err := builder.Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	frames := track.Keyframes()
	if len(frames) != 3 {
		t.Fatalf("expected 3 keyframes, got %d", len(frames))
	}

	// Dropout inside the hold window freezes the previous value.
	if frames[1].CenterX != frames[0].CenterX || frames[1].CenterY != frames[0].CenterY {
		t.Fatalf("expected held keyframe, got %#v vs %#v", frames[1], frames[0])
	}
	// Resumed detection blends via EMA: 0.5*(140,160) + 0.5*(100,100).
	if frames[2].CenterX != 120 || frames[2].CenterY != 130 {
		t.Fatalf("expected smoothed center (120,130), got (%v,%v)", frames[2].CenterX, frames[2].CenterY)
	}
}

func TestBuildFallsBackToFrameCenterAfterHoldExpires(t *testing.T) {
	params := testParams()
	params.SmoothingAlpha = 1 // isolate the fallback target from smoothing
	builder := mustBuilder(t, params)

	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(300, 300, 80, 80, 0.9)}},
		{Time: 4 * time.Second}, // beyond the 3s hold window
	}
	track, err := builder.Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	frames := track.Keyframes()
	if frames[1].CenterY != 540 {
		t.Fatalf("expected fallback to frame center y=540, got %v", frames[1].CenterY)
	}
}

func TestBuildSeedsFromFirstObservation(t *testing.T) {
	builder := mustBuilder(t, testParams())
	track, err := builder.Build([]detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(400, 200, 80, 80, 0.9)}},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	frame := track.Keyframes()[0]
	if frame.CenterX != 400 || frame.CenterY != 200 {
		t.Fatalf("expected seed from observation, got (%v,%v)", frame.CenterX, frame.CenterY)
	}
}

func TestBuildSeedsFromFrameCenterWhenNothingDetected(t *testing.T) {
	builder := mustBuilder(t, testParams())
	track, err := builder.Build([]detect.Sample{{Time: 0}, {Time: time.Second}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, frame := range track.Keyframes() {
		if frame.CenterY != 540 {
			t.Fatalf("expected frame-center keyframes, got %#v", frame)
		}
	}
}

func TestSubjectSelectionTieBreaks(t *testing.T) {
	builder := mustBuilder(t, testParams())

	// Highest confidence wins outright.
	track, err := builder.Build([]detect.Sample{
		{Time: 0, Boxes: []detect.Box{
			boxAt(1000, 500, 200, 200, 0.6),
			boxAt(300, 300, 50, 50, 0.9),
		}},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := track.Keyframes()[0].CenterX; got != 300 {
		t.Fatalf("expected confidence winner at x=300, got %v", got)
	}

	// Equal confidence: the box nearest the previous chosen center wins.
	track, err = builder.Build([]detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(300, 300, 80, 80, 0.9)}},
		{Time: time.Second, Boxes: []detect.Box{
			boxAt(1200, 600, 300, 300, 0.9),
			boxAt(320, 310, 80, 80, 0.9),
		}},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second := track.Keyframes()[1]
	// EMA of (320,310) toward (300,300): 0.5*320+0.5*300 = 310.
	if second.CenterX != 310 {
		t.Fatalf("expected continuity winner, got center x=%v", second.CenterX)
	}

	// Equal confidence and no previous center: larger area wins.
	track, err = builder.Build([]detect.Sample{
		{Time: 0, Boxes: []detect.Box{
			boxAt(500, 400, 60, 60, 0.9),
			boxAt(900, 600, 200, 200, 0.9),
		}},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := track.Keyframes()[0].CenterX; got != 900 {
		t.Fatalf("expected area winner at x=900, got %v", got)
	}
}

func TestBuildRejectsUnorderedSamples(t *testing.T) {
	builder := mustBuilder(t, testParams())
	_, err := builder.Build([]detect.Sample{
		{Time: 2 * time.Second},
		{Time: time.Second},
	})
	if err == nil {
		t.Fatal("expected error for unordered samples")
	}
	_, err = builder.Build([]detect.Sample{
		{Time: time.Second},
		{Time: time.Second},
	})
	if err == nil {
		t.Fatal("expected error for duplicate sample times")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := mustBuilder(t, testParams())
	samples := []detect.Sample{
		{Time: 0, Boxes: []detect.Box{boxAt(220, 330, 90, 90, 0.8), boxAt(700, 340, 90, 90, 0.8)}},
		{Time: time.Second},
		{Time: 2 * time.Second, Boxes: []detect.Box{boxAt(260, 310, 90, 90, 0.95)}},
		{Time: 6 * time.Second},
		{Time: 7 * time.Second, Boxes: []detect.Box{boxAt(1500, 800, 120, 120, 0.7)}},
	}

	first, err := builder.Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := builder.Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(first.Keyframes(), second.Keyframes()) {
		t.Fatal("expected identical keyframes for identical input")
	}
}

func TestBuildEmptySamplesCentersFrame(t *testing.T) {
	builder := mustBuilder(t, testParams())
	track, err := builder.Build(nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	rect := track.RectAt(0)
	wantX := 1920.0/2 - rect.W/2
	if math.Abs(rect.X-wantX) > 1e-9 {
		t.Fatalf("expected centered rect, got x=%v want %v", rect.X, wantX)
	}
}

func TestNewBuilderValidatesParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*croptrack.Params)
	}{
		{"zero frame", func(p *croptrack.Params) { p.FrameWidth = 0 }},
		{"zero aspect", func(p *croptrack.Params) { p.AspectH = 0 }},
		{"alpha zero", func(p *croptrack.Params) { p.SmoothingAlpha = 0 }},
		{"alpha above one", func(p *croptrack.Params) { p.SmoothingAlpha = 1.2 }},
		{"negative hold", func(p *croptrack.Params) { p.HoldTimeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			tc.mutate(&params)
			if _, err := croptrack.NewBuilder(params); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
