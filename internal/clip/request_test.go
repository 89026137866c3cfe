package clip_test

import (
	"errors"
	"testing"
	"time"

	"clipper/internal/clip"
	"clipper/internal/services"
)

func validRequest() clip.Request {
	return clip.Request{
		Start:  60 * time.Second,
		End:    90 * time.Second,
		Title:  "Test Clip",
		Score:  8.5,
		Aspect: clip.AspectVertical,
		Preset: clip.PresetMinimal,
	}
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	limits := clip.Limits{MinDuration: 15 * time.Second, MaxDuration: 90 * time.Second}
	if err := validRequest().Validate(limits); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateRejectsMalformedRequests(t *testing.T) {
	limits := clip.Limits{MinDuration: 15 * time.Second, MaxDuration: 90 * time.Second}
	cases := []struct {
		name   string
		mutate func(*clip.Request)
	}{
		{"negative start", func(r *clip.Request) { r.Start = -time.Second; r.End = 20 * time.Second }},
		{"end before start", func(r *clip.Request) { r.End = r.Start - time.Second }},
		{"end equals start", func(r *clip.Request) { r.End = r.Start }},
		{"too short", func(r *clip.Request) { r.End = r.Start + 5*time.Second }},
		{"too long", func(r *clip.Request) { r.End = r.Start + 5*time.Minute }},
		{"unknown aspect", func(r *clip.Request) { r.Aspect = "panoramic" }},
		{"unknown preset", func(r *clip.Request) { r.Preset = "loud" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			err := req.Validate(limits)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrInvalidRequest) {
				t.Fatalf("expected invalid-request marker, got %v", err)
			}
		})
	}
}

func TestAspectGeometry(t *testing.T) {
	cases := []struct {
		aspect     clip.Aspect
		rw, rh     int
		outW, outH int
	}{
		{clip.AspectVertical, 9, 16, 1080, 1920},
		{clip.AspectSquare, 1, 1, 1080, 1080},
		{clip.AspectHorizontal, 16, 9, 1920, 1080},
	}
	for _, tc := range cases {
		rw, rh := tc.aspect.Ratio()
		if rw != tc.rw || rh != tc.rh {
			t.Fatalf("%s: unexpected ratio %d:%d", tc.aspect, rw, rh)
		}
		w, h := tc.aspect.Resolution()
		if w != tc.outW || h != tc.outH {
			t.Fatalf("%s: unexpected resolution %dx%d", tc.aspect, w, h)
		}
	}
}

func TestParseAspectAndPresetNormalize(t *testing.T) {
	aspect, err := clip.ParseAspect("  Vertical ")
	if err != nil || aspect != clip.AspectVertical {
		t.Fatalf("ParseAspect: got %q err %v", aspect, err)
	}
	preset, err := clip.ParsePreset("BOLD")
	if err != nil || preset != clip.PresetBold {
		t.Fatalf("ParsePreset: got %q err %v", preset, err)
	}
	if _, err := clip.ParseAspect("wide"); err == nil {
		t.Fatal("expected error for unknown aspect")
	}
	if _, err := clip.ParsePreset(""); err == nil {
		t.Fatal("expected error for empty preset")
	}
}
