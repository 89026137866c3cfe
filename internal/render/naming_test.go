package render_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipper/internal/clip"
	"clipper/internal/render"
	"clipper/internal/services"
)

func namedRequest(title string) clip.Request {
	return clip.Request{
		Start:  75 * time.Second,
		End:    105 * time.Second,
		Title:  title,
		Aspect: clip.AspectVertical,
		Preset: clip.PresetMinimal,
	}
}

func TestArtifactNameIsDeterministic(t *testing.T) {
	request := namedRequest("the big reveal!")
	first := render.ArtifactName(request)
	second := render.ArtifactName(request)
	if first != second {
		t.Fatalf("naming not stable: %q vs %q", first, second)
	}
	if first != "TheBigReveal-vertical-0075.mp4" {
		t.Fatalf("unexpected artifact name %q", first)
	}
}

func TestArtifactNameHandlesHostileTitles(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"", "clip-vertical-0075.mp4"},
		{"///???", "clip-vertical-0075.mp4"},
		{"mixed CASE title", "MixedCaseTitle-vertical-0075.mp4"},
	}
	for _, tc := range cases {
		if got := render.ArtifactName(namedRequest(tc.title)); got != tc.want {
			t.Fatalf("ArtifactName(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestRegistryRejectsDoubleClaim(t *testing.T) {
	registry := render.NewRegistry()
	path := filepath.Join(t.TempDir(), "clip.mp4")

	if err := registry.Claim(path, 1); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	// Re-claiming for the same job is idempotent.
	if err := registry.Claim(path, 1); err != nil {
		t.Fatalf("same-job reclaim failed: %v", err)
	}

	err := registry.Claim(path, 2)
	if !errors.Is(err, services.ErrNamingCollision) {
		t.Fatalf("expected ErrNamingCollision, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("collisions must not be retryable")
	}
}

func TestRegistryDetectsExistingFile(t *testing.T) {
	registry := render.NewRegistry()
	path := filepath.Join(t.TempDir(), "existing.mp4")
	if err := os.WriteFile(path, []byte("previous run"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := registry.Claim(path, 1); !errors.Is(err, services.ErrNamingCollision) {
		t.Fatalf("expected ErrNamingCollision for existing file, got %v", err)
	}
}

func TestRegistryReleaseAllowsReclaim(t *testing.T) {
	registry := render.NewRegistry()
	path := filepath.Join(t.TempDir(), "clip.mp4")

	if err := registry.Claim(path, 1); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	registry.Release(path, 1)
	if err := registry.Claim(path, 2); err != nil {
		t.Fatalf("claim after release failed: %v", err)
	}

	// Releasing with the wrong owner is a no-op.
	registry.Release(path, 1)
	if err := registry.Claim(path, 3); !errors.Is(err, services.ErrNamingCollision) {
		t.Fatalf("expected collision after wrong-owner release, got %v", err)
	}
}
