package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipper/internal/media"
	"clipper/internal/services"
)

func TestFetchReturnsLocalFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "already-here.mp4")
	if err := os.WriteFile(local, []byte("video bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	downloader := media.NewYtDlp("yt-dlp-not-installed", nil)
	got, err := downloader.Fetch(context.Background(), local, 0, 30*time.Second, dir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != local {
		t.Fatalf("expected local path passthrough, got %q", got)
	}
}

func TestFetchRejectsInvertedSection(t *testing.T) {
	downloader := media.NewYtDlp("yt-dlp", nil)
	_, err := downloader.Fetch(context.Background(), "some-id", 10*time.Second, 5*time.Second, t.TempDir())
	if !errors.Is(err, services.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("inverted section must not be retryable")
	}
}
