package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/config"
)

func TestLoadDefaultsExpandPathsAndHonourEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENROUTER_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "clipper", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "clips") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Clips.MinDurationSeconds != 15 || cfg.Clips.MaxDurationSeconds != 90 {
		t.Fatalf("unexpected duration bounds: %v/%v", cfg.Clips.MinDurationSeconds, cfg.Clips.MaxDurationSeconds)
	}
	if cfg.Tracking.SmoothingAlpha != 0.3 {
		t.Fatalf("unexpected smoothing alpha: %v", cfg.Tracking.SmoothingAlpha)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Workflow.Workers != 2 {
		t.Fatalf("unexpected worker count: %d", cfg.Workflow.Workers)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadParsesOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[clips]
min_duration_seconds = 20.0
max_duration_seconds = 60.0
default_aspect = "square"

[tracking]
smoothing_alpha = 0.5
hold_timeout_seconds = 2.0

[workflow]
workers = 4
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config file to be found, exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Clips.MinDurationSeconds != 20 || cfg.Clips.MaxDurationSeconds != 60 {
		t.Fatalf("unexpected duration bounds: %v/%v", cfg.Clips.MinDurationSeconds, cfg.Clips.MaxDurationSeconds)
	}
	if cfg.Clips.DefaultAspect != "square" {
		t.Fatalf("unexpected default aspect: %q", cfg.Clips.DefaultAspect)
	}
	if cfg.Tracking.SmoothingAlpha != 0.5 {
		t.Fatalf("unexpected smoothing alpha: %v", cfg.Tracking.SmoothingAlpha)
	}
	if cfg.Workflow.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Workflow.Workers)
	}
	// Untouched sections keep defaults.
	if cfg.Encode.CRF != 23 {
		t.Fatalf("unexpected crf: %d", cfg.Encode.CRF)
	}
}

func TestEncodeBinariesComeFromConfig(t *testing.T) {
	cfg := config.Default()
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected default binaries: %q/%q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[encode]
ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"
ffprobe_binary = "/opt/ffmpeg/bin/ffprobe"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", loaded.FFmpegBinary())
	}
	if loaded.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", loaded.FFprobeBinary())
	}

	// Blank values fall back to the conventional names.
	blankPath := filepath.Join(dir, "blank.toml")
	blank := `
[encode]
ffmpeg_binary = "  "
ffprobe_binary = ""
`
	if err := os.WriteFile(blankPath, []byte(blank), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	normalized, _, _, err := config.Load(blankPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if normalized.FFmpegBinary() != "ffmpeg" || normalized.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected blank binaries normalized, got %q/%q", normalized.FFmpegBinary(), normalized.FFprobeBinary())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"inverted durations", func(c *config.Config) {
			c.Clips.MinDurationSeconds = 90
			c.Clips.MaxDurationSeconds = 15
		}, "min_duration_seconds"},
		{"unknown aspect", func(c *config.Config) {
			c.Clips.DefaultAspect = "cinema"
		}, "unknown aspect"},
		{"unknown preset", func(c *config.Config) {
			c.Clips.DefaultPreset = "dramatic"
		}, "unknown preset"},
		{"alpha above 1", func(c *config.Config) {
			c.Tracking.SmoothingAlpha = 1.5
		}, "smoothing_alpha"},
		{"sample interval too wide", func(c *config.Config) {
			c.Tracking.SampleIntervalSeconds = 30
		}, "sample_interval_seconds"},
		{"zero workers", func(c *config.Config) {
			c.Workflow.Workers = 0
		}, "workers"},
		{"bad log format", func(c *config.Config) {
			c.Logging.Format = "xml"
		}, "logging.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	sample := config.SampleConfig()
	if !strings.Contains(sample, "hold_timeout_seconds = 3.0") {
		t.Fatal("sample config missing hold timeout default")
	}
	if !strings.Contains(sample, `default_preset = "minimal"`) {
		t.Fatal("sample config missing default preset")
	}
}
