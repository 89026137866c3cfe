package config

import (
	"errors"
	"fmt"
)

var knownAspects = map[string]struct{}{
	"vertical":   {},
	"square":     {},
	"horizontal": {},
}

var knownPresets = map[string]struct{}{
	"minimal":  {},
	"bold":     {},
	"colorful": {},
	"subtle":   {},
	"none":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClips(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClips() error {
	if c.Clips.MinDurationSeconds >= c.Clips.MaxDurationSeconds {
		return fmt.Errorf("clips.min_duration_seconds (%.1f) must be below clips.max_duration_seconds (%.1f)",
			c.Clips.MinDurationSeconds, c.Clips.MaxDurationSeconds)
	}
	if _, ok := knownAspects[c.Clips.DefaultAspect]; !ok {
		return fmt.Errorf("clips.default_aspect: unknown aspect %q", c.Clips.DefaultAspect)
	}
	if _, ok := knownPresets[c.Clips.DefaultPreset]; !ok {
		return fmt.Errorf("clips.default_preset: unknown preset %q", c.Clips.DefaultPreset)
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.SmoothingAlpha <= 0 || c.Tracking.SmoothingAlpha > 1 {
		return errors.New("tracking.smoothing_alpha must be in (0, 1]")
	}
	if c.Tracking.MinConfidence < 0 || c.Tracking.MinConfidence > 1 {
		return errors.New("tracking.min_confidence must be between 0 and 1")
	}
	if c.Tracking.SampleIntervalSeconds >= c.Clips.MinDurationSeconds {
		return errors.New("tracking.sample_interval_seconds must be below the minimum clip duration")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return errors.New("encode.crf must be between 0 and 51")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
