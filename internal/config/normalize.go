package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeClips()
	c.normalizeTracking()
	c.normalizeDownload()
	c.normalizeEncode()
	c.normalizeLLM()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeClips() {
	if c.Clips.MinDurationSeconds <= 0 {
		c.Clips.MinDurationSeconds = defaultMinClipSeconds
	}
	if c.Clips.MaxDurationSeconds <= 0 {
		c.Clips.MaxDurationSeconds = defaultMaxClipSeconds
	}
	c.Clips.DefaultAspect = strings.ToLower(strings.TrimSpace(c.Clips.DefaultAspect))
	if c.Clips.DefaultAspect == "" {
		c.Clips.DefaultAspect = defaultAspect
	}
	c.Clips.DefaultPreset = strings.ToLower(strings.TrimSpace(c.Clips.DefaultPreset))
	if c.Clips.DefaultPreset == "" {
		c.Clips.DefaultPreset = defaultPreset
	}
}

func (c *Config) normalizeTracking() {
	if c.Tracking.SampleIntervalSeconds <= 0 {
		c.Tracking.SampleIntervalSeconds = defaultSampleInterval
	}
	if c.Tracking.HoldTimeoutSeconds <= 0 {
		c.Tracking.HoldTimeoutSeconds = defaultHoldTimeout
	}
	if c.Tracking.SmoothingAlpha <= 0 {
		c.Tracking.SmoothingAlpha = defaultSmoothingAlpha
	}
	c.Tracking.DetectorBinary = strings.TrimSpace(c.Tracking.DetectorBinary)
	if c.Tracking.DetectorBinary == "" {
		c.Tracking.DetectorBinary = defaultDetectorBinary
	}
	if c.Tracking.DetectTimeoutSeconds <= 0 {
		c.Tracking.DetectTimeoutSeconds = defaultDetectTimeout
	}
	if c.Tracking.MinConfidence < 0 {
		c.Tracking.MinConfidence = 0
	}
}

func (c *Config) normalizeDownload() {
	c.Download.Binary = strings.TrimSpace(c.Download.Binary)
	if c.Download.Binary == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	if strings.TrimSpace(c.Download.Format) == "" {
		c.Download.Format = defaultDownloadFormat
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = defaultDownloadTimeout
	}
}

func (c *Config) normalizeEncode() {
	c.Encode.FFmpegBinary = strings.TrimSpace(c.Encode.FFmpegBinary)
	if c.Encode.FFmpegBinary == "" {
		c.Encode.FFmpegBinary = defaultFFmpegBinary
	}
	c.Encode.FFprobeBinary = strings.TrimSpace(c.Encode.FFprobeBinary)
	if c.Encode.FFprobeBinary == "" {
		c.Encode.FFprobeBinary = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Encode.Preset) == "" {
		c.Encode.Preset = defaultEncodePreset
	}
	if c.Encode.CRF <= 0 {
		c.Encode.CRF = defaultEncodeCRF
	}
	if strings.TrimSpace(c.Encode.AudioBitrate) == "" {
		c.Encode.AudioBitrate = defaultAudioBitrate
	}
	if c.Encode.TimeoutSeconds <= 0 {
		c.Encode.TimeoutSeconds = defaultEncodeTimeout
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.MaxRetries < 0 {
		c.Workflow.MaxRetries = defaultMaxRetries
	}
	if c.Workflow.RetryDelaySeconds <= 0 {
		c.Workflow.RetryDelaySeconds = defaultRetryDelay
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
