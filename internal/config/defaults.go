package config

const (
	defaultWorkDir   = "~/.local/share/clipper/work"
	defaultOutputDir = "~/clips"
	defaultLogDir    = "~/.local/share/clipper/logs"

	defaultMinClipSeconds = 15
	defaultMaxClipSeconds = 90
	defaultAspect         = "vertical"
	defaultPreset         = "minimal"

	defaultSampleInterval = 1.0
	defaultHoldTimeout    = 3.0
	defaultSmoothingAlpha = 0.3
	defaultDetectorBinary = "facedetect"
	defaultDetectTimeout  = 5.0
	defaultMinConfidence  = 0.5

	defaultDownloadBinary  = "yt-dlp"
	defaultDownloadFormat  = "bestvideo[ext=mp4][vcodec^=avc1]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	defaultDownloadTimeout = 1800

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultEncodePreset  = "fast"
	defaultEncodeCRF     = 23
	defaultAudioBitrate  = "128k"
	defaultEncodeTimeout = 900

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds = 120

	defaultWorkers    = 2
	defaultMaxRetries = 2
	defaultRetryDelay = 5

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Clips: Clips{
			MinDurationSeconds: defaultMinClipSeconds,
			MaxDurationSeconds: defaultMaxClipSeconds,
			DefaultAspect:      defaultAspect,
			DefaultPreset:      defaultPreset,
		},
		Tracking: Tracking{
			SampleIntervalSeconds: defaultSampleInterval,
			HoldTimeoutSeconds:    defaultHoldTimeout,
			SmoothingAlpha:        defaultSmoothingAlpha,
			DetectorBinary:        defaultDetectorBinary,
			DetectTimeoutSeconds:  defaultDetectTimeout,
			MinConfidence:         defaultMinConfidence,
		},
		Download: Download{
			Binary:         defaultDownloadBinary,
			Format:         defaultDownloadFormat,
			TimeoutSeconds: defaultDownloadTimeout,
		},
		Encode: Encode{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			Preset:         defaultEncodePreset,
			CRF:            defaultEncodeCRF,
			AudioBitrate:   defaultAudioBitrate,
			TimeoutSeconds: defaultEncodeTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Workflow: Workflow{
			Workers:           defaultWorkers,
			MaxRetries:        defaultMaxRetries,
			RetryDelaySeconds: defaultRetryDelay,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
