package detect

import (
	"context"
	"log/slog"
	"time"

	"clipper/internal/logging"
)

// Adapter shields the pipeline from detector failures. Every call runs under
// a per-call timeout; an error or timeout is reported as an empty result so a
// flaky detector degrades tracking instead of failing the clip.
type Adapter struct {
	detector      Detector
	timeout       time.Duration
	minConfidence float64
	logger        *slog.Logger
}

// NewAdapter wraps a detector with timeout and confidence filtering.
func NewAdapter(detector Detector, timeout time.Duration, minConfidence float64, logger *slog.Logger) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		detector:      detector,
		timeout:       timeout,
		minConfidence: minConfidence,
		logger:        logging.NewComponentLogger(logger, "detect"),
	}
}

// Detect returns the boxes found in the frame, or an empty slice when the
// detector errors, times out, or finds nothing above the confidence floor.
func (a *Adapter) Detect(ctx context.Context, framePath string) []Box {
	if a.detector == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	boxes, err := a.detector.Detect(callCtx, framePath)
	if err != nil {
		a.logger.Debug("detection unavailable",
			logging.String("frame", framePath),
			logging.Error(err),
		)
		return nil
	}

	if a.minConfidence <= 0 {
		return boxes
	}
	filtered := boxes[:0:0]
	for _, box := range boxes {
		if box.Confidence >= a.minConfidence {
			filtered = append(filtered, box)
		}
	}
	return filtered
}
