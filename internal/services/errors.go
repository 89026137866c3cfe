package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Stage code tags errors with one
// of these so the scheduler can decide between retrying and failing the job.
var (
	ErrExternalTool    = errors.New("external tool error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
	ErrInvalidRequest  = errors.New("invalid clip request")
	ErrDownloadFailed  = errors.New("download failed")
	ErrEncodeFailed    = errors.New("encode failed")
	ErrNamingCollision = errors.New("artifact naming collision")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a job-level failure is worth another attempt.
// Invalid requests and naming collisions never are; downloads and encodes are
// retried until the scheduler's budget runs out.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrNamingCollision),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration):
		return false
	case errors.Is(err, ErrDownloadFailed),
		errors.Is(err, ErrEncodeFailed),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrTransient),
		errors.Is(err, ErrExternalTool):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
