package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"clipper/internal/logging"
	"clipper/internal/services"
)

func TestContextFieldsExtractsAnnotations(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "session-abc")
	ctx = services.WithJobID(ctx, 42)
	ctx = services.WithStage(ctx, "rendering")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 attrs, got %d: %v", len(fields), fields)
	}
	keys := make(map[string]string, len(fields))
	for _, attr := range fields {
		keys[attr.Key] = attr.Value.String()
	}
	if keys[logging.FieldSessionID] != "session-abc" {
		t.Fatalf("session attr = %q", keys[logging.FieldSessionID])
	}
	if keys[logging.FieldJobID] != "42" {
		t.Fatalf("job attr = %q", keys[logging.FieldJobID])
	}
	if keys[logging.FieldStage] != "rendering" {
		t.Fatalf("stage attr = %q", keys[logging.FieldStage])
	}
}

func TestContextFieldsEmptyWithoutAnnotations(t *testing.T) {
	if fields := logging.ContextFields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no attrs, got %v", fields)
	}
}

func TestWithContextAttachesFieldsToRecords(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithRequestID(context.Background(), "session-xyz")
	ctx = services.WithJobID(ctx, 7)
	ctx = services.WithStage(ctx, "downloading")

	logging.WithContext(ctx, base).Info("stage started")

	line := buf.String()
	for _, want := range []string{
		`"session_id":"session-xyz"`,
		`"job_id":7`,
		`"stage":"downloading"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %s: %s", want, line)
		}
	}
}

func TestWithContextToleratesNilLogger(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 1)
	logger := logging.WithContext(ctx, nil)
	if logger == nil {
		t.Fatal("expected a usable logger")
	}
	logger.Info("discarded")
}
