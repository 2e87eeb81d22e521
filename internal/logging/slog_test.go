package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "probing backend", "mode", "local")
	log.Info(ctx, "file uploaded", "size", 42)
	log.Warn(ctx, "size mismatch", "declared", 10)
	log.Error(ctx, "merge failed", "parts", 3)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=\"probing backend\"", "mode=local",
		"level=INFO", "msg=\"file uploaded\"", "size=42",
		"level=WARN", "msg=\"size mismatch\"", "declared=10",
		"level=ERROR", "msg=\"merge failed\"", "parts=3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_WithCarriesAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	child := log.With("identifier", "abc123")
	child.Info(context.Background(), "part uploaded", "partNumber", 2)

	out := buf.String()
	for _, want := range []string{"identifier=abc123", "partNumber=2", "msg=\"part uploaded\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSlogLogger_TODOContextIsSafe(t *testing.T) {
	log, _ := newTestLogger(t)

	ctx := context.TODO()
	log.Debug(ctx, "ok")
	log.Info(ctx, "ok")
	log.Warn(ctx, "ok")
	log.Error(ctx, "ok")
}
