package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("capture")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("stream started", "sourceId", 1)

	out := buf.String()
	if strings.Contains(out, `msg="INFO stream started`) {
		t.Fatalf("unexpected nested severity prefix in message: %s", out)
	}
	if !strings.Contains(out, "msg=\"stream started\"") {
		t.Fatalf("expected plain message, got: %s", out)
	}
	if !strings.Contains(out, "component=capture") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "sourceId=1") {
		t.Fatalf("expected sourceId field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("capture")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestWithSessionAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger := WithSession(L("session"), "sess-42")
	logger.Info("joined")

	out := buf.String()
	if !strings.Contains(out, "sessionId=sess-42") {
		t.Fatalf("expected sessionId field, got: %s", out)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) == nil {
		t.Fatal("expected a non-nil default logger")
	}

	var buf bytes.Buffer
	want := slog.New(slog.NewTextHandler(&buf, nil))
	ctx = NewContext(ctx, want)
	if got := FromContext(ctx); got != want {
		t.Fatal("expected logger stored in context to be returned")
	}
}
