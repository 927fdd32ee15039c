package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/promptfn/providers/observability"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "trace", want: LevelTrace},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: " info ", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "Warning", want: slog.LevelWarn},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv("LOG_LEVEL", "error")
	if got := LevelFromEnv(); got != slog.LevelDebug {
		t.Errorf("LevelFromEnv() = %v, want DEBUG", got)
	}

	t.Setenv(EnvLogLevel, "")
	if got := LevelFromEnv(); got != slog.LevelError {
		t.Errorf("LevelFromEnv() fallback = %v, want ERROR", got)
	}

	t.Setenv("LOG_LEVEL", "")
	if got := LevelFromEnv(); got != slog.LevelInfo {
		t.Errorf("LevelFromEnv() default = %v, want INFO", got)
	}
}

func TestHandler_Compact(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Level: slog.LevelDebug, Output: &buf}))

	logger.Info("rendered prompt", "function", "ClassifyMessage", "length", 42)

	line := buf.String()
	for _, want := range []string{" INFO ", "rendered prompt", " → ", `"function":"ClassifyMessage"`, `"length":42`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "\033[") {
		t.Errorf("unexpected color codes in %q", line)
	}
}

func TestHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Format: FormatJSON, Output: &buf}))

	logger.With("impl", "fooimpl").WithGroup("llm").Warn("slow", "model", "gpt-4o", "took", 2*time.Second)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON line %q: %v", buf.String(), err)
	}
	if got["level"] != "WARN" || got["msg"] != "slow" {
		t.Errorf("unexpected record: %v", got)
	}
	if got["impl"] != "fooimpl" || got["llm.model"] != "gpt-4o" || got["llm.took"] != "2s" {
		t.Errorf("unexpected attributes: %v", got)
	}
}

func TestHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&HandlerOptions{Level: slog.LevelWarn, Output: &buf}))

	logger.Info("hidden")
	logger.Error("shown", "err", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO line should be filtered: %q", out)
	}
	if !strings.Contains(out, `"err":"boom"`) {
		t.Errorf("expected error attribute rendered as text: %q", out)
	}
}

func TestObserver_Span(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(LevelTrace), WithFormat(FormatJSON))

	ctx, span := obs.StartSpan(context.Background(), observability.SpanFunctionInvoke,
		observability.String(observability.AttrFunctionName, "ClassifyMessage"))
	if observability.SpanFromContext(ctx) != span {
		t.Error("span should be attached to the returned context")
	}
	span.SetAttributes(observability.Int(observability.AttrPromptLength, 120))
	observability.EndSpan(span, errors.New("backend down"))
	span.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected start and end lines, got %d: %q", len(lines), buf.String())
	}

	var end map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if end["level"] != "WARN" || end["status"] != "error" || end["error"] != "backend down" {
		t.Errorf("unexpected span end record: %v", end)
	}
	if end[observability.AttrPromptLength] != float64(120) {
		t.Errorf("expected prompt length attribute, got %v", end)
	}
}

func TestObserver_Metrics(t *testing.T) {
	obs := New(WithOutput(&bytes.Buffer{}), WithLevel(slog.LevelError))
	ctx := context.Background()

	obs.Counter(observability.MetricInvokeCount).Add(ctx, 1)
	obs.Counter(observability.MetricInvokeCount).Add(ctx, 2)
	obs.Histogram(observability.MetricInvokeDuration).Record(ctx, 0.5)

	if got := obs.CounterValue(observability.MetricInvokeCount); got != 3 {
		t.Errorf("CounterValue() = %d, want 3", got)
	}
	if got := obs.HistogramCount(observability.MetricInvokeDuration); got != 1 {
		t.Errorf("HistogramCount() = %d, want 1", got)
	}
	if got := obs.CounterValue("unknown"); got != 0 {
		t.Errorf("CounterValue(unknown) = %d, want 0", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := New(WithLogger(logger))

	if obs.Logger() != logger {
		t.Error("Logger() should return the injected logger")
	}
	obs.Debug(context.Background(), "hello", observability.Bool("ok", true))
	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "ok=true") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
