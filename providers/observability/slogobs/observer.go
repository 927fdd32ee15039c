package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leofalp/promptfn/providers/observability"
)

// Observer implements observability.Provider on top of a slog.Logger. Spans
// become start/end log lines, metrics are kept in memory and echoed at
// debug level.
type Observer struct {
	logger *slog.Logger

	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

var _ observability.Provider = (*Observer)(nil)

// New builds an Observer. Without options it writes compact lines to stderr
// at the level named by PROMPTFN_LOG_LEVEL.
func New(opts ...Option) *Observer {
	o := buildOptions(opts)

	logger := o.logger
	if logger == nil {
		logger = slog.New(NewHandler(&HandlerOptions{
			Format: o.format,
			Level:  o.level,
			Output: o.output,
			Colors: o.colors,
		}))
	}

	return &Observer{
		logger:     logger,
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

// Logger exposes the underlying slog logger, e.g. for client middleware.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- tracing ---

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	s := &span{
		name:   name,
		start:  time.Now(),
		logger: o.logger,
		attrs:  append([]observability.Attribute(nil), attrs...),
	}
	o.logger.LogAttrs(ctx, LevelTrace, "span start", append([]slog.Attr{slog.String("span", name)}, toSlog(attrs)...)...)
	return observability.ContextWithSpan(ctx, s), s
}

type span struct {
	name   string
	start  time.Time
	logger *slog.Logger

	mu     sync.Mutex
	attrs  []observability.Attribute
	status observability.StatusCode
	desc   string
	ended  bool
}

func (s *span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	attrs := append([]slog.Attr{
		slog.String("span", s.name),
		slog.String(observability.AttrStatus, s.status.String()),
		slog.Duration(observability.AttrDuration, time.Since(s.start)),
	}, toSlog(s.attrs)...)
	if s.desc != "" {
		attrs = append(attrs, slog.String(observability.AttrStatusDescription, s.desc))
	}
	level := slog.LevelDebug
	if s.status == observability.StatusError {
		level = slog.LevelWarn
	}
	s.mu.Unlock()

	s.logger.LogAttrs(context.Background(), level, "span end", attrs...)
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	s.desc = description
}

func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.Error(err))
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	s.logger.LogAttrs(context.Background(), LevelTrace, name,
		append([]slog.Attr{slog.String("span", s.name)}, toSlog(attrs)...)...)
}

// --- metrics ---

func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.counters[name]
	if !ok {
		c = &counter{name: name, logger: o.logger}
		o.counters[name] = c
	}
	return c
}

func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	h, ok := o.histograms[name]
	if !ok {
		h = &histogram{name: name, logger: o.logger}
		o.histograms[name] = h
	}
	return h
}

// CounterValue returns the running total of a counter, or 0 if it was never
// used.
func (o *Observer) CounterValue(name string) int64 {
	o.mu.Lock()
	c, ok := o.counters[name]
	o.mu.Unlock()
	if !ok {
		return 0
	}
	return c.value.Load()
}

// HistogramCount returns how many values a histogram has recorded.
func (o *Observer) HistogramCount(name string) int64 {
	o.mu.Lock()
	h, ok := o.histograms[name]
	o.mu.Unlock()
	if !ok {
		return 0
	}
	return h.count.Load()
}

type counter struct {
	name   string
	logger *slog.Logger
	value  atomic.Int64
}

func (c *counter) Add(ctx context.Context, delta int64, attrs ...observability.Attribute) {
	total := c.value.Add(delta)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "counter", append([]slog.Attr{
		slog.String("metric", c.name),
		slog.Int64("delta", delta),
		slog.Int64("value", total),
	}, toSlog(attrs)...)...)
}

type histogram struct {
	name   string
	logger *slog.Logger
	count  atomic.Int64
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.count.Add(1)
	h.logger.LogAttrs(ctx, slog.LevelDebug, "histogram", append([]slog.Attr{
		slog.String("metric", h.name),
		slog.Float64("value", value),
	}, toSlog(attrs)...)...)
}

// --- logging ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, LevelTrace, msg, toSlog(attrs)...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, toSlog(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, toSlog(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, toSlog(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, toSlog(attrs)...)
}

func toSlog(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Any(a.Key, a.Value)
	}
	return out
}
