package slogobs

import (
	"io"
	"log/slog"
)

// Option configures an Observer.
type Option func(*options)

type options struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	logger *slog.Logger
}

// WithFormat sets the handler format.
func WithFormat(format Format) Option {
	return func(o *options) { o.format = format }
}

// WithLevel sets the minimum level. It defaults to LevelFromEnv.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) { o.level = level }
}

// WithOutput sets where log lines are written. It defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithColors enables ANSI level colors in compact output.
func WithColors(enabled bool) Option {
	return func(o *options) { o.colors = enabled }
}

// WithLogger reuses an existing logger. Format, level, output and color
// options are then ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{format: FormatCompact}
	for _, opt := range opts {
		opt(&o)
	}
	if o.level == nil {
		o.level = LevelFromEnv()
	}
	return o
}
