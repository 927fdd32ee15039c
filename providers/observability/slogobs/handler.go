package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects how the Handler renders records.
type Format string

const (
	// FormatCompact renders one line per record with attributes as a JSON
	// object: "15:04:05.000  INFO message → {"key":"value"}".
	FormatCompact Format = "compact"

	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	Output io.Writer // defaults to os.Stderr
	Colors bool
}

// Handler is a small slog.Handler for terminal output. Derived handlers
// share the writer lock of their parent.
type Handler struct {
	format Format
	level  slog.Leveler
	out    io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

// NewHandler returns a Handler for opts. A nil opts logs compact INFO lines
// to stderr.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		out:    opts.Output,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.out == nil {
		h.out = os.Stderr
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.prefix, a)
		return true
	})

	var line []byte
	var err error
	if h.format == FormatJSON {
		line, err = h.jsonLine(r, fields)
	} else {
		line, err = h.compactLine(r, fields)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) compactLine(r slog.Record, fields map[string]any) ([]byte, error) {
	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05.000"))
	b.WriteByte(' ')

	level := fmt.Sprintf("%5s", levelName(r.Level))
	if h.colors {
		b.WriteString(levelColor(r.Level))
		b.WriteString(level)
		b.WriteString(colorReset)
	} else {
		b.WriteString(level)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)

	if len(fields) > 0 {
		// encoding/json sorts map keys, so lines are stable
		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		b.WriteString(" → ")
		b.Write(encoded)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (h *Handler) jsonLine(r slog.Record, fields map[string]any) ([]byte, error) {
	fields["time"] = r.Time.Format("2006-01-02T15:04:05.000Z07:00")
	fields["level"] = levelName(r.Level)
	fields["msg"] = r.Message

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, inner := range v.Group() {
			addAttr(fields, prefix+a.Key+".", inner)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindDuration:
		fields[prefix+a.Key] = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			fields[prefix+a.Key] = err.Error()
			return
		}
		fields[prefix+a.Key] = v.Any()
	default:
		fields[prefix+a.Key] = v.Any()
	}
}

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}
