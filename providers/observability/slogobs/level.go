package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and is used for span bookkeeping.
const LevelTrace = slog.LevelDebug - 4

// EnvLogLevel names the environment variable read by LevelFromEnv.
const EnvLogLevel = "PROMPTFN_LOG_LEVEL"

// ParseLevel parses TRACE, DEBUG, INFO, WARN (or WARNING) and ERROR,
// case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromEnv reads PROMPTFN_LOG_LEVEL, falling back to LOG_LEVEL. Unset or
// unknown values yield INFO.
func LevelFromEnv() slog.Level {
	value := os.Getenv(EnvLogLevel)
	if value == "" {
		value = os.Getenv("LOG_LEVEL")
	}
	level, err := ParseLevel(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using INFO\n", err)
	}
	return level
}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
