// Package slogutil builds the loggers used by monosplit: a single-line text
// handler, level parsing for flags and config, fan-out to several sinks and a
// warning counter.
package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Silent is above every standard level and disables output.
const Silent = slog.Level(100)

// NewLogger returns a logger writing the line format to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenLogFile opens path for appending, creating it if needed.
func OpenLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// LevelFromString parses debug, info, warn (or warning) and error, case
// insensitive, including offsets such as "debug+2". Anything else is info.
func LevelFromString(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

var verbosityLevels = []slog.Level{slog.LevelWarn, slog.LevelInfo, slog.LevelDebug}

// LevelFromVerbosity maps -q and the -v count to a level: warn by default,
// info for -v, debug for -vv and beyond. quiet wins over any -v.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return Silent
	}
	return verbosityLevels[min(max(verbosity, 0), len(verbosityLevels)-1)]
}
