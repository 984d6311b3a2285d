package slogutil

import (
	"io"
	"log/slog"

	"monosplit/internal/config"
	"monosplit/internal/paths"
)

// LoggerFactory builds the logger for one CLI invocation.
// Level precedence: CLI flags > config logging.level > info.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
	counter  *WarningCounter
}

// NewLoggerFactory creates a new logger factory.
// cliLevel is nil when no verbosity flag was given.
func NewLoggerFactory(repoRoot string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
		cliLevel: cliLevel,
	}
}

// RunLogger returns a logger writing to stderr and, when logging.file is set,
// to <repoRoot>/.monosplit/logs/analyze.log. All records pass through a
// WarningCounter available via Warnings.
func (f *LoggerFactory) RunLogger(stderr io.Writer) *slog.Logger {
	level := f.effectiveLevel()
	handlers := []slog.Handler{NewLineHandler(stderr, &slog.HandlerOptions{Level: level})}

	if f.config.Logging.File && f.repoRoot != "" {
		if _, err := paths.EnsureLogsDir(f.repoRoot); err == nil {
			// file sink records at least info
			fileLevel := min(level, slog.LevelInfo)
			if file, err := OpenLogFile(paths.GetLogPath(f.repoRoot)); err == nil {
				f.closers = append(f.closers, file)
				handlers = append(handlers, NewLineHandler(file, &slog.HandlerOptions{Level: fileLevel}))
			}
		}
	}

	h := Fanout(handlers...)
	f.counter = NewWarningCounter(h)
	return slog.New(f.counter)
}

// Warnings returns the number of warnings logged through RunLogger.
func (f *LoggerFactory) Warnings() int {
	if f.counter == nil {
		return 0
	}
	return f.counter.Count()
}

func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
