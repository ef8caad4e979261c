package cli

import (
	"io"
	"log/slog"
)

// LevelTrace is a custom trace level below slog.LevelDebug
const LevelTrace = slog.LevelDebug - 4

// levelForVerbosity maps the -v count to a slog level
func levelForVerbosity(verbosity int) slog.Level {
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	case 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// setupLogging installs the process logger. Quiet mode raises the bar
// to errors only; diagnostics always go to stderr so they never mix
// with command output.
func setupLogging(w io.Writer, verbosity int, quiet bool) {
	level := levelForVerbosity(verbosity)
	if quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
