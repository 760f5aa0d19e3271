// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup(slog.LevelInfo)               // stderr, colored on a terminal
//	logging.SetupWriter(w, slog.LevelDebug)     // explicit destination
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup installs a tint handler on stderr as the default logger.
func Setup(level slog.Level) *slog.Logger {
	return SetupWriter(os.Stderr, level)
}

// SetupWriter installs a tint handler writing to w as the default logger.
// Color is only used when w is a terminal.
func SetupWriter(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(w, level))
	slog.SetDefault(logger)
	return logger
}

// NewHandler returns the tint handler used by Setup without installing it.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
		NoColor:    !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
