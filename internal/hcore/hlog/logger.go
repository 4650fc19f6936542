package hlog

import (
	"log/slog"
)

type Logger = *slog.Logger

func NewLogger(h slog.Handler) Logger {
	return slog.New(h)
}

// LevelFromDebug returns the level the CLI logs at.
func LevelFromDebug(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}
