// Package logging builds the process logger from config.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexHedge/config"
)

// New returns a JSON logger on stderr, or a human readable console logger when
// debug is enabled. Unknown levels fall back to info.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter sets the process-wide level from cfg. The returned logger
// carries no level of its own, so a later SetGlobalLevel raises or lowers it.
func NewWithWriter(cfg *config.Config, w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(Level(cfg))

	out := w
	if cfg.Debug {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// Level resolves the configured level. Debug mode never logs above debug.
func Level(cfg *config.Config) zerolog.Level {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	return level
}
