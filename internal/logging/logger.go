package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/config"
)

// NewLogger creates a structured zerolog.Logger from the log config.
// LOG_FORMAT=console switches to human-readable output.
func NewLogger(cfg config.LogConfig, version string) zerolog.Logger {
	return newLogger(os.Stdout, cfg, version)
}

func newLogger(w io.Writer, cfg config.LogConfig, version string) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(w).With().Timestamp().Str("service", "netguardd")
	if version != "" {
		ctx = ctx.Str("version", version)
	}
	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
