package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewProduction creates a production logger with JSON output
func NewProduction() zerolog.Logger {
	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// NewDevelopment creates a development logger with pretty console output
func NewDevelopment() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

// NewWithWriter creates a logger with a custom writer and level
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// FromEnv builds a logger honoring LOG_LEVEL and LOG_FORMAT (console|json)
func FromEnv() zerolog.Logger {
	var logger zerolog.Logger
	if os.Getenv("LOG_FORMAT") == "console" {
		logger = NewDevelopment()
	} else {
		logger = NewProduction()
	}

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := zerolog.ParseLevel(levelStr); err == nil {
			logger = logger.Level(level)
		}
	}
	return logger
}

// Component returns a child logger tagged with the originating component
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests and pure library use
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
