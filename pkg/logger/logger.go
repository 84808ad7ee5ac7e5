package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger every component receives through its constructor.
// Output is JSON to stdout; LOG_LEVEL selects the minimum level (default info).
func New() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()
}
