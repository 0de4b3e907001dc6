package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is attached to every log line
const ServiceName = "goldentime-records"

// Init configures the global zerolog logger
func Init(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if format == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("service", ServiceName).Logger()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", ServiceName).Logger()
}

// Get returns the global logger
func Get() zerolog.Logger {
	return log.Logger
}
