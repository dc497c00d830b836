package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents logger configuration
type Config struct {
	Level       string // debug, info, warn, error, fatal
	Environment string // development, production
}

// Init configures the global zerolog logger: pretty console output in
// development, JSON with unix timestamps otherwise.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Environment == "development" || cfg.Environment == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
