// Package logging configures the process-wide zerolog logger and provides the
// gin request logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvDevelopment switches output to the human-readable console writer.
const EnvDevelopment = "development"

// Init sets the global logger format and level. Unknown levels fall back to info.
func Init(env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == EnvDevelopment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel maps a config string to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
