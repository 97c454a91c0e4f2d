// README: Component-tagged zerolog loggers; console output in dev.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger with the given component field attached. APP_ENV=dev
// switches to the human-readable console writer.
func New(component string) zerolog.Logger {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
}

// Nop returns a logger that discards everything. Used by tests and optional
// dependencies that were constructed without a logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
