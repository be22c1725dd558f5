// Package logging builds the zerolog logger shared by the server and the
// detector.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. Console mode
// renders human-readable lines instead of JSON.
//
// The MCP server owns stdout, so callers pass os.Stderr.
func New(w io.Writer, level zerolog.Level, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
