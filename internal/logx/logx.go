// Package logx wires github.com/rs/zerolog the way
// arthur-debert-go-synthfs/pkg/synthfs/log.go does, so every package
// in this module shares one small, consistent logger construction
// path instead of each reinventing level parsing and output framing.
package logx

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger at level, writing to w with a human-readable
// console frame and a "lib" field identifying this module.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "spiffat").
		Logger()
}

// NewTest creates a logger for tests, keyed by a verbosity count (0 =
// warnings only, higher = more detail), matching NewTestLogger's
// switch in the donor.
func NewTest(w io.Writer, verbose int) zerolog.Logger {
	var level zerolog.Level
	switch {
	case verbose <= 0:
		level = zerolog.WarnLevel
	case verbose == 1:
		level = zerolog.InfoLevel
	case verbose == 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	return New(w, level)
}

// LevelFromString parses a level name, case-insensitively.
func LevelFromString(s string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(s))
}

// Default returns a warn-level logger writing to stderr.
func Default() zerolog.Logger {
	return New(os.Stderr, zerolog.WarnLevel)
}
