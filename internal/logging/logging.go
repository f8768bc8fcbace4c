// Package logging builds the zerolog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Format selects the log output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

const defaultLevel = zerolog.WarnLevel

// Options configure New.
type Options struct {
	Level   string // empty means warn
	Format  string // empty means console
	Verbose bool   // forces debug level
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	switch Format(opts.Format) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", opts.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel parses a level name. The empty string is the default level.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return defaultLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
