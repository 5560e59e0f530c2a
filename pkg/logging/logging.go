// Package logging owns the process logger. Diagnostics go to stderr so
// stdout stays free for previews and command output.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	current.Store(&l)
}

// Options selects the logger's level and output format.
type Options struct {
	Level  string // trace, debug, info, warn, error; default warn
	Format string // console or json; default console
	Out    io.Writer
}

// Init builds the process logger and installs it as the package and
// zerolog global default.
func Init(app string, opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.WarnLevel
	if opts.Level != "" {
		lv, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), err
		}
		level = lv
	}

	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	current.Store(&logger)
	return logger, nil
}

// L returns the process logger. Before Init it discards everything.
func L() *zerolog.Logger {
	return current.Load()
}

// Discard resets the process logger to a no-op and returns it.
func Discard() *zerolog.Logger {
	l := zerolog.Nop()
	current.Store(&l)
	return &l
}
