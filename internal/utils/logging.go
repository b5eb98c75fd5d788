package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a console logger on stderr. Debug lowers the level to debug
// and adds caller information.
func NewLogger(debug bool) *zerolog.Logger {
	return NewLoggerTo(os.Stderr, debug)
}

// NewLoggerTo creates a console logger writing to w.
func NewLoggerTo(w io.Writer, debug bool) *zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	return &logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
