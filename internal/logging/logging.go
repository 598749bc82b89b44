// Package logging holds the logger shared by the codec packages.
package logging

import (
	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// Logger returns the package logger. It discards everything until
// SetLogger is called.
func Logger() *zerolog.Logger {
	return &logger
}

func SetLogger(l zerolog.Logger) {
	logger = l
}
