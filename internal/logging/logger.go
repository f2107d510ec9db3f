// internal/logging/logger.go

package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the application logger
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Options controls logger construction
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// New creates a configured logger. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	if strings.EqualFold(opts.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	}

	return logger
}

// ForService returns an entry tagged with the service name
func ForService(logger *logrus.Logger, service string) *logrus.Entry {
	return logger.WithField("service", service)
}

// Discard returns an entry that drops everything written to it
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
