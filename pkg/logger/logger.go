// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// New returns a logger writing to stdout with the given level
// (debug|info|warn|error) and format (text|json). Unknown values fall back
// to info and text.
func New(level, format string) *logrus.Logger {
	l := logrus.New()
	configure(l, level, format, os.Stdout)
	return l
}

// Init configures the shared logger returned by L.
func Init(level, format string) *logrus.Logger {
	log = New(level, format)
	return log
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}

func configure(l *logrus.Logger, level, format string, out io.Writer) {
	switch level {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	l.SetOutput(out)
}
