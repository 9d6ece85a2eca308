// Package logging builds the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr.  Production uses JSON lines so the
// output can be shipped as is; every other environment gets the text
// formatter.  An unknown level falls back to info.
func New(env, level string) *logrus.Logger {
	return newWithOutput(os.Stderr, env, level)
}

func newWithOutput(w io.Writer, env, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if env == "prod" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard returns a logger that drops everything.  Tests use it to keep
// output quiet.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
