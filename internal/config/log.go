package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the process logger at the configured level. Unknown
// levels fall back to info.
func NewLogger(s Settings) *logrus.Logger {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	return &logrus.Logger{
		Out: os.Stderr,
		Formatter: &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}
}

// Component scopes a logger to one subsystem.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}

// NopLogger discards everything. Tests use it when they do not assert on log
// output.
func NopLogger() *logrus.Entry {
	l := logrus.New()
	l.Out = discard{}
	l.Level = logrus.PanicLevel
	return logrus.NewEntry(l)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
