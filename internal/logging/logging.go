// Package logging configures the process-wide logger.
package logging

import (
	"github.com/sirupsen/logrus"
)

// NewLogger creates a logrus logger at the given level. An unknown level
// falls back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
