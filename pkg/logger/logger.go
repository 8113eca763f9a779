package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func Init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)

	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	}
}

// WithFields returns a structured entry for call sites that log key/value
// context (scoring decisions, reconciliation outcomes).
func WithFields(fields logrus.Fields) *logrus.Entry {
	ensure()
	return log.WithFields(fields)
}

func Info(args ...interface{}) {
	ensure()
	log.Info(args...)
}

func Error(args ...interface{}) {
	ensure()
	log.Error(args...)
}

func Debug(args ...interface{}) {
	ensure()
	log.Debug(args...)
}

func Warn(args ...interface{}) {
	ensure()
	log.Warn(args...)
}

func Fatal(args ...interface{}) {
	ensure()
	log.Fatal(args...)
}

// ensure lets tests and early callers log before Init runs.
func ensure() {
	if log == nil {
		Init()
	}
}
