package internal

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the command-line logger: colored text, full timestamps,
// optional file output. An unknown level falls back to info.
func NewLogger(logfile, level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else if level != "" {
		log.Warnf("Unknown log level %q, using info", level)
	}
	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(file)
		} else {
			log.Warn("Failed to open log file, logging to stdout")
		}
	}
	return log
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
