package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the node logger. Debug mode uses a human-readable text
// format; otherwise logs are JSON for collection.
func NewLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout

	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
