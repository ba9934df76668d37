// Package logging sets up the logrus logger handed to the Engine.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text-formatted logger writing to stderr, or to io.Discard
// when silent is set.
func New(silent bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if silent {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
	return log
}
