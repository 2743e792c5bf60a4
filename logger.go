package sentrynative

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sentrynative/native"
)

// containLogger wraps a caller-supplied logger callback for registration
// with the engine. The engine invokes the callback from its own
// goroutines; a panic inside it is contained here and must never unwind
// into engine code.
func containLogger(logger LoggerFunc) native.LoggerFunc {
	return func(level int32, message string) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"function": "containLogger",
					"panic":    r,
				}).Error("Logger callback panicked")
			}
		}()
		logger(Level(level), message)
	}
}
