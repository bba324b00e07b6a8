package redisconn

import (
	"log"
	"os"

	"github.com/efritz/redisconn/iface"
)

type (
	// Logger is an interface to the logger the connection writes to.
	Logger = iface.Logger

	defaultLogger struct {
		logger *log.Logger
	}

	nilLogger struct{}
)

// NilLogger discards all messages.
var NilLogger Logger = &nilLogger{}

// NewDefaultLogger creates a logger which writes to stderr using Go's
// builtin logging library.
func NewDefaultLogger() Logger {
	return &defaultLogger{
		logger: log.New(os.Stderr, "redisconn: ", log.LstdFlags),
	}
}

func (l *defaultLogger) Printf(format string, args ...interface{}) {
	l.logger.Printf(format, args...)
}

func (l *nilLogger) Printf(format string, args ...interface{}) {
}
