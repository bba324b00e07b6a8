package redisconn

import (
	"errors"
	"fmt"
	"io"
	"net"

	redigo "github.com/gomodule/redigo/redis"
	goredis "github.com/redis/go-redis/v9"
)

type (
	// ErrorKind classifies the errors returned by a connection.
	ErrorKind int

	// Error is the error type returned from all connection operations
	// other than pipeline and transaction aggregation. The native error
	// which caused it (if any) is available through errors.Unwrap.
	Error struct {
		Kind    ErrorKind
		Message string
		Err     error
	}

	// PipelineError is returned when one or more commands of a pipeline
	// or transaction failed, or when their replies did not arrive in time.
	// Results holds one entry per non-status command in the order they
	// were issued. Failed commands are represented by their error. Results
	// is empty when the batch timed out.
	PipelineError struct {
		Err     error
		Results []interface{}
	}

	// ExceptionTranslator converts native driver errors into *Error values.
	ExceptionTranslator interface {
		Translate(err error) error
	}

	// TranslatorFunc adapts a function into an ExceptionTranslator.
	TranslatorFunc func(err error) error

	nativeTranslator struct{}
)

const (
	// KindUsage is an invalid use of the API, including commands
	// rejected by the remote server.
	KindUsage ErrorKind = iota

	// KindSystem is an unclassified failure.
	KindSystem

	// KindTimeout indicates a reply did not arrive in time.
	KindTimeout

	// KindConnectionFailure indicates the remote server could not be
	// reached or the connection was dropped.
	KindConnectionFailure

	// KindSubscribed indicates the connection already has a subscription.
	KindSubscribed
)

var (
	// ErrReplyTimeout is the native error used when an await elapses.
	ErrReplyTimeout = errors.New("redis command timed out")

	// ErrConnClosed is returned when dispatching on a closed native connection.
	ErrConnClosed = errors.New("connection closed")

	// ErrNoConnection is returned when the borrow timeout elapses.
	ErrNoConnection = errors.New("no connection available in pool")

	errAbandonedBatch = errors.New("connection closed with an open pipeline or transaction")

	// NativeTranslator is the default ExceptionTranslator.
	NativeTranslator ExceptionTranslator = nativeTranslator{}
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "invalid usage"
	case KindTimeout:
		return "timeout"
	case KindConnectionFailure:
		return "connection failure"
	case KindSubscribed:
		return "already subscribed"
	}

	return "system error"
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func usageErrorf(format string, args ...interface{}) *Error {
	return newError(KindUsage, fmt.Sprintf(format, args...), nil)
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline contained one or more invalid commands: %s", e.Err.Error())
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsUsage returns true if err is (or wraps) an invalid API usage error.
func IsUsage(err error) bool {
	return hasKind(err, KindUsage)
}

// IsTimeout returns true if err is (or wraps) a timeout error.
func IsTimeout(err error) bool {
	return hasKind(err, KindTimeout)
}

// IsConnectionFailure returns true if err is (or wraps) a connection failure.
func IsConnectionFailure(err error) bool {
	return hasKind(err, KindConnectionFailure)
}

// IsSubscribed returns true if err is (or wraps) an already subscribed error.
func IsSubscribed(err error) bool {
	return hasKind(err, KindSubscribed)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func (f TranslatorFunc) Translate(err error) error {
	return f(err)
}

func (nativeTranslator) Translate(err error) error {
	if err == nil {
		return nil
	}

	var (
		domainErr   *Error
		pipelineErr *PipelineError
		redigoErr   redigo.Error
		goredisErr  goredis.Error
		netErr      net.Error
	)

	switch {
	case errors.As(err, &domainErr), errors.As(err, &pipelineErr):
		return err

	case errors.As(err, &redigoErr), errors.As(err, &goredisErr):
		return newError(KindUsage, err.Error(), err)

	case errors.Is(err, ErrReplyTimeout):
		return newError(KindTimeout, "redis command timed out", err)

	case errors.As(err, &netErr) && netErr.Timeout():
		return newError(KindTimeout, "redis command timed out", err)

	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &netErr):
		return newError(KindConnectionFailure, "redis connection failed", err)

	case errors.Is(err, ErrNoConnection), errors.Is(err, ErrConnClosed):
		return newError(KindConnectionFailure, err.Error(), err)
	}

	return newError(KindSystem, "unknown redis exception", err)
}
