package redisconn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/efritz/redisconn/iface"
)

type (
	// FlushPolicy controls when commands issued while pipelining are
	// written to the remote server.
	FlushPolicy = iface.FlushPolicy

	// FlushState is the flushing state of a single open pipeline.
	FlushState = iface.FlushState

	flushEachCommand struct{}
	flushOnClose     struct{}

	bufferedPolicy struct {
		bufferSize int
	}

	bufferedFlushing struct {
		commands   int64
		flushAfter int64
	}
)

// FlushEachCommand returns the default policy. Commands are written as
// soon as they are issued.
func FlushEachCommand() FlushPolicy {
	return flushEachCommand{}
}

// FlushOnClose returns a policy which holds every command of a pipeline
// until the pipeline is closed.
func FlushOnClose() FlushPolicy {
	return flushOnClose{}
}

// NewBufferedFlushPolicy returns a policy which writes buffered commands
// after every bufferSize commands, and once more when the pipeline is
// closed. A buffer size of 2 flushes after the 2nd, 4th, 6th, ... command.
func NewBufferedFlushPolicy(bufferSize int) (FlushPolicy, error) {
	if bufferSize <= 0 {
		return nil, usageErrorf("buffer size must be greater than 0 (got %d)", bufferSize)
	}

	return bufferedPolicy{bufferSize: bufferSize}, nil
}

func (p flushEachCommand) NewPipeline() FlushState            { return p }
func (flushEachCommand) OnOpen(conn iface.AsyncConn) error    { return nil }
func (flushEachCommand) OnCommand(conn iface.AsyncConn) error { return nil }
func (flushEachCommand) OnClose(conn iface.AsyncConn) error   { return nil }

func (p flushOnClose) NewPipeline() FlushState { return p }

func (flushOnClose) OnOpen(conn iface.AsyncConn) error {
	conn.SetAutoFlush(false)
	return nil
}

func (flushOnClose) OnCommand(conn iface.AsyncConn) error {
	return nil
}

func (flushOnClose) OnClose(conn iface.AsyncConn) error {
	return flushAndRestore(conn)
}

func (p bufferedPolicy) NewPipeline() FlushState {
	return &bufferedFlushing{flushAfter: int64(p.bufferSize)}
}

func (s *bufferedFlushing) OnOpen(conn iface.AsyncConn) error {
	conn.SetAutoFlush(false)
	return nil
}

func (s *bufferedFlushing) OnCommand(conn iface.AsyncConn) error {
	s.commands++

	if s.commands%s.flushAfter == 0 {
		return conn.Flush()
	}

	return nil
}

func (s *bufferedFlushing) OnClose(conn iface.AsyncConn) error {
	return flushAndRestore(conn)
}

// flushAndRestore writes all buffered commands and re-enables auto-flush
// even when the write fails.
func flushAndRestore(conn iface.AsyncConn) error {
	defer conn.SetAutoFlush(true)
	return conn.Flush()
}

// ParseFlushPolicy parses "each", "close" or "buffered:N".
func ParseFlushPolicy(value string) (FlushPolicy, error) {
	switch name, size, _ := strings.Cut(strings.ToLower(strings.TrimSpace(value)), ":"); name {
	case "each":
		return FlushEachCommand(), nil

	case "close":
		return FlushOnClose(), nil

	case "buffered":
		n, err := strconv.Atoi(size)
		if err != nil {
			return nil, newError(KindUsage, fmt.Sprintf("invalid buffer size %q", size), err)
		}

		return NewBufferedFlushPolicy(n)
	}

	return nil, usageErrorf("unknown flush policy %q", value)
}
