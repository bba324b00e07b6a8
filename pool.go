package redisconn

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/bradhe/stopwatch"
	"github.com/efritz/glock"
	"github.com/efritz/overcurrent"
)

type (
	pool struct {
		dialer         DialFunc
		pubSubDialer   PubSubDialFunc
		capacity       int
		borrowTimeout  *time.Duration
		logger         Logger
		breakerFunc    BreakerFunc
		clock          glock.Clock
		connections    chan AsyncConn
		nilConnections chan AsyncConn
		mutex          sync.Mutex
	}

	// BreakerFunc bridges the interface between the Call function of
	// an overcurrent breaker and an overcurrent registry.
	BreakerFunc func(overcurrent.BreakerFunc) error
)

func noopBreakerFunc(f overcurrent.BreakerFunc) error {
	return f(context.Background())
}

// NewPool creates a fixed-capacity provider with initially nil-connections.
// If borrowTimeout is non-nil, Connection fails with ErrNoConnection when
// no connection is returned to the pool in time. Pub/sub connections are
// not pooled.
func NewPool(
	dialer DialFunc,
	pubSubDialer PubSubDialFunc,
	capacity int,
	borrowTimeout *time.Duration,
	logger Logger,
	breakerFunc BreakerFunc,
	clock glock.Clock,
) Provider {
	p := &pool{
		dialer:         dialer,
		pubSubDialer:   pubSubDialer,
		capacity:       capacity,
		borrowTimeout:  borrowTimeout,
		logger:         logger,
		breakerFunc:    breakerFunc,
		clock:          clock,
		connections:    make(chan AsyncConn, capacity),
		nilConnections: make(chan AsyncConn, capacity),
	}

	// Set the capacity of the pool. Each time a nil value is borrowed, a new
	// connection is established and used in its place.

	for i := 0; i < p.capacity; i++ {
		p.nilConnections <- nil
	}

	return p
}

func (p *pool) Connection() (AsyncConn, error) {
	start := stopwatch.Start()
	conn, err := p.borrow()
	elapsed := start.Stop()

	if err == nil {
		p.logger.Printf("Received connection after %s", elapsed)
	} else {
		p.logger.Printf("Could not borrow connection after %s", elapsed)
	}

	return conn, err
}

func (p *pool) PubSubConnection() (PubSubConn, error) {
	var conn PubSubConn
	err := p.breakerFunc(func(ctx context.Context) error {
		temp, err := p.pubSubDialer()
		conn = temp
		return err
	})

	if err != nil {
		p.logger.Printf("Could not connect to Redis (%s)", err.Error())
		return nil, err
	}

	return conn, nil
}

// Release returns a connection to the pool. A nil value frees the slot
// of a connection which encountered an error, and so does a connection
// which reports itself as unusable. Pub/sub connections are closed.
func (p *pool) Release(conn io.Closer) error {
	switch c := conn.(type) {
	case nil:
		p.nilConnections <- nil

	case AsyncConn:
		if err := c.Err(); err != nil {
			p.logger.Printf("Discarding broken connection (%s)", err.Error())
			p.nilConnections <- nil
			return c.Close()
		}

		c.SetAutoFlush(true)
		p.connections <- c

	default:
		return c.Close()
	}

	return nil
}

func (p *pool) Close() {
	for i := 0; i < p.capacity; i++ {
		if conn, _ := p.get(nil); conn != nil {
			if err := conn.Close(); err != nil {
				p.logger.Printf("Could not close connection (%s)", err.Error())
			}
		}
	}

	close(p.connections)
	close(p.nilConnections)
}

//
// Pool Helper Functions

func (p *pool) borrow() (AsyncConn, error) {
	conn, ok := p.get(p.borrowTimeout)
	if !ok {
		return nil, ErrNoConnection
	}

	if conn != nil {
		return conn, nil
	}

	return p.dial()
}

// Get a value from the pool. If timeout is nil, no timeout is applied.
// This method attempts to read from the non-nil connection channel first
// in order to minimize the number of open connections when the pool is
// not under heavy concurrent load.
func (p *pool) get(timeout *time.Duration) (AsyncConn, bool) {
	select {
	case conn := <-p.connections:
		return conn, true
	default:
	}

	select {
	case conn := <-p.connections:
		return conn, true

	case conn := <-p.nilConnections:
		return conn, true

	case <-makeTimeoutChan(timeout, p.clock):
		return nil, false
	}
}

// Dial a new Redis connection. The call to the dialer function is wrapped
// in a circuit breaker so that if the remote end is down we are not going
// to hammer it.
func (p *pool) dial() (AsyncConn, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var conn AsyncConn
	err := p.breakerFunc(func(ctx context.Context) error {
		temp, err := p.dialer()
		conn = temp
		return err
	})

	if err != nil {
		// We were dialing a nil connection, put this back in the pool
		// so that we're not draining our pool on connection errors.
		p.nilConnections <- nil

		p.logger.Printf("Could not connect to Redis (%s)", err.Error())
		return nil, err
	}

	p.logger.Printf("Established a new connection with Redis")
	return conn, nil
}

var blockingChan = make(chan time.Time)

// Wraps time.After around a possibly nil-timeout. When timeout is nil this
// method will return a channel which is always open but never written to.
func makeTimeoutChan(timeout *time.Duration, clock glock.Clock) <-chan time.Time {
	if timeout == nil {
		return blockingChan
	}

	return clock.After(*timeout)
}
