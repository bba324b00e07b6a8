package redisconn

import (
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
)

type (
	// DialFunc creates a native connection to Redis or returns an error.
	DialFunc func() (AsyncConn, error)

	// PubSubDialFunc creates a native pub/sub connection to Redis or
	// returns an error.
	PubSubDialFunc func() (PubSubConn, error)

	// redigoConn turns a redigo connection into an AsyncConn. Commands are
	// written with Send and, once flushed, handed to a reader goroutine
	// which resolves their futures in order with Receive.
	redigoConn struct {
		conn      redis.Conn
		mutex     sync.Mutex
		autoFlush bool
		unflushed []*Future
		flushed   chan *Future
		closed    bool
	}

	redigoPubSub struct {
		conn redis.PubSubConn
	}

	connErr struct{ error }
)

const flushedCapacity = 1024

func makeRedigoDialer(addr string, config *factoryConfig) DialFunc {
	return func() (AsyncConn, error) {
		conn, err := redis.Dial("tcp", addr, redigoOptions(config, config.readTimeout)...)
		if err != nil {
			return nil, err
		}

		return newRedigoConn(conn), nil
	}
}

func makeRedigoPubSubDialer(addr string, config *factoryConfig) PubSubDialFunc {
	return func() (PubSubConn, error) {
		// Subscribers block on reads indefinitely.
		conn, err := redis.Dial("tcp", addr, redigoOptions(config, 0)...)
		if err != nil {
			return nil, err
		}

		return &redigoPubSub{redis.PubSubConn{Conn: conn}}, nil
	}
}

func redigoOptions(config *factoryConfig, readTimeout time.Duration) []redis.DialOption {
	return []redis.DialOption{
		redis.DialPassword(config.password),
		redis.DialDatabase(config.database),
		redis.DialConnectTimeout(config.connectTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(config.writeTimeout),
	}
}

func newRedigoConn(conn redis.Conn) *redigoConn {
	c := &redigoConn{
		conn:      conn,
		autoFlush: true,
		flushed:   make(chan *Future, flushedCapacity),
	}

	go c.receive()
	return c
}

func (c *redigoConn) Dispatch(cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (PendingReply, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, ErrConnClosed
	}

	if err := c.conn.Send(string(cmd.Bytes()), args...); err != nil {
		return nil, c.wrapError(err)
	}

	future := NewFuture(decoder)
	c.unflushed = append(c.unflushed, future)

	if c.autoFlush {
		if err := c.flush(); err != nil {
			return nil, err
		}
	}

	return future, nil
}

func (c *redigoConn) SetAutoFlush(autoFlush bool) {
	c.mutex.Lock()
	c.autoFlush = autoFlush
	c.mutex.Unlock()
}

func (c *redigoConn) Flush() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	return c.flush()
}

func (c *redigoConn) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	return c.conn.Err()
}

func (c *redigoConn) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	for _, future := range c.unflushed {
		future.Complete(nil, ErrConnClosed)
	}

	c.unflushed = nil
	close(c.flushed)

	// Blocked reads in the reader goroutine fail once the socket closes.
	return c.conn.Close()
}

// flush writes the output buffer and hands the written commands to the
// reader. The mutex must be held.
func (c *redigoConn) flush() error {
	if len(c.unflushed) == 0 {
		return nil
	}

	futures := c.unflushed
	c.unflushed = nil

	if err := c.conn.Flush(); err != nil {
		err = c.wrapError(err)
		for _, future := range futures {
			future.Complete(nil, err)
		}

		return err
	}

	for _, future := range futures {
		c.flushed <- future
	}

	return nil
}

func (c *redigoConn) receive() {
	for future := range c.flushed {
		future.Complete(c.conn.Receive())
	}
}

func (c *redigoConn) wrapError(err error) error {
	// A fatal error poisons the connection. Wrap it so that it is not
	// mistaken for an error reply of the command.

	if c.conn.Err() != nil {
		return connErr{c.conn.Err()}
	}

	return err
}

func (e connErr) Unwrap() error {
	return e.error
}

//
// Pub/Sub

func (s *redigoPubSub) Subscribe(channels ...[]byte) error {
	return s.conn.Subscribe(byteArgs(channels...)...)
}

func (s *redigoPubSub) PSubscribe(patterns ...[]byte) error {
	return s.conn.PSubscribe(byteArgs(patterns...)...)
}

func (s *redigoPubSub) Unsubscribe(channels ...[]byte) error {
	return s.conn.Unsubscribe(byteArgs(channels...)...)
}

func (s *redigoPubSub) PUnsubscribe(patterns ...[]byte) error {
	return s.conn.PUnsubscribe(byteArgs(patterns...)...)
}

func (s *redigoPubSub) Receive() (Message, error) {
	for {
		switch v := s.conn.Receive().(type) {
		case redis.Message:
			message := Message{Channel: []byte(v.Channel), Body: v.Data}
			if v.Pattern != "" {
				message.Pattern = []byte(v.Pattern)
			}

			return message, nil

		case error:
			return Message{}, v
		}
	}
}

func (s *redigoPubSub) Close() error {
	return s.conn.Close()
}
