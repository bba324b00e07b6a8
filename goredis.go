package redisconn

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

type (
	// goRedisConn turns a sticky go-redis connection into an AsyncConn.
	// Flushed commands are executed in order by a worker goroutine; a
	// batch of more than one command is written as a single pipeline.
	goRedisConn struct {
		conn      *redis.Conn
		mutex     sync.Mutex
		autoFlush bool
		unflushed []goRedisCommand
		batches   chan []goRedisCommand
		closed    bool
		err       error
	}

	goRedisCommand struct {
		args   []interface{}
		future *Future
	}

	goRedisPubSub struct {
		pubsub *redis.PubSub
	}
)

func newGoRedisClient(addr string, config *factoryConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     config.password,
		DB:           config.database,
		DialTimeout:  config.connectTimeout,
		ReadTimeout:  config.readTimeout,
		WriteTimeout: config.writeTimeout,
		PoolSize:     config.poolCapacity + 1,
		MaxRetries:   -1,
		// Replies are decoded with the RESP2 conventions of redigo.
		Protocol: 2,
	})
}

func makeGoRedisDialer(client *redis.Client) DialFunc {
	return func() (AsyncConn, error) {
		return newGoRedisConn(client.Conn()), nil
	}
}

func makeGoRedisPubSubDialer(client *redis.Client) PubSubDialFunc {
	return func() (PubSubConn, error) {
		return &goRedisPubSub{client.Subscribe(context.Background())}, nil
	}
}

func newGoRedisConn(conn *redis.Conn) *goRedisConn {
	c := &goRedisConn{
		conn:      conn,
		autoFlush: true,
		batches:   make(chan []goRedisCommand, flushedCapacity),
	}

	go c.work()
	return c
}

func (c *goRedisConn) Dispatch(cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (PendingReply, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, ErrConnClosed
	}

	future := NewFuture(decoder)
	c.unflushed = append(c.unflushed, goRedisCommand{
		args:   append([]interface{}{string(cmd.Bytes())}, args...),
		future: future,
	})

	if c.autoFlush {
		c.flush()
	}

	return future, nil
}

func (c *goRedisConn) SetAutoFlush(autoFlush bool) {
	c.mutex.Lock()
	c.autoFlush = autoFlush
	c.mutex.Unlock()
}

func (c *goRedisConn) Flush() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	c.flush()
	return nil
}

func (c *goRedisConn) Err() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrConnClosed
	}

	return c.err
}

// Close fails unflushed commands and releases the sticky connection. It
// does not wait for an in-flight batch: the worker fails every batch
// still queued once the connection is closed, and a command already on
// the wire (such as BLPOP with no timeout) returns its network connection
// to the go-redis pool when its reply or read timeout arrives.
func (c *goRedisConn) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}

	c.closed = true

	for _, command := range c.unflushed {
		command.future.Complete(nil, ErrConnClosed)
	}

	c.unflushed = nil
	close(c.batches)
	c.mutex.Unlock()

	return c.conn.Close()
}

func (c *goRedisConn) flush() {
	if len(c.unflushed) == 0 {
		return
	}

	c.batches <- c.unflushed
	c.unflushed = nil
}

func (c *goRedisConn) work() {
	for batch := range c.batches {
		c.execute(batch)
	}
}

func (c *goRedisConn) execute(batch []goRedisCommand) {
	ctx := context.Background()

	if len(batch) == 1 {
		c.complete(batch[0].future, c.conn.Do(ctx, batch[0].args...))
		return
	}

	var (
		pipe = c.conn.Pipeline()
		cmds = make([]*redis.Cmd, 0, len(batch))
	)

	for _, command := range batch {
		cmds = append(cmds, pipe.Do(ctx, command.args...))
	}

	// Errors are reported per command below.
	_, _ = pipe.Exec(ctx)

	for i, cmd := range cmds {
		c.complete(batch[i].future, cmd)
	}
}

func (c *goRedisConn) complete(future *Future, cmd *redis.Cmd) {
	value, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		future.Complete(nil, nil)
		return
	}

	if isGoRedisTransportError(err) {
		c.mutex.Lock()
		if c.err == nil {
			c.err = err
		}
		c.mutex.Unlock()
	}

	future.Complete(normalizeGoRedisReply(value), err)
}

// isGoRedisTransportError returns true for errors which did not come from
// an error reply of the remote server.
func isGoRedisTransportError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	var replyErr redis.Error
	return !errors.As(err, &replyErr)
}

// normalizeGoRedisReply converts go-redis replies to the representation
// used by redigo: bulk strings become byte slices.
func normalizeGoRedisReply(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return []byte(v)

	case []interface{}:
		values := make([]interface{}, len(v))
		for i, element := range v {
			values[i] = normalizeGoRedisReply(element)
		}

		return values
	}

	return value
}

//
// Pub/Sub

func (s *goRedisPubSub) Subscribe(channels ...[]byte) error {
	return s.pubsub.Subscribe(context.Background(), byteStrings(channels)...)
}

func (s *goRedisPubSub) PSubscribe(patterns ...[]byte) error {
	return s.pubsub.PSubscribe(context.Background(), byteStrings(patterns)...)
}

func (s *goRedisPubSub) Unsubscribe(channels ...[]byte) error {
	return s.pubsub.Unsubscribe(context.Background(), byteStrings(channels)...)
}

func (s *goRedisPubSub) PUnsubscribe(patterns ...[]byte) error {
	return s.pubsub.PUnsubscribe(context.Background(), byteStrings(patterns)...)
}

func (s *goRedisPubSub) Receive() (Message, error) {
	message, err := s.pubsub.ReceiveMessage(context.Background())
	if err != nil {
		return Message{}, err
	}

	m := Message{Channel: []byte(message.Channel), Body: []byte(message.Payload)}
	if message.Pattern != "" {
		m.Pattern = []byte(message.Pattern)
	}

	return m, nil
}

func (s *goRedisPubSub) Close() error {
	return s.pubsub.Close()
}

func byteStrings(values [][]byte) []string {
	strs := make([]string, 0, len(values))
	for _, value := range values {
		strs = append(strs, string(value))
	}

	return strs
}
