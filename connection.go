package redisconn

import (
	"io"
	"sort"
	"time"

	"github.com/efritz/glock"

	"github.com/efritz/redisconn/iface"
)

type (
	// AsyncConn is a goroutine-safe native connection to Redis.
	AsyncConn = iface.AsyncConn

	// Provider supplies and reclaims native connections.
	Provider = iface.Provider

	// RedisConnection is the interface implemented by *Connection.
	RedisConnection = iface.RedisConnection

	// Connection adapts asynchronous native connections to a synchronous
	// API with three execution modes: direct, pipelined, and queueing
	// (inside MULTI). The native connections are goroutine-safe but a
	// Connection is not: callers must serialize access to one instance.
	//
	// A Connection owns one dedicated native connection, created lazily
	// and used for transactions, pipelines, and blocking commands. It may
	// additionally reference a shared native connection which is used for
	// direct commands only.
	Connection struct {
		provider       Provider
		shared         AsyncConn
		dedicated      AsyncConn
		defaultDB      int
		db             int
		timeout        time.Duration
		clock          glock.Clock
		logger         Logger
		translator     ExceptionTranslator
		flushPolicy    FlushPolicy
		convertResults bool

		closed       bool
		multi        bool
		pipelined    bool
		ppline       []*FutureResult
		flushState   FlushState
		txResults    []*FutureResult
		subscription *Subscription
		failure      error

		// sharedDialer replaces a shared connection which reports itself
		// as broken. Connections created without a factory have none.
		sharedDialer func() (AsyncConn, error)
	}
)

var _ RedisConnection = &Connection{}

// NewConnection creates a connection which obtains its dedicated native
// connection from the given provider. The shared connection may be nil.
// Commands which do not receive a reply within timeout fail.
func NewConnection(shared AsyncConn, provider Provider, timeout time.Duration, defaultDB int) *Connection {
	return &Connection{
		provider:       provider,
		shared:         shared,
		defaultDB:      defaultDB,
		db:             defaultDB,
		timeout:        timeout,
		clock:          glock.NewRealClock(),
		logger:         NilLogger,
		translator:     NativeTranslator,
		flushPolicy:    FlushEachCommand(),
		convertResults: true,
	}
}

// SetFlushPolicy configures when pipelined commands are written. The
// policy takes effect for the next pipeline that is opened.
func (c *Connection) SetFlushPolicy(policy FlushPolicy) error {
	if policy == nil {
		return usageErrorf("flush policy must not be nil")
	}

	c.flushPolicy = policy
	return nil
}

// SetConvertPipelineAndTxResults controls whether results returned from
// ClosePipeline and Exec are converted to the types returned by direct
// calls. When disabled, the decoded native replies are returned.
func (c *Connection) SetConvertPipelineAndTxResults(convert bool) {
	c.convertResults = convert
}

// DB returns the currently selected database.
func (c *Connection) DB() int {
	return c.db
}

func (c *Connection) IsQueueing() bool {
	return c.multi
}

func (c *Connection) IsPipelined() bool {
	return c.pipelined
}

// IsClosed reports true once Close was called, unless a subscription is
// still alive.
func (c *Connection) IsClosed() bool {
	return c.closed && !c.IsSubscribed()
}

// Close releases the dedicated connection (restoring the default database
// if it was changed), tears down any subscription and resets the selected
// database. Failures while resetting are logged and not returned.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true

	if err := c.reset(); err != nil {
		c.logger.Printf("Failed to reset connection during close (%s)", err.Error())
	}

	return nil
}

// NativeConnection returns the native connection the next direct command
// would be dispatched to.
func (c *Connection) NativeConnection() (AsyncConn, error) {
	return c.asyncConnection()
}

// Select changes the database of the dedicated connection. Connections
// which use a shared native connection cannot change databases.
func (c *Connection) Select(dbIndex int) error {
	if c.shared != nil {
		return usageErrorf("selecting a new database not supported due to shared connection; use separate factories to work with multiple databases")
	}

	// Resolve the target first so that a freshly created dedicated
	// connection is not switched twice.
	i := c.invokeStatus()
	c.db = dbIndex

	_, err := i.just(SELECT, DecodeStatus, dbIndex)
	return err
}

func (c *Connection) Ping() (string, error) {
	return invokeAs[string](c.invoke(), PING, DecodeStatus)
}

func (c *Connection) Echo(message []byte) ([]byte, error) {
	return invokeAs[[]byte](c.invoke(), ECHO, DecodeValue, message)
}

func (c *Connection) reset() error {
	var resetErr error

	// A connection which saw a transport failure or a timeout, or was
	// abandoned mid-pipeline or mid-transaction, may hold unread replies
	// or server-side MULTI state and must not be reused.
	failure := c.failure
	if failure == nil && (c.pipelined || c.multi) {
		failure = errAbandonedBatch
	}

	c.failure = nil
	c.pipelined = false
	c.multi = false
	c.ppline = nil
	c.txResults = nil
	c.flushState = nil

	if c.dedicated != nil {
		if failure != nil {
			c.release(c.dedicated, failure)
		} else {
			if c.customizedDB() {
				resetErr = c.selectDatabase(c.dedicated, c.defaultDB)
			}

			c.release(c.dedicated, resetErr)
		}

		c.dedicated = nil
	}

	if subscription := c.subscription; subscription != nil {
		if subscription.IsAlive() {
			subscription.Close()
		}

		c.subscription = nil
	}

	c.db = c.defaultDB
	return resetErr
}

// asyncConnection returns the target of the next command. The shared
// connection is never used while pipelining or queueing.
func (c *Connection) asyncConnection() (AsyncConn, error) {
	if c.multi || c.pipelined {
		return c.dedicatedConnection()
	}

	if c.shared != nil {
		if c.sharedDialer != nil && c.shared.Err() != nil {
			shared, err := c.sharedDialer()
			if err != nil {
				return nil, c.translate(err)
			}

			c.shared = shared
		}

		return c.shared, nil
	}

	return c.dedicatedConnection()
}

func (c *Connection) dedicatedConnection() (AsyncConn, error) {
	if c.IsClosed() {
		return nil, newError(KindSystem, "connection is closed", nil)
	}

	return c.getOrCreateDedicatedConnection()
}

func (c *Connection) getOrCreateDedicatedConnection() (AsyncConn, error) {
	if c.dedicated != nil {
		err := c.dedicated.Err()
		if err == nil || c.multi || c.pipelined {
			return c.dedicated, nil
		}

		// Outside of a batch a broken connection holds no state worth
		// keeping; replace it with a fresh one on the same database.
		c.logger.Printf("Replacing broken dedicated connection (%s)", err.Error())
		c.release(c.dedicated, err)
		c.dedicated = nil
		c.failure = nil
	}

	conn, err := c.provider.Connection()
	if err != nil {
		return nil, c.translate(err)
	}

	if c.customizedDB() {
		if err := c.selectDatabase(conn, c.db); err != nil {
			c.release(conn, err)
			return nil, err
		}
	}

	c.dedicated = conn
	return conn, nil
}

func (c *Connection) selectDatabase(conn AsyncConn, dbIndex int) error {
	reply, err := conn.Dispatch(SELECT, DecodeStatus, dbIndex)
	if err != nil {
		return c.translate(err)
	}

	_, err = c.awaitReply(reply)
	return err
}

// Close the connection on error and release it back to the provider.
// Bad connections never go back to the pool.
func (c *Connection) release(conn AsyncConn, err error) {
	var closer io.Closer = conn
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			c.logger.Printf("Could not close connection (%s)", closeErr.Error())
		}

		closer = nil
	}

	if releaseErr := c.provider.Release(closer); releaseErr != nil {
		c.logger.Printf("Could not release connection (%s)", releaseErr.Error())
	}
}

func (c *Connection) customizedDB() bool {
	return c.db != c.defaultDB
}

// await blocks until the reply arrives or the timeout elapses. Replies
// of commands issued inside a transaction are deferred until EXEC, so
// they are not awaited.
func (c *Connection) await(reply PendingReply) (interface{}, error) {
	if c.multi {
		return nil, nil
	}

	return c.awaitReply(reply)
}

func (c *Connection) awaitReply(reply PendingReply) (interface{}, error) {
	select {
	case <-reply.Done():
	case <-c.clock.After(c.timeout):
		return nil, c.translate(ErrReplyTimeout)
	}

	value, err := reply.Result()
	if err != nil {
		return nil, c.translate(err)
	}

	return value, nil
}

// awaitAll waits for every result using a single deadline.
func (c *Connection) awaitAll(results []*FutureResult) bool {
	if len(results) == 0 {
		return true
	}

	timeout := c.clock.After(c.timeout)

	for _, result := range results {
		select {
		case <-result.Reply().Done():
		case <-timeout:
			return false
		}
	}

	return true
}

// translate converts a native error. Transport failures and timeouts are
// remembered so that the dedicated connection is discarded on reset.
func (c *Connection) translate(err error) error {
	if err == nil {
		return nil
	}

	translated := c.translator.Translate(err)
	if c.failure == nil && (IsConnectionFailure(translated) || IsTimeout(translated)) {
		c.failure = translated
	}

	return translated
}

func byteArgs(values ...[]byte) []interface{} {
	args := make([]interface{}, 0, len(values))
	for _, value := range values {
		args = append(args, value)
	}

	return args
}

// pairArgs flattens a map into key/value arguments ordered by key.
func pairArgs(values map[string][]byte) []interface{} {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, len(values)*2)
	for _, key := range keys {
		args = append(args, []byte(key), values[key])
	}

	return args
}

// keyArgs prepends key to the remaining arguments.
func keyArgs(key []byte, values ...[]byte) []interface{} {
	return append([]interface{}{key}, byteArgs(values...)...)
}
