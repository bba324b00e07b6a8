package redisconn

import (
	"context"
	"sync"
	"time"

	"github.com/efritz/glock"
	"github.com/efritz/overcurrent"
)

type (
	// Factory creates Connections which share a provider of native
	// connections and, optionally, a single shared native connection.
	Factory struct {
		config   *factoryConfig
		provider Provider
		dialer   DialFunc
		closer   func() error
		shared   AsyncConn
		closed   bool
		mutex    sync.Mutex
	}

	// Backend selects the driver used for native connections.
	Backend int

	factoryConfig struct {
		password              string
		database              int
		connectTimeout        time.Duration
		readTimeout           time.Duration
		writeTimeout          time.Duration
		poolCapacity          int
		breakerFunc           BreakerFunc
		clock                 glock.Clock
		borrowTimeout         *time.Duration
		logger                Logger
		timeout               time.Duration
		shareNativeConnection bool
		flushPolicy           FlushPolicy
		convertResults        bool
		backend               Backend
		translator            ExceptionTranslator
	}

	// ConfigFunc is a function used to initialize a new factory.
	ConfigFunc func(*factoryConfig)
)

const (
	// BackendRedigo uses github.com/gomodule/redigo connections.
	BackendRedigo Backend = iota

	// BackendGoRedis uses sticky github.com/redis/go-redis connections.
	BackendGoRedis
)

func (b Backend) String() string {
	switch b {
	case BackendRedigo:
		return "redigo"
	case BackendGoRedis:
		return "go-redis"
	}

	return "unknown"
}

// NewFactory creates a new Factory for the Redis server at addr.
func NewFactory(addr string, configs ...ConfigFunc) *Factory {
	config := &factoryConfig{
		password:              "",
		database:              0,
		connectTimeout:        time.Second * 5,
		writeTimeout:          time.Second * 5,
		readTimeout:           time.Second * 5,
		poolCapacity:          10,
		breakerFunc:           noopBreakerFunc,
		clock:                 glock.NewRealClock(),
		borrowTimeout:         nil,
		logger:                NewDefaultLogger(),
		timeout:               time.Second * 60,
		shareNativeConnection: true,
		flushPolicy:           FlushEachCommand(),
		convertResults:        true,
		backend:               BackendRedigo,
		translator:            NativeTranslator,
	}

	for _, f := range configs {
		f(config)
	}

	var (
		dialer       DialFunc
		pubSubDialer PubSubDialFunc
		closer       = func() error { return nil }
	)

	switch config.backend {
	case BackendGoRedis:
		client := newGoRedisClient(addr, config)
		dialer = makeGoRedisDialer(client)
		pubSubDialer = makeGoRedisPubSubDialer(client)
		closer = client.Close

	default:
		dialer = makeRedigoDialer(addr, config)
		pubSubDialer = makeRedigoPubSubDialer(addr, config)
	}

	return &Factory{
		config: config,
		dialer: dialer,
		closer: closer,
		provider: NewPool(
			dialer,
			pubSubDialer,
			config.poolCapacity,
			config.borrowTimeout,
			config.logger,
			config.breakerFunc,
			config.clock,
		),
	}
}

// WithPassword sets the password (default is "").
func WithPassword(password string) ConfigFunc {
	return func(c *factoryConfig) { c.password = password }
}

// WithDatabase sets the default database index (default is 0).
func WithDatabase(database int) ConfigFunc {
	return func(c *factoryConfig) { c.database = database }
}

// WithConnectTimeout sets the connect timeout for new connections
// (default is 5 seconds).
func WithConnectTimeout(timeout time.Duration) ConfigFunc {
	return func(c *factoryConfig) { c.connectTimeout = timeout }
}

// WithReadTimeout sets the socket read timeout for native connections
// (default is 5 seconds).
func WithReadTimeout(timeout time.Duration) ConfigFunc {
	return func(c *factoryConfig) { c.readTimeout = timeout }
}

// WithWriteTimeout sets the socket write timeout for native connections
// (default is 5 seconds).
func WithWriteTimeout(timeout time.Duration) ConfigFunc {
	return func(c *factoryConfig) { c.writeTimeout = timeout }
}

// WithPoolCapacity sets the maximum number of dedicated connections
// that can be in use at once (default is 10).
func WithPoolCapacity(capacity int) ConfigFunc {
	return func(c *factoryConfig) { c.poolCapacity = capacity }
}

// WithBreaker sets the circuit breaker instance to use around new
// connections. The default uses a no-op circuit breaker.
func WithBreaker(breaker overcurrent.CircuitBreaker) ConfigFunc {
	return func(c *factoryConfig) { c.breakerFunc = breaker.Call }
}

// WithBreakerRegistry sets the overcurrent registry and the name of the
// breaker config to use around new connections.
func WithBreakerRegistry(registry overcurrent.Registry, name string) ConfigFunc {
	return func(c *factoryConfig) {
		c.breakerFunc = func(f overcurrent.BreakerFunc) error {
			return registry.Call(name, f, nil)
		}
	}
}

// WithBorrowTimeout sets the maximum time to wait for a dedicated
// connection when the pool is exhausted (default is to wait forever).
func WithBorrowTimeout(timeout time.Duration) ConfigFunc {
	return func(c *factoryConfig) { c.borrowTimeout = &timeout }
}

// WithLogger sets the logger instance (the default will use Go's
// builtin logging library).
func WithLogger(logger Logger) ConfigFunc {
	return func(c *factoryConfig) { c.logger = logger }
}

// WithTimeout sets how long a command waits for its reply (default is
// 60 seconds).
func WithTimeout(timeout time.Duration) ConfigFunc {
	return func(c *factoryConfig) { c.timeout = timeout }
}

// WithSharedConnection controls whether direct commands of all
// connections are multiplexed over one native connection (default is
// true). Connections using a shared native connection cannot SELECT.
func WithSharedConnection(share bool) ConfigFunc {
	return func(c *factoryConfig) { c.shareNativeConnection = share }
}

// WithFlushPolicy sets the flush policy of new connections (default
// is to flush after each command).
func WithFlushPolicy(policy FlushPolicy) ConfigFunc {
	return func(c *factoryConfig) { c.flushPolicy = policy }
}

// WithConvertPipelineAndTxResults sets whether pipeline and transaction
// results are converted (default is true).
func WithConvertPipelineAndTxResults(convert bool) ConfigFunc {
	return func(c *factoryConfig) { c.convertResults = convert }
}

// WithBackend sets the native driver (default is BackendRedigo).
func WithBackend(backend Backend) ConfigFunc {
	return func(c *factoryConfig) { c.backend = backend }
}

// WithTranslator sets the translator applied to native errors.
func WithTranslator(translator ExceptionTranslator) ConfigFunc {
	return func(c *factoryConfig) { c.translator = translator }
}

func withClock(clock glock.Clock) ConfigFunc {
	return func(c *factoryConfig) { c.clock = clock }
}

//
// Factory Implementation

// Connection creates a new Connection. When a shared native connection
// is configured it is dialed on first use.
func (f *Factory) Connection() (*Connection, error) {
	shared, err := f.sharedConnection()
	if err != nil {
		return nil, f.config.translator.Translate(err)
	}

	conn := NewConnection(shared, f.provider, f.config.timeout, f.config.database)
	conn.clock = f.config.clock
	conn.logger = f.config.logger
	conn.translator = f.config.translator
	conn.flushPolicy = f.config.flushPolicy
	conn.convertResults = f.config.convertResults

	if shared != nil {
		conn.sharedDialer = f.sharedConnection
	}

	return conn, nil
}

// Close closes the shared native connection and all pooled connections.
func (f *Factory) Close() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return
	}

	f.closed = true

	if f.shared != nil {
		if err := f.shared.Close(); err != nil {
			f.config.logger.Printf("Could not close shared connection (%s)", err.Error())
		}

		f.shared = nil
	}

	f.provider.Close()

	if err := f.closer(); err != nil {
		f.config.logger.Printf("Could not close client (%s)", err.Error())
	}
}

func (f *Factory) sharedConnection() (AsyncConn, error) {
	if !f.config.shareNativeConnection {
		return nil, nil
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.closed {
		return nil, ErrConnClosed
	}

	if f.shared != nil {
		if err := f.shared.Err(); err != nil {
			f.config.logger.Printf("Discarding broken shared connection (%s)", err.Error())

			if closeErr := f.shared.Close(); closeErr != nil {
				f.config.logger.Printf("Could not close shared connection (%s)", closeErr.Error())
			}

			f.shared = nil
		}
	}

	if f.shared == nil {
		var conn AsyncConn
		err := f.config.breakerFunc(func(ctx context.Context) error {
			temp, err := f.dialer()
			conn = temp
			return err
		})

		if err != nil {
			f.config.logger.Printf("Could not connect to Redis (%s)", err.Error())
			return nil, err
		}

		f.shared = conn
	}

	return f.shared, nil
}
