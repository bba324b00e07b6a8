package redisconn

import (
	"sync"

	"github.com/efritz/redisconn/iface"
)

type (
	// Message is a payload published to a channel.
	Message = iface.Message

	// MessageListener is notified of every message received by a
	// subscription.
	MessageListener = iface.MessageListener

	// PubSubConn is a native connection in subscriber mode.
	PubSubConn = iface.PubSubConn

	// MessageListenerFunc adapts a function into a MessageListener.
	MessageListenerFunc func(message Message, pattern []byte)

	// Subscription owns a pub/sub connection and delivers its messages to
	// a listener from a background goroutine. A subscription closes itself
	// once it is no longer subscribed to any channel or pattern.
	Subscription struct {
		listener MessageListener
		conn     PubSubConn
		provider Provider
		logger   Logger
		mutex    sync.Mutex
		channels map[string]struct{}
		patterns map[string]struct{}
		alive    bool
		started  bool
	}
)

func channelSet(s *Subscription) map[string]struct{} { return s.channels }
func patternSet(s *Subscription) map[string]struct{} { return s.patterns }

func (f MessageListenerFunc) OnMessage(message Message, pattern []byte) {
	f(message, pattern)
}

func newSubscription(listener MessageListener, conn PubSubConn, provider Provider, logger Logger) *Subscription {
	return &Subscription{
		listener: listener,
		conn:     conn,
		provider: provider,
		logger:   logger,
		channels: map[string]struct{}{},
		patterns: map[string]struct{}{},
		alive:    true,
	}
}

// Subscribe adds channels to the subscription.
func (s *Subscription) Subscribe(channels ...[]byte) error {
	return s.update(s.conn.Subscribe, channelSet, true, channels)
}

// PSubscribe adds patterns to the subscription.
func (s *Subscription) PSubscribe(patterns ...[]byte) error {
	return s.update(s.conn.PSubscribe, patternSet, true, patterns)
}

// Unsubscribe removes channels from the subscription. With no arguments,
// all channels are removed.
func (s *Subscription) Unsubscribe(channels ...[]byte) error {
	if len(channels) == 0 {
		channels = s.Channels()
	}

	return s.update(s.conn.Unsubscribe, channelSet, false, channels)
}

// PUnsubscribe removes patterns from the subscription. With no arguments,
// all patterns are removed.
func (s *Subscription) PUnsubscribe(patterns ...[]byte) error {
	if len(patterns) == 0 {
		patterns = s.Patterns()
	}

	return s.update(s.conn.PUnsubscribe, patternSet, false, patterns)
}

func (s *Subscription) Channels() [][]byte {
	return s.keys(channelSet)
}

func (s *Subscription) Patterns() [][]byte {
	return s.keys(patternSet)
}

func (s *Subscription) IsAlive() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.alive
}

// Close unsubscribes from everything and releases the pub/sub connection.
func (s *Subscription) Close() {
	s.mutex.Lock()
	if !s.alive {
		s.mutex.Unlock()
		return
	}

	s.alive = false
	s.channels = map[string]struct{}{}
	s.patterns = map[string]struct{}{}
	s.mutex.Unlock()

	if err := s.provider.Release(s.conn); err != nil {
		s.logger.Printf("Could not release pub/sub connection (%s)", err.Error())
	}
}

// update changes the remote subscription and then the local name set
// chosen by selector. Close replaces the sets, so the selector is only
// evaluated while the mutex is held.
func (s *Subscription) update(f func(...[]byte) error, selector func(*Subscription) map[string]struct{}, add bool, values [][]byte) error {
	if len(values) == 0 {
		return nil
	}

	s.mutex.Lock()
	if !s.alive {
		s.mutex.Unlock()
		return newError(KindUsage, "subscription is not alive", nil)
	}
	s.mutex.Unlock()

	if err := f(values...); err != nil {
		return err
	}

	s.mutex.Lock()
	if !s.alive {
		s.mutex.Unlock()
		return nil
	}

	names := selector(s)
	for _, value := range values {
		if add {
			names[string(value)] = struct{}{}
		} else {
			delete(names, string(value))
		}
	}

	empty := len(s.channels) == 0 && len(s.patterns) == 0
	start := add && !s.started
	if start {
		s.started = true
	}
	s.mutex.Unlock()

	if start {
		go s.receive()
	}

	if empty {
		s.Close()
	}

	return nil
}

func (s *Subscription) receive() {
	for {
		message, err := s.conn.Receive()
		if err != nil {
			if s.IsAlive() {
				s.logger.Printf("Subscription terminated (%s)", err.Error())
				s.Close()
			}

			return
		}

		s.listener.OnMessage(message, message.Pattern)
	}
}

func (s *Subscription) keys(selector func(*Subscription) map[string]struct{}) [][]byte {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := selector(s)
	keys := make([][]byte, 0, len(m))
	for key := range m {
		keys = append(keys, []byte(key))
	}

	return keys
}

//
// Connection pub/sub

// Publish posts a message to a channel and returns the number of clients
// that received it.
func (c *Connection) Publish(channel, message []byte) (int64, error) {
	return invokeAs[int64](c.invoke(), PUBLISH, DecodeInteger, channel, message)
}

// Subscribe switches the connection to subscriber mode. The dedicated
// connection is released and messages are delivered to the listener from
// a separate pub/sub connection.
func (c *Connection) Subscribe(listener MessageListener, channels ...[]byte) error {
	subscription, err := c.startSubscription(listener)
	if err != nil {
		return err
	}

	return c.translate(subscription.Subscribe(channels...))
}

// PSubscribe is like Subscribe but for channel patterns.
func (c *Connection) PSubscribe(listener MessageListener, patterns ...[]byte) error {
	subscription, err := c.startSubscription(listener)
	if err != nil {
		return err
	}

	return c.translate(subscription.PSubscribe(patterns...))
}

// Subscription returns the current subscription, or nil.
func (c *Connection) Subscription() *Subscription {
	return c.subscription
}

func (c *Connection) IsSubscribed() bool {
	return c.subscription != nil && c.subscription.IsAlive()
}

func (c *Connection) startSubscription(listener MessageListener) (*Subscription, error) {
	if c.IsSubscribed() {
		return nil, newError(KindSubscribed, "connection already subscribed; use the connection subscription to cancel or add new channels", nil)
	}

	if c.multi || c.pipelined {
		return nil, usageErrorf("transaction/pipelining is not supported for pub/sub subscriptions")
	}

	if err := c.reset(); err != nil {
		return nil, err
	}

	conn, err := c.provider.PubSubConnection()
	if err != nil {
		return nil, c.translate(err)
	}

	c.subscription = newSubscription(listener, conn, c.provider, c.logger)
	return c.subscription, nil
}
