package redisconn

import (
	"errors"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aphistic/sweet"
	. "github.com/onsi/gomega"
)

type IntegrationSuite struct{}

var backends = []Backend{BackendRedigo, BackendGoRedis}

// withServer runs f once per backend against a fresh in-memory server.
// All connections created by f must be closed before it returns.
func withServer(f func(server *miniredis.Miniredis, factory *Factory), configs ...ConfigFunc) {
	for _, backend := range backends {
		server, err := miniredis.Run()
		Expect(err).To(BeNil())

		factory := NewFactory(server.Addr(), append([]ConfigFunc{
			WithBackend(backend),
			WithLogger(NilLogger),
			WithPoolCapacity(2),
		}, configs...)...)

		f(server, factory)

		factory.Close()
		server.Close()
	}
}

func openConnection(factory *Factory) *Connection {
	conn, err := factory.Connection()
	Expect(err).To(BeNil())
	return conn
}

func (s *IntegrationSuite) TestDirectCommands(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		ok, err := conn.Strings().Set([]byte("foo"), []byte("bar"))
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		value, err := conn.Strings().Get([]byte("foo"))
		Expect(err).To(BeNil())
		Expect(value).To(Equal([]byte("bar")))

		value, err = conn.Strings().Get([]byte("missing"))
		Expect(err).To(BeNil())
		Expect(value).To(BeNil())

		n, err := conn.Strings().Incr([]byte("counter"))
		Expect(err).To(BeNil())
		Expect(n).To(Equal(int64(1)))

		pong, err := conn.Ping()
		Expect(err).To(BeNil())
		Expect(pong).To(Equal("PONG"))

		Expect(server.Get("foo")).To(Equal("bar"))
	})
}

func (s *IntegrationSuite) TestServerError(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		server.Set("foo", "bar")

		_, err := conn.Lists().LLen([]byte("foo"))
		Expect(IsUsage(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("WRONGTYPE"))

		// The connection remains usable
		value, err := conn.Strings().Get([]byte("foo"))
		Expect(err).To(BeNil())
		Expect(value).To(Equal([]byte("bar")))
	})
}

func (s *IntegrationSuite) TestPipeline(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		Expect(conn.OpenPipeline()).To(BeNil())
		conn.Strings().Set([]byte("foo"), []byte("bar"))
		conn.Strings().Incr([]byte("counter"))
		conn.Strings().Get([]byte("foo"))
		conn.Lists().RPush([]byte("list"), []byte("a"), []byte("b"))

		values, err := conn.ClosePipeline()
		Expect(err).To(BeNil())
		Expect(values).To(Equal([]interface{}{true, int64(1), []byte("bar"), int64(2)}))
	})
}

func (s *IntegrationSuite) TestPipelinePartialFailure(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		server.Set("str", "value")

		Expect(conn.OpenPipeline()).To(BeNil())
		conn.Strings().Incr([]byte("counter"))
		conn.Lists().LLen([]byte("str"))
		conn.Strings().Get([]byte("str"))

		_, err := conn.ClosePipeline()

		var pipelineErr *PipelineError
		Expect(errors.As(err, &pipelineErr)).To(BeTrue())
		Expect(pipelineErr.Results).To(HaveLen(3))
		Expect(pipelineErr.Results[0]).To(Equal(int64(1)))
		Expect(IsUsage(pipelineErr.Results[1].(error))).To(BeTrue())
		Expect(pipelineErr.Results[2]).To(Equal([]byte("value")))
	})
}

func (s *IntegrationSuite) TestFlushPolicies(t sweet.T) {
	buffered, err := NewBufferedFlushPolicy(2)
	Expect(err).To(BeNil())

	for _, policy := range []FlushPolicy{FlushOnClose(), buffered} {
		withServer(func(server *miniredis.Miniredis, factory *Factory) {
			conn := openConnection(factory)
			defer conn.Close()

			Expect(conn.OpenPipeline()).To(BeNil())
			for i := 0; i < 5; i++ {
				conn.Strings().Incr([]byte("counter"))
			}

			values, err := conn.ClosePipeline()
			Expect(err).To(BeNil())
			Expect(values).To(Equal([]interface{}{int64(1), int64(2), int64(3), int64(4), int64(5)}))

			// Auto-flush is restored for direct commands
			n, err := conn.Strings().Incr([]byte("counter"))
			Expect(err).To(BeNil())
			Expect(n).To(Equal(int64(6)))
		}, WithFlushPolicy(policy), WithSharedConnection(false))
	}
}

func (s *IntegrationSuite) TestTransaction(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		Expect(conn.Multi()).To(BeNil())
		conn.Strings().Set([]byte("foo"), []byte("bar"))
		conn.Strings().Incr([]byte("counter"))
		conn.Strings().Get([]byte("foo"))

		values, err := conn.Exec()
		Expect(err).To(BeNil())
		Expect(values).To(Equal([]interface{}{true, int64(1), []byte("bar")}))
	})
}

func (s *IntegrationSuite) TestWatchAbortsTransaction(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		other := openConnection(factory)
		defer other.Close()

		Expect(conn.Watch([]byte("foo"))).To(BeNil())
		_, err := other.Strings().Set([]byte("foo"), []byte("changed"))
		Expect(err).To(BeNil())

		Expect(conn.Multi()).To(BeNil())
		conn.Strings().Set([]byte("foo"), []byte("mine"))

		values, err := conn.Exec()
		Expect(err).To(BeNil())
		Expect(values).To(BeNil())
		Expect(server.Get("foo")).To(Equal("changed"))
	})
}

func (s *IntegrationSuite) TestTransactionInsidePipeline(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		Expect(conn.OpenPipeline()).To(BeNil())
		conn.Strings().Incr([]byte("a"))
		Expect(conn.Multi()).To(BeNil())
		conn.Strings().Incr([]byte("b"))
		conn.Strings().IncrBy([]byte("b"), 10)
		_, err := conn.Exec()
		Expect(err).To(BeNil())

		values, err := conn.ClosePipeline()
		Expect(err).To(BeNil())
		Expect(values).To(Equal([]interface{}{
			int64(1),
			[]interface{}{int64(1), int64(11)},
		}))
	})
}

func (s *IntegrationSuite) TestSelect(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		Expect(conn.Select(1)).To(BeNil())
		_, err := conn.Strings().Set([]byte("foo"), []byte("one"))
		Expect(err).To(BeNil())
		Expect(conn.Close()).To(BeNil())

		Expect(server.DB(1).Get("foo")).To(Equal("one"))
		Expect(server.Exists("foo")).To(BeFalse())

		// The pooled connection was switched back to the default database
		conn = openConnection(factory)
		defer conn.Close()

		value, err := conn.Strings().Get([]byte("foo"))
		Expect(err).To(BeNil())
		Expect(value).To(BeNil())
	}, WithSharedConnection(false), WithPoolCapacity(1))
}

func (s *IntegrationSuite) TestSelectSharedConnection(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		Expect(IsUsage(conn.Select(1))).To(BeTrue())
	})
}

func (s *IntegrationSuite) TestExecute(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		server.HSet("hash", "field", "value")

		value, err := conn.Execute("hgetall", []byte("hash"))
		Expect(err).To(BeNil())
		Expect(value).To(Equal(map[string][]byte{"field": []byte("value")}))

		value, err = conn.Execute("echo", []byte("hi"))
		Expect(err).To(BeNil())
		Expect(value).To(Equal([]byte("hi")))
	})
}

func (s *IntegrationSuite) TestPubSub(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		var (
			subscriber = openConnection(factory)
			publisher  = openConnection(factory)
			received   = make(chan Message, 1)
		)

		defer subscriber.Close()
		defer publisher.Close()

		listener := MessageListenerFunc(func(message Message, pattern []byte) {
			received <- message
		})

		Expect(subscriber.Subscribe(listener, []byte("news"))).To(BeNil())
		Eventually(func() int { return server.PubSubNumSub("news")["news"] }).Should(Equal(1))

		n, err := publisher.Publish([]byte("news"), []byte("hello"))
		Expect(err).To(BeNil())
		Expect(n).To(Equal(int64(1)))

		var message Message
		Eventually(received, time.Second).Should(Receive(&message))
		Expect(message.Channel).To(Equal([]byte("news")))
		Expect(message.Body).To(Equal([]byte("hello")))

		Expect(subscriber.Subscription().Unsubscribe()).To(BeNil())
		Expect(subscriber.IsSubscribed()).To(BeFalse())
	})
}

func (s *IntegrationSuite) TestRecoversAfterServerRestart(t sweet.T) {
	for _, shared := range []bool{false, true} {
		withServer(func(server *miniredis.Miniredis, factory *Factory) {
			conn := openConnection(factory)
			_, err := conn.Ping()
			Expect(err).To(BeNil())

			server.Close()

			_, err = conn.Ping()
			Expect(err).NotTo(BeNil())
			Expect(conn.Close()).To(BeNil())

			Expect(server.Restart()).To(BeNil())

			for i := 0; i < 3; i++ {
				conn := openConnection(factory)
				value, err := conn.Ping()
				Expect(err).To(BeNil())
				Expect(value).To(Equal("PONG"))
				Expect(conn.Close()).To(BeNil())
			}
		}, WithSharedConnection(shared), WithPoolCapacity(1))
	}
}

func (s *IntegrationSuite) TestLongLivedConnectionRecoversSharedConnection(t sweet.T) {
	withServer(func(server *miniredis.Miniredis, factory *Factory) {
		conn := openConnection(factory)
		defer conn.Close()

		_, err := conn.Ping()
		Expect(err).To(BeNil())

		server.Close()
		_, err = conn.Ping()
		Expect(err).NotTo(BeNil())

		Expect(server.Restart()).To(BeNil())

		value, err := conn.Ping()
		Expect(err).To(BeNil())
		Expect(value).To(Equal("PONG"))
	})
}
