package redisconn

import (
	"errors"
	"io"
	"time"

	"github.com/aphistic/sweet"
	"github.com/efritz/glock"
	redigo "github.com/gomodule/redigo/redis"
	. "github.com/onsi/gomega"
)

type ConnectionSuite struct{}

func (s *ConnectionSuite) TestDirectCommandUsesSharedConnection(t sweet.T) {
	var (
		shared   = scriptedConn([]byte("bar"))
		provider = NewMockProvider()
		conn     = NewConnection(shared, provider, testTimeout, 0)
	)

	value, err := conn.Strings().Get([]byte("foo"))
	Expect(err).To(BeNil())
	Expect(value).To(Equal([]byte("bar")))
	Expect(dispatched(shared)).To(Equal([]string{"GET"}))
	Expect(provider.ConnectionFuncCallCount).To(Equal(0))
}

func (s *ConnectionSuite) TestDirectCommandWithoutSharedConnection(t sweet.T) {
	var (
		dedicated = scriptedConn(int64(3))
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	value, err := conn.Strings().Incr([]byte("foo"))
	Expect(err).To(BeNil())
	Expect(value).To(Equal(int64(3)))

	_, err = conn.Strings().Incr([]byte("foo"))
	Expect(err).To(BeNil())

	// The dedicated connection is created once and reused
	Expect(provider.ConnectionFuncCallCount).To(Equal(1))
	Expect(dispatched(dedicated)).To(Equal([]string{"INCR", "INCR"}))
}

func (s *ConnectionSuite) TestPipelineAndTransactionUseDedicatedConnection(t sweet.T) {
	var (
		shared    = scriptedConn()
		dedicated = scriptedConn()
		conn      = NewConnection(shared, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	value, err := conn.Strings().Get([]byte("foo"))
	Expect(err).To(BeNil())
	Expect(value).To(BeNil())
	_, err = conn.ClosePipeline()
	Expect(err).To(BeNil())

	Expect(conn.Multi()).To(BeNil())
	_, err = conn.Strings().Get([]byte("foo"))
	Expect(err).To(BeNil())

	Expect(shared.DispatchFuncCallCount).To(Equal(0))
	Expect(dispatched(dedicated)).To(Equal([]string{"GET", "MULTI", "GET"}))
}

func (s *ConnectionSuite) TestSelectOnSharedConnection(t sweet.T) {
	var (
		shared = scriptedConn()
		conn   = NewConnection(shared, NewMockProvider(), testTimeout, 0)
	)

	err := conn.Select(1)
	Expect(IsUsage(err)).To(BeTrue())
	Expect(conn.DB()).To(Equal(0))
	Expect(shared.DispatchFuncCallCount).To(Equal(0))
}

func (s *ConnectionSuite) TestSelectRestoresDefaultOnClose(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", "OK")
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	Expect(conn.Select(2)).To(BeNil())
	Expect(conn.DB()).To(Equal(2))
	Expect(dedicated.DispatchFuncCallCount).To(Equal(1))
	Expect(dedicated.DispatchFuncCallParams[0].Arg2).To(Equal([]interface{}{2}))

	Expect(conn.Close()).To(BeNil())
	Expect(conn.DB()).To(Equal(0))
	Expect(dispatched(dedicated)).To(Equal([]string{"SELECT", "SELECT"}))
	Expect(dedicated.DispatchFuncCallParams[1].Arg2).To(Equal([]interface{}{0}))
	Expect(provider.ReleaseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeIdenticalTo(dedicated))
	Expect(dedicated.CloseFuncCallCount).To(Equal(0))
}

func (s *ConnectionSuite) TestSelectBeforeDedicatedConnectionExists(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", int64(1))
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.Select(3)).To(BeNil())
	_, err := conn.Strings().Incr([]byte("foo"))
	Expect(err).To(BeNil())

	// Only the explicit SELECT is issued
	Expect(dispatched(dedicated)).To(Equal([]string{"SELECT", "INCR"}))
}

func (s *ConnectionSuite) TestCloseDiscardsConnectionOnFailedRestore(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", io.EOF)
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	Expect(conn.Select(1)).To(BeNil())
	Expect(conn.Close()).To(BeNil())
	Expect(dedicated.CloseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeNil())
}

func (s *ConnectionSuite) TestCloseIsIdempotent(t sweet.T) {
	var (
		dedicated = scriptedConn()
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	_, err := conn.Ping()
	Expect(err).To(BeNil())

	Expect(conn.Close()).To(BeNil())
	Expect(conn.Close()).To(BeNil())
	Expect(conn.IsClosed()).To(BeTrue())
	Expect(provider.ReleaseFuncCallCount).To(Equal(1))

	_, err = conn.Ping()
	Expect(err).NotTo(BeNil())
	Expect(provider.ConnectionFuncCallCount).To(Equal(1))
}

func (s *ConnectionSuite) TestCloseResetsModes(t sweet.T) {
	conn := NewConnection(nil, providerFor(scriptedConn()), testTimeout, 0)

	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.Multi()).To(BeNil())
	Expect(conn.IsPipelined()).To(BeTrue())
	Expect(conn.IsQueueing()).To(BeTrue())

	Expect(conn.Close()).To(BeNil())
	Expect(conn.IsPipelined()).To(BeFalse())
	Expect(conn.IsQueueing()).To(BeFalse())
}

func (s *ConnectionSuite) TestProviderFailure(t sweet.T) {
	var (
		provider = NewMockProvider()
		conn     = NewConnection(nil, provider, testTimeout, 0)
	)

	provider.ConnectionFunc = func() (AsyncConn, error) {
		return nil, ErrNoConnection
	}

	_, err := conn.Ping()
	Expect(IsConnectionFailure(err)).To(BeTrue())
	Expect(errors.Is(err, ErrNoConnection)).To(BeTrue())
}

func (s *ConnectionSuite) TestServerError(t sweet.T) {
	conn := NewConnection(scriptedConn(redigo.Error("WRONGTYPE Operation against a key holding the wrong kind of value")), nil, testTimeout, 0)

	_, err := conn.Strings().Get([]byte("foo"))
	Expect(IsUsage(err)).To(BeTrue())
	Expect(err.Error()).To(ContainSubstring("WRONGTYPE"))

	var redisErr redigo.Error
	Expect(errors.As(err, &redisErr)).To(BeTrue())
}

func (s *ConnectionSuite) TestTransportError(t sweet.T) {
	conn := NewConnection(scriptedConn(io.ErrUnexpectedEOF), nil, testTimeout, 0)

	_, err := conn.Strings().Get([]byte("foo"))
	Expect(IsConnectionFailure(err)).To(BeTrue())
}

func (s *ConnectionSuite) TestDispatchError(t sweet.T) {
	var (
		shared = NewMockAsyncConn()
		conn   = NewConnection(shared, nil, testTimeout, 0)
	)

	shared.DispatchFunc = func(cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (PendingReply, error) {
		return nil, ErrConnClosed
	}

	_, err := conn.Ping()
	Expect(IsConnectionFailure(err)).To(BeTrue())
}

func (s *ConnectionSuite) TestReplyTimeout(t sweet.T) {
	var (
		clock  = glock.NewMockClock()
		result = make(chan error)
		conn   = NewConnection(hangingConn(), nil, time.Second*5, 0)
	)

	conn.clock = clock

	go func() {
		defer close(result)
		_, err := conn.Strings().Get([]byte("foo"))
		result <- err
	}()

	clock.BlockingAdvance(time.Second * 5)
	Eventually(result).Should(Receive(WithTransform(IsTimeout, BeTrue())))
}

func (s *ConnectionSuite) TestNilReply(t sweet.T) {
	conn := NewConnection(scriptedConn(nil), nil, testTimeout, 0)

	value, err := conn.Strings().Get([]byte("missing"))
	Expect(err).To(BeNil())
	Expect(value).To(BeNil())
}

func (s *ConnectionSuite) TestNullDefault(t sweet.T) {
	conn := NewConnection(scriptedConn(nil, "OK"), nil, testTimeout, 0)

	ok, err := conn.Strings().Set([]byte("foo"), []byte("bar"))
	Expect(err).To(BeNil())
	Expect(ok).To(BeFalse())

	ok, err = conn.Strings().Set([]byte("foo"), []byte("bar"))
	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
}

func (s *ConnectionSuite) TestSetFlushPolicyNil(t sweet.T) {
	conn := NewConnection(nil, nil, testTimeout, 0)
	Expect(IsUsage(conn.SetFlushPolicy(nil))).To(BeTrue())
}

func (s *ConnectionSuite) TestNativeConnection(t sweet.T) {
	var (
		shared    = scriptedConn()
		dedicated = scriptedConn()
		conn      = NewConnection(shared, providerFor(dedicated), testTimeout, 0)
	)

	native, err := conn.NativeConnection()
	Expect(err).To(BeNil())
	Expect(native).To(BeIdenticalTo(shared))

	Expect(conn.OpenPipeline()).To(BeNil())
	native, err = conn.NativeConnection()
	Expect(err).To(BeNil())
	Expect(native).To(BeIdenticalTo(dedicated))
}

func (s *ConnectionSuite) TestBlockingCommandUsesDedicatedConnection(t sweet.T) {
	var (
		shared    = scriptedConn()
		dedicated = scriptedConn([]interface{}{[]byte("queue"), []byte("job")})
		conn      = NewConnection(shared, providerFor(dedicated), testTimeout, 0)
	)

	kv, err := conn.Lists().BLPop(time.Second, []byte("queue"))
	Expect(err).To(BeNil())
	Expect(kv).To(Equal(&KeyValue{Key: []byte("queue"), Value: []byte("job")}))
	Expect(shared.DispatchFuncCallCount).To(Equal(0))
	Expect(dedicated.DispatchFuncCallParams[0].Arg2).To(Equal([]interface{}{[]byte("queue"), int64(1)}))
}

func (s *ConnectionSuite) TestCloseDiscardsConnectionWithOpenTransaction(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", "QUEUED")
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	Expect(conn.Multi()).To(BeNil())
	_, err := conn.Strings().Incr([]byte("foo"))
	Expect(err).To(BeNil())

	Expect(conn.Close()).To(BeNil())
	Expect(dispatched(dedicated)).To(Equal([]string{"MULTI", "INCR"}))
	Expect(dedicated.CloseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeNil())
}

func (s *ConnectionSuite) TestCloseDiscardsConnectionAfterTransportFailure(t sweet.T) {
	var (
		dedicated = scriptedConn(io.EOF)
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	_, err := conn.Ping()
	Expect(IsConnectionFailure(err)).To(BeTrue())

	Expect(conn.Close()).To(BeNil())
	Expect(dedicated.CloseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeNil())
}

func (s *ConnectionSuite) TestCloseDiscardsConnectionAfterTimeout(t sweet.T) {
	var (
		clock     = glock.NewMockClock()
		result    = make(chan error)
		dedicated = hangingConn()
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, time.Second*5, 0)
	)

	conn.clock = clock

	go func() {
		defer close(result)
		_, err := conn.Ping()
		result <- err
	}()

	clock.BlockingAdvance(time.Second * 5)
	Eventually(result).Should(Receive(WithTransform(IsTimeout, BeTrue())))

	Expect(conn.Close()).To(BeNil())
	Expect(dedicated.CloseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeNil())
}

func (s *ConnectionSuite) TestServerErrorKeepsConnection(t sweet.T) {
	var (
		dedicated = scriptedConn(redigo.Error("WRONGTYPE Operation against a key holding the wrong kind of value"))
		provider  = providerFor(dedicated)
		conn      = NewConnection(nil, provider, testTimeout, 0)
	)

	_, err := conn.Lists().LLen([]byte("foo"))
	Expect(err).NotTo(BeNil())

	Expect(conn.Close()).To(BeNil())
	Expect(dedicated.CloseFuncCallCount).To(Equal(0))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeIdenticalTo(dedicated))
}

func (s *ConnectionSuite) TestBrokenSharedConnectionIsReplaced(t sweet.T) {
	var (
		broken      = scriptedConn()
		replacement = scriptedConn("PONG")
		conn        = NewConnection(broken, nil, testTimeout, 0)
	)

	broken.ErrFunc = func() error { return io.EOF }
	conn.sharedDialer = func() (AsyncConn, error) { return replacement, nil }

	value, err := conn.Ping()
	Expect(err).To(BeNil())
	Expect(value).To(Equal("PONG"))
	Expect(broken.DispatchFuncCallCount).To(Equal(0))
	Expect(dispatched(replacement)).To(Equal([]string{"PING"}))
}

func (s *ConnectionSuite) TestBrokenDedicatedConnectionIsReplaced(t sweet.T) {
	var (
		broken   = scriptedConn("OK", "PONG")
		fresh    = scriptedConn("OK", "PONG")
		conns    = []AsyncConn{broken, fresh}
		provider = NewMockProvider()
		conn     = NewConnection(nil, provider, testTimeout, 0)
	)

	provider.ConnectionFunc = func() (AsyncConn, error) {
		c := conns[0]
		conns = conns[1:]
		return c, nil
	}

	Expect(conn.Select(2)).To(BeNil())
	broken.ErrFunc = func() error { return io.EOF }

	value, err := conn.Ping()
	Expect(err).To(BeNil())
	Expect(value).To(Equal("PONG"))

	Expect(dispatched(broken)).To(Equal([]string{"SELECT"}))
	Expect(dispatched(fresh)).To(Equal([]string{"SELECT", "PING"}))
	Expect(broken.CloseFuncCallCount).To(Equal(1))
	Expect(provider.ReleaseFuncCallParams[0].Arg0).To(BeNil())
	Expect(conn.DB()).To(Equal(2))
}
