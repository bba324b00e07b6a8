package redisconn

import (
	"errors"
	"time"

	"github.com/aphistic/sweet"
	"github.com/efritz/glock"
	redigo "github.com/gomodule/redigo/redis"
	. "github.com/onsi/gomega"
)

type PipelineSuite struct{}

func (s *PipelineSuite) TestClosePipelineWithoutOpen(t sweet.T) {
	conn := NewConnection(nil, NewMockProvider(), testTimeout, 0)

	values, err := conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).NotTo(BeNil())
	Expect(values).To(BeEmpty())
}

func (s *PipelineSuite) TestOpenPipelineTwice(t sweet.T) {
	var (
		dedicated = scriptedConn()
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.SetFlushPolicy(FlushOnClose())).To(BeNil())
	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.IsPipelined()).To(BeTrue())
	Expect(dedicated.SetAutoFlushFuncCallCount).To(Equal(1))
}

func (s *PipelineSuite) TestResultsInOrder(t sweet.T) {
	var (
		dedicated = scriptedConn(int64(1), "OK", []byte("bar"), []interface{}{[]byte("a"), []byte("b")})
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())

	n, err := conn.Strings().Incr([]byte("foo"))
	Expect(err).To(BeNil())
	Expect(n).To(Equal(int64(0)))

	Expect(conn.Select(1)).To(BeNil())

	value, err := conn.Strings().Get([]byte("foo"))
	Expect(err).To(BeNil())
	Expect(value).To(BeNil())

	_, err = conn.Lists().LRange([]byte("list"), 0, -1)
	Expect(err).To(BeNil())

	values, err := conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{
		int64(1),
		[]byte("bar"),
		[][]byte{[]byte("a"), []byte("b")},
	}))

	Expect(conn.IsPipelined()).To(BeFalse())
	Expect(conn.DB()).To(Equal(1))
}

func (s *PipelineSuite) TestPartialFailure(t sweet.T) {
	var (
		dedicated = scriptedConn(int64(1), redigo.Error("ERR first"), []byte("x"), redigo.Error("ERR second"))
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	conn.Strings().Incr([]byte("a"))
	conn.Strings().Incr([]byte("b"))
	conn.Strings().Get([]byte("c"))
	conn.Strings().Get([]byte("d"))

	values, err := conn.ClosePipeline()
	Expect(values).To(BeNil())

	var pipelineErr *PipelineError
	Expect(errors.As(err, &pipelineErr)).To(BeTrue())
	Expect(pipelineErr.Results).To(HaveLen(4))
	Expect(pipelineErr.Results[0]).To(Equal(int64(1)))
	Expect(pipelineErr.Results[2]).To(Equal([]byte("x")))
	Expect(pipelineErr.Results[1]).To(BeAssignableToTypeOf(&Error{}))
	Expect(pipelineErr.Results[3]).To(BeAssignableToTypeOf(&Error{}))

	// Only the first failure is promoted
	Expect(pipelineErr.Err).To(BeIdenticalTo(pipelineErr.Results[1]))
	Expect(err.Error()).To(ContainSubstring("ERR first"))
	Expect(IsUsage(err)).To(BeTrue())
	Expect(conn.IsPipelined()).To(BeFalse())
}

func (s *PipelineSuite) TestStatusResultsOmitted(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", "OK", "OK", int64(2))
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.Watch([]byte("foo"))).To(BeNil())
	Expect(conn.Unwatch()).To(BeNil())
	Expect(conn.Select(4)).To(BeNil())
	conn.Strings().Incr([]byte("foo"))

	values, err := conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{int64(2)}))
}

func (s *PipelineSuite) TestFailedStatusResultIsReported(t sweet.T) {
	var (
		dedicated = scriptedConn(redigo.Error("ERR invalid DB index"), int64(2))
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.Select(99)).To(BeNil())
	conn.Strings().Incr([]byte("foo"))

	_, err := conn.ClosePipeline()

	var pipelineErr *PipelineError
	Expect(errors.As(err, &pipelineErr)).To(BeTrue())
	Expect(pipelineErr.Results).To(HaveLen(2))
	Expect(pipelineErr.Results[1]).To(Equal(int64(2)))
}

func (s *PipelineSuite) TestTimeout(t sweet.T) {
	var (
		clock  = glock.NewMockClock()
		result = make(chan error)
		conn   = NewConnection(nil, providerFor(hangingConn()), time.Second*10, 0)
	)

	conn.clock = clock

	Expect(conn.OpenPipeline()).To(BeNil())
	conn.Strings().Get([]byte("foo"))
	conn.Strings().Get([]byte("bar"))

	go func() {
		defer close(result)
		_, err := conn.ClosePipeline()
		result <- err
	}()

	clock.BlockingAdvance(time.Second * 10)

	var err error
	Eventually(result).Should(Receive(&err))

	var pipelineErr *PipelineError
	Expect(errors.As(err, &pipelineErr)).To(BeTrue())
	Expect(pipelineErr.Results).To(BeEmpty())
	Expect(IsTimeout(err)).To(BeTrue())
}

func (s *PipelineSuite) TestConversion(t sweet.T) {
	var (
		dedicated = scriptedConn("OK", "OK")
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	conn.Strings().Set([]byte("foo"), []byte("bar"))
	values, err := conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{true}))

	conn.SetConvertPipelineAndTxResults(false)

	Expect(conn.OpenPipeline()).To(BeNil())
	conn.Strings().Set([]byte("foo"), []byte("bar"))
	values, err = conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{"OK"}))
}

func (s *PipelineSuite) TestNilReplyUsesNullDefault(t sweet.T) {
	var (
		dedicated = scriptedConn(nil, nil)
		conn      = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	conn.Strings().Set([]byte("foo"), []byte("bar"))
	conn.Strings().Get([]byte("foo"))

	values, err := conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{false, nil}))
}

func (s *PipelineSuite) TestOpenPipelineOnClosedConnection(t sweet.T) {
	conn := NewConnection(nil, providerFor(scriptedConn()), testTimeout, 0)
	Expect(conn.Close()).To(BeNil())

	Expect(conn.OpenPipeline()).NotTo(BeNil())
	Expect(conn.IsPipelined()).To(BeFalse())
}

func (s *PipelineSuite) TestTransactionInsidePipeline(t sweet.T) {
	var (
		dedicated = scriptedConn(
			"OK",
			"QUEUED",
			"QUEUED",
			[]interface{}{int64(1), []byte("bar")},
			int64(7),
		)
		conn = NewConnection(nil, providerFor(dedicated), testTimeout, 0)
	)

	Expect(conn.OpenPipeline()).To(BeNil())
	Expect(conn.Multi()).To(BeNil())
	conn.Strings().Incr([]byte("foo"))
	conn.Strings().Get([]byte("bar"))

	values, err := conn.Exec()
	Expect(err).To(BeNil())
	Expect(values).To(BeNil())

	conn.Strings().Incr([]byte("baz"))

	values, err = conn.ClosePipeline()
	Expect(err).To(BeNil())
	Expect(values).To(Equal([]interface{}{
		[]interface{}{int64(1), []byte("bar")},
		int64(7),
	}))

	Expect(dispatched(dedicated)).To(Equal([]string{"MULTI", "INCR", "GET", "EXEC", "INCR"}))
}
