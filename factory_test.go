package redisconn

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aphistic/sweet"
	"github.com/efritz/glock"
	. "github.com/onsi/gomega"
)

type FactorySuite struct{}

func (s *FactorySuite) TestDefaults(t sweet.T) {
	factory := NewFactory("127.0.0.1:6379")
	defer factory.Close()

	Expect(factory.config.database).To(Equal(0))
	Expect(factory.config.poolCapacity).To(Equal(10))
	Expect(factory.config.timeout).To(Equal(time.Minute))
	Expect(factory.config.shareNativeConnection).To(BeTrue())
	Expect(factory.config.convertResults).To(BeTrue())
	Expect(factory.config.backend).To(Equal(BackendRedigo))
	Expect(factory.config.borrowTimeout).To(BeNil())
}

func (s *FactorySuite) TestOptionsApplyToConnections(t sweet.T) {
	clock := glock.NewMockClock()
	policy := FlushOnClose()

	factory := NewFactory(
		"127.0.0.1:6379",
		WithSharedConnection(false),
		WithDatabase(3),
		WithTimeout(time.Second*5),
		WithFlushPolicy(policy),
		WithConvertPipelineAndTxResults(false),
		WithLogger(NilLogger),
		withClock(clock),
	)
	defer factory.Close()

	conn, err := factory.Connection()
	Expect(err).To(BeNil())
	Expect(conn.shared).To(BeNil())
	Expect(conn.DB()).To(Equal(3))
	Expect(conn.defaultDB).To(Equal(3))
	Expect(conn.timeout).To(Equal(time.Second * 5))
	Expect(conn.convertResults).To(BeFalse())
	Expect(conn.clock).To(BeIdenticalTo(clock))
	Expect(conn.logger).To(Equal(NilLogger))
}

func (s *FactorySuite) TestSharedConnectionIsReused(t sweet.T) {
	server, err := miniredis.Run()
	Expect(err).To(BeNil())
	defer server.Close()

	factory := NewFactory(server.Addr(), WithLogger(NilLogger))
	defer factory.Close()

	conn1, err := factory.Connection()
	Expect(err).To(BeNil())
	conn2, err := factory.Connection()
	Expect(err).To(BeNil())

	Expect(conn1.shared).NotTo(BeNil())
	Expect(conn1.shared).To(BeIdenticalTo(conn2.shared))
	Expect(conn1.NativeConnection()).To(BeIdenticalTo(conn1.shared))

	Expect(conn1.Close()).To(BeNil())
	Expect(conn2.Close()).To(BeNil())
	Eventually(server.CurrentConnectionCount).Should(Equal(1))
}

func (s *FactorySuite) TestSharedConnectionDialFailure(t sweet.T) {
	factory := NewFactory(
		"127.0.0.1:1",
		WithLogger(NilLogger),
		WithConnectTimeout(time.Second),
	)
	defer factory.Close()

	_, err := factory.Connection()
	Expect(err).NotTo(BeNil())
	Expect(IsConnectionFailure(err)).To(BeTrue())
}

func (s *FactorySuite) TestDedicatedDialFailure(t sweet.T) {
	factory := NewFactory(
		"127.0.0.1:1",
		WithLogger(NilLogger),
		WithSharedConnection(false),
		WithConnectTimeout(time.Second),
	)
	defer factory.Close()

	conn, err := factory.Connection()
	Expect(err).To(BeNil())
	defer conn.Close()

	_, err = conn.Ping()
	Expect(IsConnectionFailure(err)).To(BeTrue())
}

func (s *FactorySuite) TestBackendString(t sweet.T) {
	Expect(BackendRedigo.String()).To(Equal("redigo"))
	Expect(BackendGoRedis.String()).To(Equal("go-redis"))
	Expect(Backend(42).String()).To(Equal("unknown"))
}
