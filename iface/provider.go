package iface

import "io"

// Provider supplies and reclaims native connections to Redis.
type Provider interface {
	// Connection returns a connection used exclusively by one caller
	// until it is released.
	Connection() (AsyncConn, error)

	// PubSubConnection returns a fresh connection suitable for
	// subscribing to channels and patterns.
	PubSubConnection() (PubSubConn, error)

	// Release hands a connection back to the provider. This method must
	// be called exactly once for each connection obtained from this
	// provider.
	Release(conn io.Closer) error

	// Close will drain all idle connections and close them.
	Close()
}
