package iface

type (
	// Message is a payload published to a channel. Pattern is only set
	// for messages received through a pattern subscription.
	Message struct {
		Channel []byte
		Pattern []byte
		Body    []byte
	}

	// MessageListener is notified of every message received by a
	// subscription.
	MessageListener interface {
		OnMessage(message Message, pattern []byte)
	}

	// PubSubConn is a connection in subscriber mode.
	PubSubConn interface {
		Subscribe(channels ...[]byte) error
		PSubscribe(patterns ...[]byte) error
		Unsubscribe(channels ...[]byte) error
		PUnsubscribe(patterns ...[]byte) error

		// Receive blocks until a message is published to one of the
		// subscribed channels or patterns. Subscription confirmations
		// are not surfaced.
		Receive() (Message, error)

		Close() error
	}
)
