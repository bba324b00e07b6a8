package iface

type (
	// ProtocolKeyword identifies a command on the wire.
	ProtocolKeyword interface {
		// Name returns the upper-case command name.
		Name() string

		// Bytes returns the ASCII encoding of the command name.
		Bytes() []byte
	}

	// ReplyDecoder converts a raw reply read from the remote server
	// into the value handed back to the caller. A nil raw reply must
	// decode to a nil value.
	ReplyDecoder func(raw interface{}) (interface{}, error)

	// PendingReply is the handle for a dispatched command whose reply
	// may not have arrived yet.
	PendingReply interface {
		// Done is closed once the reply (or an error) has arrived.
		Done() <-chan struct{}

		// Result returns the decoded reply. It must only be called
		// after Done has been closed.
		Result() (interface{}, error)

		// ServerError returns the error reply sent by the remote server,
		// if any. This is distinct from transport failures, which are
		// returned from Result.
		ServerError() error

		// Decoder returns the decoder this reply was dispatched with.
		Decoder() ReplyDecoder
	}
)

// AsyncConn abstracts a single goroutine-safe connection to Redis which
// writes commands in order and resolves their replies asynchronously.
type AsyncConn interface {
	// Dispatch writes the command to the connection and returns a handle
	// to its reply. The command is only written to the remote server
	// immediately when auto-flush is enabled.
	Dispatch(cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (PendingReply, error)

	// SetAutoFlush controls whether dispatched commands are written to
	// the remote server immediately.
	SetAutoFlush(autoFlush bool)

	// Flush writes all buffered commands to the remote server.
	Flush() error

	// Err returns a non-nil value once the connection is unusable, either
	// because it was closed or because it saw a fatal transport error.
	Err() error

	// Close the connection to the remote Redis server. Replies which
	// have not yet arrived resolve with an error.
	Close() error
}
