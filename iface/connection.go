package iface

// RedisConnection is the synchronous-looking connection used by callers.
// Depending on the mode of the connection, command methods either return
// their result immediately or defer it to ClosePipeline or Exec.
type RedisConnection interface {
	// Close releases the dedicated connection and tears down any active
	// subscription. It is safe to call Close more than once.
	Close() error

	// IsClosed reports whether the connection has been closed and has no
	// live subscription.
	IsClosed() bool

	// Select changes the database of the connection.
	Select(dbIndex int) error

	// Execute runs a raw command by name.
	Execute(command string, args ...[]byte) (interface{}, error)

	// OpenPipeline starts buffering results until ClosePipeline is called.
	OpenPipeline() error

	// ClosePipeline waits for every pipelined command and returns their
	// results in the order they were issued.
	ClosePipeline() ([]interface{}, error)

	// Multi marks the start of a transaction block.
	Multi() error

	// Exec executes all commands queued since Multi. A nil result
	// indicates that the transaction was aborted.
	Exec() ([]interface{}, error)

	// Discard flushes all commands queued since Multi.
	Discard() error

	// Watch marks the given keys to be watched for conditional execution
	// of a transaction.
	Watch(keys ...[]byte) error

	// Unwatch forgets all watched keys.
	Unwatch() error

	IsQueueing() bool
	IsPipelined() bool
}
