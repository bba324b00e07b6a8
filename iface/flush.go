package iface

type (
	// FlushPolicy controls when commands issued while pipelining are
	// written to the remote server. A policy creates a fresh state for
	// every pipeline that is opened.
	FlushPolicy interface {
		NewPipeline() FlushState
	}

	// FlushState is associated with exactly one open pipeline.
	FlushState interface {
		// OnOpen is called once when the pipeline is opened.
		OnOpen(conn AsyncConn) error

		// OnCommand is called after each command is queued in the pipeline.
		OnCommand(conn AsyncConn) error

		// OnClose is called once when the pipeline is closed.
		OnClose(conn AsyncConn) error
	}
)
