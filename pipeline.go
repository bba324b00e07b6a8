package redisconn

import (
	"github.com/bradhe/stopwatch"
)

// OpenPipeline starts a pipeline. Until ClosePipeline is called, command
// methods return zero values and their results are collected instead.
// Opening an already open pipeline has no effect.
func (c *Connection) OpenPipeline() error {
	if c.pipelined {
		return nil
	}

	conn, err := c.dedicatedConnection()
	if err != nil {
		return err
	}

	state := c.flushPolicy.NewPipeline()
	if err := state.OnOpen(conn); err != nil {
		return c.translate(err)
	}

	c.pipelined = true
	c.ppline = []*FutureResult{}
	c.flushState = state
	return nil
}

// ClosePipeline writes any buffered commands, waits for all replies and
// returns the values of all non-status commands in the order they were
// issued. When no pipeline is open an empty slice is returned.
//
// If any command failed, a *PipelineError carrying the first failure and
// the values of every command (failed commands represented by their
// error) is returned. If the replies do not arrive within the timeout of
// the connection, a *PipelineError wrapping a timeout is returned. The
// connection leaves pipelining mode in all cases.
func (c *Connection) ClosePipeline() ([]interface{}, error) {
	if !c.pipelined {
		return []interface{}{}, nil
	}

	state := c.flushState
	results := c.ppline
	c.flushState = nil
	c.pipelined = false
	c.ppline = nil

	if c.dedicated != nil && state != nil {
		if err := state.OnClose(c.dedicated); err != nil {
			return nil, &PipelineError{Err: c.translate(err)}
		}
	}

	start := stopwatch.Start()
	done := c.awaitAll(results)
	elapsed := start.Stop()

	if !done {
		c.logger.Printf("Pipeline of %d commands timed out after %s", len(results), elapsed)
		return nil, &PipelineError{Err: c.translate(ErrReplyTimeout)}
	}

	c.logger.Printf("Pipeline of %d commands completed after %s", len(results), elapsed)

	var (
		values  = make([]interface{}, 0, len(results))
		problem error
	)

	for _, result := range results {
		if serverErr := result.Reply().ServerError(); serverErr != nil {
			err := newError(KindUsage, serverErr.Error(), serverErr)
			if problem == nil {
				problem = err
			}

			values = append(values, err)
			continue
		}

		if result.IsStatus() {
			continue
		}

		value, err := result.materialize()
		if err != nil {
			err = c.translate(err)
			if problem == nil {
				problem = err
			}

			values = append(values, err)
			continue
		}

		values = append(values, value)
	}

	if problem != nil {
		return nil, &PipelineError{Err: problem, Results: values}
	}

	return values, nil
}

// pipeline records a pipelined result. While queueing, the result belongs
// to the transaction rather than to the pipeline.
func (c *Connection) pipeline(result *FutureResult) error {
	if c.multi {
		c.transaction(result)
	} else {
		c.ppline = append(c.ppline, result)
	}

	return c.onPipelinedCommand()
}

func (c *Connection) onPipelinedCommand() error {
	if c.flushState == nil || c.dedicated == nil {
		return nil
	}

	return c.translate(c.flushState.OnCommand(c.dedicated))
}
