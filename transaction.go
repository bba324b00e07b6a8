package redisconn

import "fmt"

// Multi starts a transaction. Commands issued afterwards are queued on the
// remote server and their results are returned by Exec. Calling Multi
// while a transaction is active has no effect.
func (c *Connection) Multi() error {
	if c.multi {
		return nil
	}

	c.multi = true

	conn, err := c.dedicatedConnection()
	if err != nil {
		c.multi = false
		return err
	}

	reply, err := conn.Dispatch(MULTI, DecodeStatus)
	if err != nil {
		c.multi = false
		return c.translate(err)
	}

	if c.pipelined {
		// MULTI itself belongs to the pipeline, not to the transaction.
		c.ppline = append(c.ppline, newStatusResult(reply))
		return c.onPipelinedCommand()
	}

	if _, err := c.awaitReply(reply); err != nil {
		c.multi = false
		return err
	}

	return nil
}

// Exec executes all queued commands and returns their values in the order
// they were issued. A nil slice (and nil error) means the transaction was
// aborted because a watched key was modified. While pipelining, the values
// are appended to the pipeline results as a single slice and Exec returns
// nil.
//
// If any queued command failed, a *PipelineError carrying the values of
// every queued command is returned.
func (c *Connection) Exec() ([]interface{}, error) {
	c.multi = false

	queued := c.txResults
	c.txResults = nil

	conn, err := c.dedicatedConnection()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Dispatch(EXEC, DecodeMulti)
	if err != nil {
		return nil, c.translate(err)
	}

	if c.pipelined {
		converter := func(value interface{}) (interface{}, error) {
			values, err := c.convertTxResults(queued, value)
			if err != nil || values == nil {
				return nil, err
			}

			return values, nil
		}

		return nil, c.pipeline(newFutureResult(reply, converter, nil, c.convertResults))
	}

	raw, err := c.awaitReply(reply)
	if err != nil {
		return nil, err
	}

	if !c.convertResults {
		return execReplies(raw)
	}

	return c.convertTxResults(queued, raw)
}

// Discard drops all queued commands and leaves the transaction.
func (c *Connection) Discard() error {
	c.multi = false
	defer func() { c.txResults = nil }()

	conn, err := c.dedicatedConnection()
	if err != nil {
		return err
	}

	reply, err := conn.Dispatch(DISCARD, DecodeStatus)
	if err != nil {
		return c.translate(err)
	}

	if c.pipelined {
		return c.pipeline(newStatusResult(reply))
	}

	_, err = c.awaitReply(reply)
	return err
}

// Watch marks keys to be watched for the next transaction. Watching keys
// once a transaction is active is not allowed.
func (c *Connection) Watch(keys ...[]byte) error {
	if c.multi {
		return usageErrorf("WATCH is not supported when a transaction is active")
	}

	conn, err := c.dedicatedConnection()
	if err != nil {
		return err
	}

	reply, err := conn.Dispatch(WATCH, DecodeStatus, byteArgs(keys...)...)
	if err != nil {
		return c.translate(err)
	}

	if c.pipelined {
		return c.pipeline(newStatusResult(reply))
	}

	_, err = c.awaitReply(reply)
	return err
}

// Unwatch forgets all watched keys.
func (c *Connection) Unwatch() error {
	conn, err := c.dedicatedConnection()
	if err != nil {
		return err
	}

	reply, err := conn.Dispatch(UNWATCH, DecodeStatus)
	if err != nil {
		return c.translate(err)
	}

	if c.pipelined {
		return c.pipeline(newStatusResult(reply))
	}

	if c.multi {
		c.transaction(newStatusResult(reply))
		return nil
	}

	_, err = c.awaitReply(reply)
	return err
}

func (c *Connection) transaction(result *FutureResult) {
	c.txResults = append(c.txResults, result)
}

// convertTxResults pairs each element of an EXEC reply with the result
// queued at the same position.
func (c *Connection) convertTxResults(queued []*FutureResult, raw interface{}) ([]interface{}, error) {
	replies, err := execReplies(raw)
	if err != nil || replies == nil {
		return nil, err
	}

	if len(replies) != len(queued) {
		return nil, usageErrorf("incorrect number of transaction results (expected %d, got %d)", len(queued), len(replies))
	}

	var (
		values  = make([]interface{}, 0, len(replies))
		problem error
	)

	for i, reply := range replies {
		result := queued[i]

		if replyErr, ok := reply.(error); ok {
			err := c.translate(replyErr)
			if problem == nil {
				problem = err
			}

			values = append(values, err)
			continue
		}

		if result.IsStatus() {
			continue
		}

		value, err := result.fromExec(reply)
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

// execReplies unpacks an EXEC reply. An aborted transaction (a nil or
// empty reply) yields nil.
func execReplies(raw interface{}) ([]interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	replies, ok := raw.([]interface{})
	if !ok {
		return nil, newError(KindSystem, fmt.Sprintf("unexpected EXEC reply type %T", raw), nil)
	}

	if len(replies) == 0 {
		return nil, nil
	}

	return replies, nil
}
