package redisconn

import "fmt"

// invoker dispatches a single command according to the mode of the
// connection at the time the invoker was created. Direct calls block for
// the reply, pipelined and queued calls record a FutureResult and return
// a nil value.
type invoker struct {
	conn   *Connection
	target AsyncConn
	err    error
	status bool
}

// invoke returns an invoker targeting the connection chosen for the
// current mode.
func (c *Connection) invoke() invoker {
	target, err := c.asyncConnection()
	return invoker{conn: c, target: target, err: err}
}

// invokeStatus returns an invoker for commands whose reply is a bare
// acknowledgement. Their results are checked for errors but omitted from
// the values returned by ClosePipeline and Exec.
func (c *Connection) invokeStatus() invoker {
	i := c.invoke()
	i.status = true
	return i
}

// invokeBlocking returns an invoker which always targets the dedicated
// connection so that a blocking command never stalls a shared one.
func (c *Connection) invokeBlocking() invoker {
	target, err := c.dedicatedConnection()
	return invoker{conn: c, target: target, err: err}
}

func (i invoker) just(cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (interface{}, error) {
	return i.from(cmd, decoder, nil, nil, args...)
}

// from dispatches the command. In direct mode the converter is applied to
// a non-nil reply, and nullDefault (if set) supplies the value of a nil
// reply. In pipelined and queueing mode both are deferred.
func (i invoker) from(
	cmd ProtocolKeyword,
	decoder ReplyDecoder,
	converter Converter,
	nullDefault func() interface{},
	args ...interface{},
) (interface{}, error) {
	if i.err != nil {
		return nil, i.err
	}

	c := i.conn

	reply, err := i.target.Dispatch(cmd, decoder, args...)
	if err != nil {
		return nil, c.translate(err)
	}

	if c.pipelined {
		return nil, c.pipeline(i.newResult(reply, converter, nullDefault))
	}

	if c.multi {
		c.transaction(i.newResult(reply, converter, nullDefault))
		return nil, nil
	}

	value, err := c.await(reply)
	if err != nil {
		return nil, err
	}

	if value == nil {
		if nullDefault != nil {
			return nullDefault(), nil
		}

		return nil, nil
	}

	if converter == nil {
		return value, nil
	}

	converted, err := converter(value)
	if err != nil {
		return nil, c.translate(err)
	}

	return converted, nil
}

func (i invoker) newResult(reply PendingReply, converter Converter, nullDefault func() interface{}) *FutureResult {
	if i.status {
		return newStatusResult(reply)
	}

	return newFutureResult(reply, converter, nullDefault, i.conn.convertResults)
}

// invokeAs dispatches the command and asserts the type of its reply. The
// zero value is returned for nil replies and while pipelining or queueing.
func invokeAs[T any](i invoker, cmd ProtocolKeyword, decoder ReplyDecoder, args ...interface{}) (T, error) {
	return invokeConverted[T](i, cmd, decoder, nil, nil, args...)
}

func invokeConverted[T any](
	i invoker,
	cmd ProtocolKeyword,
	decoder ReplyDecoder,
	converter Converter,
	nullDefault func() interface{},
	args ...interface{},
) (T, error) {
	var zero T

	value, err := i.from(cmd, decoder, converter, nullDefault, args...)
	if err != nil || value == nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, newError(KindSystem, fmt.Sprintf("unexpected reply type %T for %s", value, cmd.Name()), nil)
	}

	return typed, nil
}
