package redisconn

type (
	// Converter maps a decoded reply to the value handed to the caller.
	Converter func(value interface{}) (interface{}, error)

	// FutureResult pairs a pending reply with the conversion applied once
	// the reply is collected by ClosePipeline or Exec.
	FutureResult struct {
		reply       PendingReply
		converter   Converter
		nullDefault func() interface{}
		status      bool
		convert     bool
	}
)

func newFutureResult(reply PendingReply, converter Converter, nullDefault func() interface{}, convert bool) *FutureResult {
	return &FutureResult{
		reply:       reply,
		converter:   converter,
		nullDefault: nullDefault,
		convert:     convert,
	}
}

// newStatusResult creates a result which is tracked for errors but omitted
// from the values returned by ClosePipeline and Exec.
func newStatusResult(reply PendingReply) *FutureResult {
	return &FutureResult{reply: reply, status: true}
}

func (r *FutureResult) Reply() PendingReply {
	return r.reply
}

// IsStatus reports whether the result is a bare acknowledgement.
func (r *FutureResult) IsStatus() bool {
	return r.status
}

// ConversionRequired reports whether Convert is applied when the result
// is collected.
func (r *FutureResult) ConversionRequired() bool {
	return r.convert
}

// Get returns the decoded reply without conversion. It blocks until the
// reply has arrived.
func (r *FutureResult) Get() (interface{}, error) {
	return r.reply.Result()
}

// Convert applies the converter to a non-nil value, or returns the null
// default for a nil value.
func (r *FutureResult) Convert(value interface{}) (interface{}, error) {
	if value == nil {
		if r.nullDefault != nil {
			return r.nullDefault(), nil
		}

		return nil, nil
	}

	if r.converter == nil {
		return value, nil
	}

	return r.converter(value)
}

// materialize returns the final value of a collected pipeline result.
func (r *FutureResult) materialize() (interface{}, error) {
	value, err := r.Get()
	if err != nil {
		return nil, err
	}

	if !r.convert {
		return value, nil
	}

	return r.Convert(value)
}

// fromExec decodes the raw reply found at this result's position in an
// EXEC reply. Queued commands only acknowledge with QUEUED, so their real
// reply must be decoded here.
func (r *FutureResult) fromExec(raw interface{}) (interface{}, error) {
	value := raw
	if decoder := r.reply.Decoder(); decoder != nil {
		decoded, err := decoder(raw)
		if err != nil {
			return nil, err
		}

		value = decoded
	}

	if !r.convert {
		return value, nil
	}

	return r.Convert(value)
}
