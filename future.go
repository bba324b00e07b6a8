package redisconn

import (
	"errors"
	"sync"

	redigo "github.com/gomodule/redigo/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/efritz/redisconn/iface"
)

type (
	// PendingReply is the handle for a dispatched command whose reply
	// may not have arrived yet.
	PendingReply = iface.PendingReply

	// Future is the PendingReply implementation shared by the native
	// connections in this package.
	Future struct {
		done      chan struct{}
		once      sync.Once
		decoder   ReplyDecoder
		value     interface{}
		err       error
		serverErr error
	}
)

var _ PendingReply = &Future{}

// NewFuture creates an incomplete future which decodes its reply with
// the given decoder. A nil decoder passes the raw reply through.
func NewFuture(decoder ReplyDecoder) *Future {
	return &Future{
		done:    make(chan struct{}),
		decoder: decoder,
	}
}

// Complete resolves the future. Error replies sent by the remote server
// are recorded as server errors, every other error as a transport
// failure. Only the first call has an effect.
func (f *Future) Complete(raw interface{}, err error) {
	f.once.Do(func() {
		defer close(f.done)

		if err != nil {
			if isServerError(err) {
				f.serverErr = err
			} else {
				f.err = err
			}

			return
		}

		if f.decoder == nil {
			f.value = raw
			return
		}

		f.value, f.err = f.decoder(raw)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) Result() (interface{}, error) {
	<-f.done

	if f.serverErr != nil {
		return nil, f.serverErr
	}

	return f.value, f.err
}

func (f *Future) ServerError() error {
	<-f.done
	return f.serverErr
}

func (f *Future) Decoder() ReplyDecoder {
	return f.decoder
}

func isServerError(err error) bool {
	var (
		redigoErr  redigo.Error
		goredisErr goredis.Error
	)

	return errors.As(err, &redigoErr) || errors.As(err, &goredisErr)
}
