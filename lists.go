package redisconn

import "time"

// ListCommands exposes commands operating on lists.
type ListCommands struct {
	conn *Connection
}

func (c *Connection) Lists() ListCommands {
	return ListCommands{conn: c}
}

// LPush prepends values to the list and returns its new length.
func (l ListCommands) LPush(key []byte, values ...[]byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), LPUSH, DecodeInteger, keyArgs(key, values...)...)
}

// RPush appends values to the list and returns its new length.
func (l ListCommands) RPush(key []byte, values ...[]byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), RPUSH, DecodeInteger, keyArgs(key, values...)...)
}

func (l ListCommands) LPushX(key []byte, values ...[]byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), LPUSHX, DecodeInteger, keyArgs(key, values...)...)
}

func (l ListCommands) RPushX(key []byte, values ...[]byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), RPUSHX, DecodeInteger, keyArgs(key, values...)...)
}

func (l ListCommands) LPop(key []byte) ([]byte, error) {
	return invokeAs[[]byte](l.conn.invoke(), LPOP, DecodeValue, key)
}

func (l ListCommands) RPop(key []byte) ([]byte, error) {
	return invokeAs[[]byte](l.conn.invoke(), RPOP, DecodeValue, key)
}

func (l ListCommands) LRange(key []byte, start, stop int64) ([][]byte, error) {
	return invokeAs[[][]byte](l.conn.invoke(), LRANGE, DecodeValueList, key, start, stop)
}

func (l ListCommands) LLen(key []byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), LLEN, DecodeInteger, key)
}

func (l ListCommands) LIndex(key []byte, index int64) ([]byte, error) {
	return invokeAs[[]byte](l.conn.invoke(), LINDEX, DecodeValue, key, index)
}

func (l ListCommands) LSet(key []byte, index int64, value []byte) error {
	_, err := l.conn.invoke().just(LSET, DecodeStatus, key, index, value)
	return err
}

func (l ListCommands) LRem(key []byte, count int64, value []byte) (int64, error) {
	return invokeAs[int64](l.conn.invoke(), LREM, DecodeInteger, key, count, value)
}

func (l ListCommands) LTrim(key []byte, start, stop int64) error {
	_, err := l.conn.invoke().just(LTRIM, DecodeStatus, key, start, stop)
	return err
}

// LInsert inserts value before or after pivot. It returns -1 when the
// pivot was not found.
func (l ListCommands) LInsert(key []byte, before bool, pivot, value []byte) (int64, error) {
	where := "AFTER"
	if before {
		where = "BEFORE"
	}

	return invokeAs[int64](l.conn.invoke(), LINSERT, DecodeInteger, key, where, pivot, value)
}

func (l ListCommands) RPopLPush(source, destination []byte) ([]byte, error) {
	return invokeAs[[]byte](l.conn.invoke(), RPOPLPUSH, DecodeValue, source, destination)
}

// BLPop blocks until an element can be popped from the head of one of
// the given lists. A nil result means the timeout elapsed. Blocking pops
// always run on the dedicated connection.
func (l ListCommands) BLPop(timeout time.Duration, keys ...[]byte) (*KeyValue, error) {
	args := append(byteArgs(keys...), int64(timeout/time.Second))
	return invokeConverted[*KeyValue](l.conn.invokeBlocking(), BLPOP, DecodeKeyValue, toKeyValuePointer, nil, args...)
}

func (l ListCommands) BRPop(timeout time.Duration, keys ...[]byte) (*KeyValue, error) {
	args := append(byteArgs(keys...), int64(timeout/time.Second))
	return invokeConverted[*KeyValue](l.conn.invokeBlocking(), BRPOP, DecodeKeyValue, toKeyValuePointer, nil, args...)
}

func (l ListCommands) BRPopLPush(timeout time.Duration, source, destination []byte) ([]byte, error) {
	return invokeAs[[]byte](l.conn.invokeBlocking(), BRPOPLPUSH, DecodeValue, source, destination, int64(timeout/time.Second))
}
