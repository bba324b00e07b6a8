package redisconn

import "time"

// StringCommands exposes commands operating on string values.
type StringCommands struct {
	conn *Connection
}

func (c *Connection) Strings() StringCommands {
	return StringCommands{conn: c}
}

func (s StringCommands) Get(key []byte) ([]byte, error) {
	return invokeAs[[]byte](s.conn.invoke(), GET, DecodeValue, key)
}

// Set sets the value of key. It returns false when the write was skipped
// by the server.
func (s StringCommands) Set(key, value []byte) (bool, error) {
	return invokeConverted[bool](s.conn.invoke(), SET, DecodeStatus, okToBoolean, nullFalse, key, value)
}

func (s StringCommands) SetNX(key, value []byte) (bool, error) {
	return invokeAs[bool](s.conn.invoke(), SETNX, DecodeBoolean, key, value)
}

func (s StringCommands) SetEx(key []byte, ttl time.Duration, value []byte) (bool, error) {
	return invokeConverted[bool](s.conn.invoke(), SETEX, DecodeStatus, okToBoolean, nullFalse, key, int64(ttl/time.Second), value)
}

func (s StringCommands) GetSet(key, value []byte) ([]byte, error) {
	return invokeAs[[]byte](s.conn.invoke(), GETSET, DecodeValue, key, value)
}

// MGet returns the values of all keys. Missing keys have a nil value.
func (s StringCommands) MGet(keys ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](s.conn.invoke(), MGET, DecodeValueList, byteArgs(keys...)...)
}

// MSet sets each key of the map to its value.
func (s StringCommands) MSet(values map[string][]byte) (bool, error) {
	return invokeConverted[bool](s.conn.invoke(), MSET, DecodeStatus, okToBoolean, nullFalse, pairArgs(values)...)
}

func (s StringCommands) MSetNX(values map[string][]byte) (bool, error) {
	return invokeAs[bool](s.conn.invoke(), MSETNX, DecodeBoolean, pairArgs(values)...)
}

func (s StringCommands) Incr(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), INCR, DecodeInteger, key)
}

func (s StringCommands) IncrBy(key []byte, delta int64) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), INCRBY, DecodeInteger, key, delta)
}

func (s StringCommands) IncrByFloat(key []byte, delta float64) (float64, error) {
	return invokeAs[float64](s.conn.invoke(), INCRBYFLOAT, DecodeDouble, key, delta)
}

func (s StringCommands) Decr(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), DECR, DecodeInteger, key)
}

func (s StringCommands) DecrBy(key []byte, delta int64) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), DECRBY, DecodeInteger, key, delta)
}

func (s StringCommands) Append(key, value []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), APPEND, DecodeInteger, key, value)
}

func (s StringCommands) StrLen(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), STRLEN, DecodeInteger, key)
}

func (s StringCommands) GetRange(key []byte, start, end int64) ([]byte, error) {
	return invokeAs[[]byte](s.conn.invoke(), GETRANGE, DecodeValue, key, start, end)
}

func (s StringCommands) SetRange(key []byte, offset int64, value []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SETRANGE, DecodeInteger, key, offset, value)
}

func (s StringCommands) GetBit(key []byte, offset int64) (bool, error) {
	return invokeAs[bool](s.conn.invoke(), GETBIT, DecodeBoolean, key, offset)
}

// SetBit sets the bit at offset and returns its previous value.
func (s StringCommands) SetBit(key []byte, offset int64, value bool) (bool, error) {
	bit := 0
	if value {
		bit = 1
	}

	return invokeAs[bool](s.conn.invoke(), SETBIT, DecodeBoolean, key, offset, bit)
}

func (s StringCommands) BitCount(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), BITCOUNT, DecodeInteger, key)
}
