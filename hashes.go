package redisconn

// HashCommands exposes commands operating on hashes.
type HashCommands struct {
	conn *Connection
}

func (c *Connection) Hashes() HashCommands {
	return HashCommands{conn: c}
}

// HSet sets field in the hash stored at key. It returns true if the field
// is new.
func (h HashCommands) HSet(key, field, value []byte) (bool, error) {
	return invokeAs[bool](h.conn.invoke(), HSET, DecodeBoolean, key, field, value)
}

func (h HashCommands) HSetNX(key, field, value []byte) (bool, error) {
	return invokeAs[bool](h.conn.invoke(), HSETNX, DecodeBoolean, key, field, value)
}

func (h HashCommands) HGet(key, field []byte) ([]byte, error) {
	return invokeAs[[]byte](h.conn.invoke(), HGET, DecodeValue, key, field)
}

func (h HashCommands) HMGet(key []byte, fields ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](h.conn.invoke(), HMGET, DecodeValueList, keyArgs(key, fields...)...)
}

func (h HashCommands) HMSet(key []byte, values map[string][]byte) error {
	args := append([]interface{}{key}, pairArgs(values)...)
	_, err := h.conn.invoke().just(HMSET, DecodeStatus, args...)
	return err
}

func (h HashCommands) HGetAll(key []byte) (map[string][]byte, error) {
	return invokeConverted[map[string][]byte](h.conn.invoke(), HGETALL, DecodeMap, nil, nil, key)
}

func (h HashCommands) HDel(key []byte, fields ...[]byte) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), HDEL, DecodeInteger, keyArgs(key, fields...)...)
}

func (h HashCommands) HExists(key, field []byte) (bool, error) {
	return invokeAs[bool](h.conn.invoke(), HEXISTS, DecodeBoolean, key, field)
}

func (h HashCommands) HLen(key []byte) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), HLEN, DecodeInteger, key)
}

func (h HashCommands) HKeys(key []byte) ([][]byte, error) {
	return invokeAs[[][]byte](h.conn.invoke(), HKEYS, DecodeValueList, key)
}

func (h HashCommands) HVals(key []byte) ([][]byte, error) {
	return invokeAs[[][]byte](h.conn.invoke(), HVALS, DecodeValueList, key)
}

func (h HashCommands) HIncrBy(key, field []byte, delta int64) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), HINCRBY, DecodeInteger, key, field, delta)
}

func (h HashCommands) HIncrByFloat(key, field []byte, delta float64) (float64, error) {
	return invokeAs[float64](h.conn.invoke(), HINCRBYFLOAT, DecodeDouble, key, field, delta)
}

func (h HashCommands) HStrLen(key, field []byte) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), HSTRLEN, DecodeInteger, key, field)
}
