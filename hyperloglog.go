package redisconn

// HyperLogLogCommands exposes the probabilistic cardinality commands.
type HyperLogLogCommands struct {
	conn *Connection
}

func (c *Connection) HyperLogLog() HyperLogLogCommands {
	return HyperLogLogCommands{conn: c}
}

func (h HyperLogLogCommands) PFAdd(key []byte, values ...[]byte) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), PFADD, DecodeInteger, keyArgs(key, values...)...)
}

func (h HyperLogLogCommands) PFCount(keys ...[]byte) (int64, error) {
	return invokeAs[int64](h.conn.invoke(), PFCOUNT, DecodeInteger, byteArgs(keys...)...)
}

func (h HyperLogLogCommands) PFMerge(destination []byte, sources ...[]byte) error {
	_, err := h.conn.invoke().just(PFMERGE, DecodeStatus, keyArgs(destination, sources...)...)
	return err
}
