package redisconn

// SetCommands exposes commands operating on unordered sets.
type SetCommands struct {
	conn *Connection
}

func (c *Connection) Sets() SetCommands {
	return SetCommands{conn: c}
}

// SAdd adds members to the set and returns the number of new members.
func (s SetCommands) SAdd(key []byte, members ...[]byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SADD, DecodeInteger, keyArgs(key, members...)...)
}

func (s SetCommands) SRem(key []byte, members ...[]byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SREM, DecodeInteger, keyArgs(key, members...)...)
}

func (s SetCommands) SMembers(key []byte) ([][]byte, error) {
	return invokeAs[[][]byte](s.conn.invoke(), SMEMBERS, DecodeValueList, key)
}

func (s SetCommands) SIsMember(key, member []byte) (bool, error) {
	return invokeAs[bool](s.conn.invoke(), SISMEMBER, DecodeBoolean, key, member)
}

func (s SetCommands) SCard(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SCARD, DecodeInteger, key)
}

func (s SetCommands) SPop(key []byte) ([]byte, error) {
	return invokeAs[[]byte](s.conn.invoke(), SPOP, DecodeValue, key)
}

func (s SetCommands) SRandMember(key []byte) ([]byte, error) {
	return invokeAs[[]byte](s.conn.invoke(), SRANDMEMBER, DecodeValue, key)
}

func (s SetCommands) SMove(source, destination, member []byte) (bool, error) {
	return invokeAs[bool](s.conn.invoke(), SMOVE, DecodeBoolean, source, destination, member)
}

func (s SetCommands) SInter(keys ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](s.conn.invoke(), SINTER, DecodeValueList, byteArgs(keys...)...)
}

func (s SetCommands) SUnion(keys ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](s.conn.invoke(), SUNION, DecodeValueList, byteArgs(keys...)...)
}

func (s SetCommands) SDiff(keys ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](s.conn.invoke(), SDIFF, DecodeValueList, byteArgs(keys...)...)
}

func (s SetCommands) SInterStore(destination []byte, keys ...[]byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SINTERSTORE, DecodeInteger, keyArgs(destination, keys...)...)
}

func (s SetCommands) SUnionStore(destination []byte, keys ...[]byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SUNIONSTORE, DecodeInteger, keyArgs(destination, keys...)...)
}

func (s SetCommands) SDiffStore(destination []byte, keys ...[]byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), SDIFFSTORE, DecodeInteger, keyArgs(destination, keys...)...)
}
