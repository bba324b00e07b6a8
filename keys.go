package redisconn

import "time"

// KeyCommands exposes commands operating on the keyspace.
type KeyCommands struct {
	conn *Connection
}

func (c *Connection) Keys() KeyCommands {
	return KeyCommands{conn: c}
}

// Del removes the given keys and returns the number of keys removed.
func (k KeyCommands) Del(keys ...[]byte) (int64, error) {
	return invokeAs[int64](k.conn.invoke(), DEL, DecodeInteger, byteArgs(keys...)...)
}

// Exists reports whether key exists.
func (k KeyCommands) Exists(key []byte) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), EXISTS, DecodeBoolean, key)
}

// CountExisting returns how many of the given keys exist.
func (k KeyCommands) CountExisting(keys ...[]byte) (int64, error) {
	return invokeAs[int64](k.conn.invoke(), EXISTS, DecodeInteger, byteArgs(keys...)...)
}

func (k KeyCommands) Type(key []byte) (string, error) {
	return invokeAs[string](k.conn.invoke(), TYPE, DecodeStatus, key)
}

// Keys returns all keys matching pattern.
func (k KeyCommands) Keys(pattern []byte) ([][]byte, error) {
	return invokeAs[[][]byte](k.conn.invoke(), KEYS, DecodeValueList, pattern)
}

func (k KeyCommands) RandomKey() ([]byte, error) {
	return invokeAs[[]byte](k.conn.invoke(), RANDOMKEY, DecodeValue)
}

func (k KeyCommands) Rename(oldKey, newKey []byte) error {
	_, err := k.conn.invoke().just(RENAME, DecodeValue, oldKey, newKey)
	return err
}

func (k KeyCommands) RenameNX(oldKey, newKey []byte) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), RENAMENX, DecodeBoolean, oldKey, newKey)
}

func (k KeyCommands) Expire(key []byte, ttl time.Duration) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), EXPIRE, DecodeBoolean, key, int64(ttl/time.Second))
}

func (k KeyCommands) PExpire(key []byte, ttl time.Duration) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), PEXPIRE, DecodeBoolean, key, int64(ttl/time.Millisecond))
}

func (k KeyCommands) ExpireAt(key []byte, at time.Time) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), EXPIREAT, DecodeBoolean, key, at.Unix())
}

func (k KeyCommands) Persist(key []byte) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), PERSIST, DecodeBoolean, key)
}

// TTL returns the remaining time to live of key in seconds. Negative
// values follow the server's conventions for missing keys and keys
// without expiry.
func (k KeyCommands) TTL(key []byte) (int64, error) {
	return invokeAs[int64](k.conn.invoke(), TTL, DecodeInteger, key)
}

func (k KeyCommands) PTTL(key []byte) (int64, error) {
	return invokeAs[int64](k.conn.invoke(), PTTL, DecodeInteger, key)
}

// Move moves key to another database.
func (k KeyCommands) Move(key []byte, dbIndex int) (bool, error) {
	return invokeAs[bool](k.conn.invoke(), MOVE, DecodeBoolean, key, dbIndex)
}

// Sort returns the sorted elements of the list, set or sorted set at key.
// Additional SORT options are passed through verbatim.
func (k KeyCommands) Sort(key []byte, options ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](k.conn.invoke(), SORT, DecodeValueList, keyArgs(key, options...)...)
}
