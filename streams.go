package redisconn

// StreamCommands exposes commands operating on streams.
type StreamCommands struct {
	conn *Connection
}

// StreamEntry is a single stream record.
type StreamEntry struct {
	ID     string
	Fields map[string][]byte
}

func (c *Connection) Streams() StreamCommands {
	return StreamCommands{conn: c}
}

// XAdd appends an entry to the stream and returns its id. Use "*" to let
// the server generate the id.
func (s StreamCommands) XAdd(key []byte, id string, fields map[string][]byte) (string, error) {
	if len(fields) == 0 {
		return "", usageErrorf("stream entries require at least one field")
	}

	args := append([]interface{}{key, id}, pairArgs(fields)...)
	return invokeConverted[string](s.conn.invoke(), XADD, DecodeValue, valueToString, nil, args...)
}

func (s StreamCommands) XLen(key []byte) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), XLEN, DecodeInteger, key)
}

func (s StreamCommands) XDel(key []byte, ids ...string) (int64, error) {
	args := []interface{}{key}
	for _, id := range ids {
		args = append(args, id)
	}

	return invokeAs[int64](s.conn.invoke(), XDEL, DecodeInteger, args...)
}

// XRange returns the entries with ids between start and end ("-" and "+"
// denote the extremes).
func (s StreamCommands) XRange(key []byte, start, end string) ([]StreamEntry, error) {
	return invokeConverted[[]StreamEntry](s.conn.invoke(), XRANGE, DecodeMulti, toStreamEntries, nil, key, start, end)
}

// XTrim trims the stream to approximately maxLen entries.
func (s StreamCommands) XTrim(key []byte, maxLen int64) (int64, error) {
	return invokeAs[int64](s.conn.invoke(), XTRIM, DecodeInteger, key, "MAXLEN", maxLen)
}
