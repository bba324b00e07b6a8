package redisconn

// ZSetCommands exposes commands operating on sorted sets.
type ZSetCommands struct {
	conn *Connection
}

// ZMember is a sorted set member with its score.
type ZMember struct {
	Member []byte
	Score  float64
}

func (c *Connection) ZSets() ZSetCommands {
	return ZSetCommands{conn: c}
}

// ZAdd adds member with the given score. It returns true if the member
// is new.
func (z ZSetCommands) ZAdd(key []byte, score float64, member []byte) (bool, error) {
	return invokeAs[bool](z.conn.invoke(), ZADD, DecodeBoolean, key, score, member)
}

// ZAddAll adds all members and returns the number of new members.
func (z ZSetCommands) ZAddAll(key []byte, members ...ZMember) (int64, error) {
	args := make([]interface{}, 0, 1+len(members)*2)
	args = append(args, key)
	for _, m := range members {
		args = append(args, m.Score, m.Member)
	}

	return invokeAs[int64](z.conn.invoke(), ZADD, DecodeInteger, args...)
}

func (z ZSetCommands) ZRem(key []byte, members ...[]byte) (int64, error) {
	return invokeAs[int64](z.conn.invoke(), ZREM, DecodeInteger, keyArgs(key, members...)...)
}

func (z ZSetCommands) ZIncrBy(key []byte, delta float64, member []byte) (float64, error) {
	return invokeAs[float64](z.conn.invoke(), ZINCRBY, DecodeDouble, key, delta, member)
}

// ZRank returns the rank of member, or nil if it is not in the set.
func (z ZSetCommands) ZRank(key, member []byte) (*int64, error) {
	return invokeConverted[*int64](z.conn.invoke(), ZRANK, DecodeInteger, toInt64Pointer, nil, key, member)
}

func (z ZSetCommands) ZRevRank(key, member []byte) (*int64, error) {
	return invokeConverted[*int64](z.conn.invoke(), ZREVRANK, DecodeInteger, toInt64Pointer, nil, key, member)
}

// ZScore returns the score of member, or nil if it is not in the set.
func (z ZSetCommands) ZScore(key, member []byte) (*float64, error) {
	return invokeConverted[*float64](z.conn.invoke(), ZSCORE, DecodeDouble, toFloat64Pointer, nil, key, member)
}

// ZMScore returns the scores of members. Missing members have a nil score.
func (z ZSetCommands) ZMScore(key []byte, members ...[]byte) ([]*float64, error) {
	return invokeAs[[]*float64](z.conn.invoke(), ZMSCORE, DecodeDoubleList, keyArgs(key, members...)...)
}

func (z ZSetCommands) ZCard(key []byte) (int64, error) {
	return invokeAs[int64](z.conn.invoke(), ZCARD, DecodeInteger, key)
}

// ZCount counts the members with scores between min and max. Bounds use
// the server syntax ("-inf", "(1.5", "3").
func (z ZSetCommands) ZCount(key []byte, min, max string) (int64, error) {
	return invokeAs[int64](z.conn.invoke(), ZCOUNT, DecodeInteger, key, min, max)
}

func (z ZSetCommands) ZRange(key []byte, start, stop int64) ([][]byte, error) {
	return invokeAs[[][]byte](z.conn.invoke(), ZRANGE, DecodeValueList, key, start, stop)
}

func (z ZSetCommands) ZRangeWithScores(key []byte, start, stop int64) ([]ZMember, error) {
	return invokeConverted[[]ZMember](z.conn.invoke(), ZRANGE, DecodeValueList, toScoredMembers, nil, key, start, stop, "WITHSCORES")
}

func (z ZSetCommands) ZRevRange(key []byte, start, stop int64) ([][]byte, error) {
	return invokeAs[[][]byte](z.conn.invoke(), ZREVRANGE, DecodeValueList, key, start, stop)
}

func (z ZSetCommands) ZRangeByScore(key []byte, min, max string) ([][]byte, error) {
	return invokeAs[[][]byte](z.conn.invoke(), ZRANGEBYSCORE, DecodeValueList, key, min, max)
}

func (z ZSetCommands) ZRevRangeByScore(key []byte, max, min string) ([][]byte, error) {
	return invokeAs[[][]byte](z.conn.invoke(), ZREVRANGEBYSCORE, DecodeValueList, key, max, min)
}

func (z ZSetCommands) ZRemRangeByRank(key []byte, start, stop int64) (int64, error) {
	return invokeAs[int64](z.conn.invoke(), ZREMRANGEBYRANK, DecodeInteger, key, start, stop)
}

func (z ZSetCommands) ZRemRangeByScore(key []byte, min, max string) (int64, error) {
	return invokeAs[int64](z.conn.invoke(), ZREMRANGEBYSCORE, DecodeInteger, key, min, max)
}

// ZUnionStore stores the union of the given sets in destination.
func (z ZSetCommands) ZUnionStore(destination []byte, keys ...[]byte) (int64, error) {
	args := append([]interface{}{destination, len(keys)}, byteArgs(keys...)...)
	return invokeAs[int64](z.conn.invoke(), ZUNIONSTORE, DecodeInteger, args...)
}

func (z ZSetCommands) ZInterStore(destination []byte, keys ...[]byte) (int64, error) {
	args := append([]interface{}{destination, len(keys)}, byteArgs(keys...)...)
	return invokeAs[int64](z.conn.invoke(), ZINTERSTORE, DecodeInteger, args...)
}
