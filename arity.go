package redisconn

import "fmt"

// arity is the number of arguments accepted by a command. A max of -1
// means the command accepts any number of arguments above min.
type arity struct {
	min int
	max int
}

var commandArities = map[CommandType]arity{
	APPEND:       {2, 2},
	AUTH:         {1, 2},
	BITCOUNT:     {1, 3},
	BITOP:        {3, -1},
	BITPOS:       {2, 4},
	BLPOP:        {2, -1},
	BRPOP:        {2, -1},
	BRPOPLPUSH:   {3, 3},
	COPY:         {2, -1},
	DECR:         {1, 1},
	DECRBY:       {2, 2},
	DEL:          {1, -1},
	ECHO:         {1, 1},
	EVAL:         {2, -1},
	EVALSHA:      {2, -1},
	EXISTS:       {1, -1},
	EXPIRE:       {2, 2},
	EXPIREAT:     {2, 2},
	GEOADD:       {4, -1},
	GEODIST:      {3, 4},
	GEOHASH:      {2, -1},
	GET:          {1, 1},
	GETBIT:       {2, 2},
	GETRANGE:     {3, 3},
	GETSET:       {2, 2},
	HDEL:         {2, -1},
	HEXISTS:      {2, 2},
	HGET:         {2, 2},
	HGETALL:      {1, 1},
	HINCRBY:      {3, 3},
	HINCRBYFLOAT: {3, 3},
	HKEYS:        {1, 1},
	HLEN:         {1, 1},
	HMGET:        {2, -1},
	HMSET:        {3, -1},
	HSET:         {3, -1},
	HSETNX:       {3, 3},
	HSTRLEN:      {2, 2},
	HVALS:        {1, 1},
	INCR:         {1, 1},
	INCRBY:       {2, 2},
	INCRBYFLOAT:  {2, 2},
	KEYS:         {1, 1},
	LINDEX:       {2, 2},
	LINSERT:      {4, 4},
	LLEN:         {1, 1},
	LPOP:         {1, 2},
	LPUSH:        {2, -1},
	LPUSHX:       {2, -1},
	LRANGE:       {3, 3},
	LREM:         {3, 3},
	LSET:         {3, 3},
	LTRIM:        {3, 3},
	MGET:         {1, -1},
	MOVE:         {2, 2},
	MSET:         {2, -1},
	MSETNX:       {2, -1},
	PERSIST:      {1, 1},
	PEXPIRE:      {2, 2},
	PEXPIREAT:    {2, 2},
	PFADD:        {1, -1},
	PFCOUNT:      {1, -1},
	PFMERGE:      {1, -1},
	PTTL:         {1, 1},
	PUBLISH:      {2, 2},
	RENAME:       {2, 2},
	RENAMENX:     {2, 2},
	RPOP:         {1, 2},
	RPOPLPUSH:    {2, 2},
	RPUSH:        {2, -1},
	RPUSHX:       {2, -1},
	SADD:         {2, -1},
	SCARD:        {1, 1},
	SDIFF:        {1, -1},
	SDIFFSTORE:   {2, -1},
	SELECT:       {1, 1},
	SET:          {2, -1},
	SETBIT:       {3, 3},
	SETEX:        {3, 3},
	SETNX:        {2, 2},
	SETRANGE:     {3, 3},
	SINTER:       {1, -1},
	SINTERSTORE:  {2, -1},
	SISMEMBER:    {2, 2},
	SMEMBERS:     {1, 1},
	SMOVE:        {3, 3},
	SPOP:         {1, 2},
	SREM:         {2, -1},
	STRLEN:       {1, 1},
	SUNION:       {1, -1},
	SUNIONSTORE:  {2, -1},
	TTL:          {1, 1},
	TYPE:         {1, 1},
	WATCH:        {1, -1},
	XADD:         {4, -1},
	XLEN:         {1, 1},
	ZADD:         {3, -1},
	ZCARD:        {1, 1},
	ZCOUNT:       {3, 3},
	ZINCRBY:      {3, 3},
	ZMSCORE:      {2, -1},
	ZRANGE:       {3, -1},
	ZRANK:        {2, 2},
	ZREM:         {2, -1},
	ZSCORE:       {2, 2},
}

// validateArgumentCount checks the number of arguments against the
// arity table. Unknown commands and commands without a minimum number
// of arguments are never rejected.
func validateArgumentCount(cmd ProtocolKeyword, count int) error {
	t, ok := cmd.(CommandType)
	if !ok {
		return nil
	}

	a, ok := commandArities[t]
	if !ok || a.min <= 0 {
		return nil
	}

	var err error
	switch {
	case a.min == a.max && count != a.min:
		err = fmt.Errorf("%s command requires %d %s", t, a.min, pluralize(a.min))
	case count < a.min:
		err = fmt.Errorf("%s command requires at least %d %s", t, a.min, pluralize(a.min))
	case a.max > 0 && count > a.max:
		err = fmt.Errorf("%s command requires at most %d %s", t, a.max, pluralize(a.max))
	}

	if err != nil {
		return newError(KindUsage, fmt.Sprintf("validation failed for %s command", t), err)
	}

	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return "argument"
	}

	return "arguments"
}
