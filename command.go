package redisconn

import (
	"strings"

	"github.com/efritz/redisconn/iface"
)

type (
	// ProtocolKeyword identifies a command on the wire.
	ProtocolKeyword = iface.ProtocolKeyword

	// CommandType is a command known to this package.
	CommandType string

	// CustomCommandType is a command which is not known to this package,
	// such as a module command. Two custom commands are equal if their
	// names are equal.
	CustomCommandType struct {
		name string
	}
)

const (
	APPEND           CommandType = "APPEND"
	AUTH             CommandType = "AUTH"
	BGREWRITEAOF     CommandType = "BGREWRITEAOF"
	BGSAVE           CommandType = "BGSAVE"
	BITCOUNT         CommandType = "BITCOUNT"
	BITOP            CommandType = "BITOP"
	BITPOS           CommandType = "BITPOS"
	BLPOP            CommandType = "BLPOP"
	BRPOP            CommandType = "BRPOP"
	BRPOPLPUSH       CommandType = "BRPOPLPUSH"
	CLIENT           CommandType = "CLIENT"
	COPY             CommandType = "COPY"
	DBSIZE           CommandType = "DBSIZE"
	DEBUG            CommandType = "DEBUG"
	DECR             CommandType = "DECR"
	DECRBY           CommandType = "DECRBY"
	DEL              CommandType = "DEL"
	DISCARD          CommandType = "DISCARD"
	ECHO             CommandType = "ECHO"
	EVAL             CommandType = "EVAL"
	EVALSHA          CommandType = "EVALSHA"
	EXEC             CommandType = "EXEC"
	EXISTS           CommandType = "EXISTS"
	EXPIRE           CommandType = "EXPIRE"
	EXPIREAT         CommandType = "EXPIREAT"
	FLUSHALL         CommandType = "FLUSHALL"
	FLUSHDB          CommandType = "FLUSHDB"
	GEOADD           CommandType = "GEOADD"
	GEODIST          CommandType = "GEODIST"
	GEOHASH          CommandType = "GEOHASH"
	GET              CommandType = "GET"
	GETBIT           CommandType = "GETBIT"
	GETRANGE         CommandType = "GETRANGE"
	GETSET           CommandType = "GETSET"
	HDEL             CommandType = "HDEL"
	HEXISTS          CommandType = "HEXISTS"
	HGET             CommandType = "HGET"
	HGETALL          CommandType = "HGETALL"
	HINCRBY          CommandType = "HINCRBY"
	HINCRBYFLOAT     CommandType = "HINCRBYFLOAT"
	HKEYS            CommandType = "HKEYS"
	HLEN             CommandType = "HLEN"
	HMGET            CommandType = "HMGET"
	HMSET            CommandType = "HMSET"
	HSET             CommandType = "HSET"
	HSETNX           CommandType = "HSETNX"
	HSTRLEN          CommandType = "HSTRLEN"
	HVALS            CommandType = "HVALS"
	INCR             CommandType = "INCR"
	INCRBY           CommandType = "INCRBY"
	INCRBYFLOAT      CommandType = "INCRBYFLOAT"
	INFO             CommandType = "INFO"
	KEYS             CommandType = "KEYS"
	LASTSAVE         CommandType = "LASTSAVE"
	LINDEX           CommandType = "LINDEX"
	LINSERT          CommandType = "LINSERT"
	LLEN             CommandType = "LLEN"
	LPOP             CommandType = "LPOP"
	LPOS             CommandType = "LPOS"
	LPUSH            CommandType = "LPUSH"
	LPUSHX           CommandType = "LPUSHX"
	LRANGE           CommandType = "LRANGE"
	LREM             CommandType = "LREM"
	LSET             CommandType = "LSET"
	LTRIM            CommandType = "LTRIM"
	MGET             CommandType = "MGET"
	MIGRATE          CommandType = "MIGRATE"
	MOVE             CommandType = "MOVE"
	MSET             CommandType = "MSET"
	MSETNX           CommandType = "MSETNX"
	MULTI            CommandType = "MULTI"
	PERSIST          CommandType = "PERSIST"
	PEXPIRE          CommandType = "PEXPIRE"
	PEXPIREAT        CommandType = "PEXPIREAT"
	PFADD            CommandType = "PFADD"
	PFCOUNT          CommandType = "PFCOUNT"
	PFMERGE          CommandType = "PFMERGE"
	PING             CommandType = "PING"
	PTTL             CommandType = "PTTL"
	PUBLISH          CommandType = "PUBLISH"
	QUIT             CommandType = "QUIT"
	RANDOMKEY        CommandType = "RANDOMKEY"
	RENAME           CommandType = "RENAME"
	RENAMENX         CommandType = "RENAMENX"
	RESTORE          CommandType = "RESTORE"
	RPOP             CommandType = "RPOP"
	RPOPLPUSH        CommandType = "RPOPLPUSH"
	RPUSH            CommandType = "RPUSH"
	RPUSHX           CommandType = "RPUSHX"
	SADD             CommandType = "SADD"
	SAVE             CommandType = "SAVE"
	SCARD            CommandType = "SCARD"
	SCRIPT           CommandType = "SCRIPT"
	SDIFF            CommandType = "SDIFF"
	SDIFFSTORE       CommandType = "SDIFFSTORE"
	SELECT           CommandType = "SELECT"
	SET              CommandType = "SET"
	SETBIT           CommandType = "SETBIT"
	SETEX            CommandType = "SETEX"
	SETNX            CommandType = "SETNX"
	SETRANGE         CommandType = "SETRANGE"
	SHUTDOWN         CommandType = "SHUTDOWN"
	SINTER           CommandType = "SINTER"
	SINTERSTORE      CommandType = "SINTERSTORE"
	SISMEMBER        CommandType = "SISMEMBER"
	SLAVEOF          CommandType = "SLAVEOF"
	SMEMBERS         CommandType = "SMEMBERS"
	SMOVE            CommandType = "SMOVE"
	SORT             CommandType = "SORT"
	SPOP             CommandType = "SPOP"
	SRANDMEMBER      CommandType = "SRANDMEMBER"
	SREM             CommandType = "SREM"
	STRLEN           CommandType = "STRLEN"
	SUNION           CommandType = "SUNION"
	SUNIONSTORE      CommandType = "SUNIONSTORE"
	SYNC             CommandType = "SYNC"
	TIME             CommandType = "TIME"
	TTL              CommandType = "TTL"
	TYPE             CommandType = "TYPE"
	UNWATCH          CommandType = "UNWATCH"
	WATCH            CommandType = "WATCH"
	XADD             CommandType = "XADD"
	XDEL             CommandType = "XDEL"
	XLEN             CommandType = "XLEN"
	XRANGE           CommandType = "XRANGE"
	XTRIM            CommandType = "XTRIM"
	ZADD             CommandType = "ZADD"
	ZCARD            CommandType = "ZCARD"
	ZCOUNT           CommandType = "ZCOUNT"
	ZINCRBY          CommandType = "ZINCRBY"
	ZINTERSTORE      CommandType = "ZINTERSTORE"
	ZMSCORE          CommandType = "ZMSCORE"
	ZRANGE           CommandType = "ZRANGE"
	ZRANGEBYSCORE    CommandType = "ZRANGEBYSCORE"
	ZRANK            CommandType = "ZRANK"
	ZREM             CommandType = "ZREM"
	ZREMRANGEBYRANK  CommandType = "ZREMRANGEBYRANK"
	ZREMRANGEBYSCORE CommandType = "ZREMRANGEBYSCORE"
	ZREVRANGE        CommandType = "ZREVRANGE"
	ZREVRANGEBYSCORE CommandType = "ZREVRANGEBYSCORE"
	ZREVRANK         CommandType = "ZREVRANK"
	ZSCORE           CommandType = "ZSCORE"
	ZUNIONSTORE      CommandType = "ZUNIONSTORE"
)

var knownCommands = map[CommandType]struct{}{}

func init() {
	for _, cmd := range []CommandType{
		APPEND, AUTH, BGREWRITEAOF, BGSAVE, BITCOUNT, BITOP, BITPOS, BLPOP, BRPOP,
		BRPOPLPUSH, CLIENT, COPY, DBSIZE, DEBUG, DECR, DECRBY, DEL, DISCARD, ECHO,
		EVAL, EVALSHA, EXEC, EXISTS, EXPIRE, EXPIREAT, FLUSHALL, FLUSHDB, GEOADD,
		GEODIST, GEOHASH, GET, GETBIT, GETRANGE, GETSET, HDEL, HEXISTS, HGET,
		HGETALL, HINCRBY, HINCRBYFLOAT, HKEYS, HLEN, HMGET, HMSET, HSET, HSETNX,
		HSTRLEN, HVALS, INCR, INCRBY, INCRBYFLOAT, INFO, KEYS, LASTSAVE, LINDEX,
		LINSERT, LLEN, LPOP, LPOS, LPUSH, LPUSHX, LRANGE, LREM, LSET, LTRIM, MGET,
		MIGRATE, MOVE, MSET, MSETNX, MULTI, PERSIST, PEXPIRE, PEXPIREAT, PFADD,
		PFCOUNT, PFMERGE, PING, PTTL, PUBLISH, QUIT, RANDOMKEY, RENAME, RENAMENX,
		RESTORE, RPOP, RPOPLPUSH, RPUSH, RPUSHX, SADD, SAVE, SCARD, SCRIPT, SDIFF,
		SDIFFSTORE, SELECT, SET, SETBIT, SETEX, SETNX, SETRANGE, SHUTDOWN, SINTER,
		SINTERSTORE, SISMEMBER, SLAVEOF, SMEMBERS, SMOVE, SORT, SPOP, SRANDMEMBER,
		SREM, STRLEN, SUNION, SUNIONSTORE, SYNC, TIME, TTL, TYPE, UNWATCH, WATCH,
		XADD, XDEL, XLEN, XRANGE, XTRIM, ZADD, ZCARD, ZCOUNT, ZINCRBY, ZINTERSTORE,
		ZMSCORE, ZRANGE, ZRANGEBYSCORE, ZRANK, ZREM, ZREMRANGEBYRANK,
		ZREMRANGEBYSCORE, ZREVRANGE, ZREVRANGEBYSCORE, ZREVRANK, ZSCORE, ZUNIONSTORE,
	} {
		knownCommands[cmd] = struct{}{}
	}
}

func (c CommandType) Name() string   { return string(c) }
func (c CommandType) Bytes() []byte  { return []byte(c) }
func (c CommandType) String() string { return string(c) }

// NewCustomCommandType creates a command type for a command unknown to
// this package. The name is used verbatim.
func NewCustomCommandType(name string) CustomCommandType {
	return CustomCommandType{name: name}
}

func (c CustomCommandType) Name() string   { return c.name }
func (c CustomCommandType) String() string { return c.name }

// Bytes returns the ASCII encoding of the command name. Runes outside of
// the ASCII range are replaced with '?'.
func (c CustomCommandType) Bytes() []byte {
	buf := make([]byte, 0, len(c.name))
	for _, r := range c.name {
		if r > 0x7f {
			r = '?'
		}

		buf = append(buf, byte(r))
	}

	return buf
}

// lookupCommand resolves a normalized command name to a known command
// type or a custom command type carrying the name.
func lookupCommand(name string) ProtocolKeyword {
	if _, ok := knownCommands[CommandType(name)]; ok {
		return CommandType(name)
	}

	return NewCustomCommandType(name)
}

func normalizeCommandName(command string) string {
	return strings.ToUpper(strings.TrimSpace(command))
}
