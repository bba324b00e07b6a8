package redisconn

import (
	"fmt"
	"time"

	redigo "github.com/gomodule/redigo/redis"

	"github.com/efritz/redisconn/iface"
)

type (
	// ReplyDecoder converts a raw reply into the value returned to callers.
	ReplyDecoder = iface.ReplyDecoder

	// ReplyShape names the decoding strategy used for a command's reply.
	ReplyShape int

	// KeyValue is the reply of blocking pops.
	KeyValue struct {
		Key   []byte
		Value []byte
	}
)

const (
	ShapeByteArray ReplyShape = iota
	ShapeInteger
	ShapeDouble
	ShapeDoubleList
	ShapeMap
	ShapeKeyList
	ShapeKeyValue
	ShapeValue
	ShapeStatus
	ShapeValueList
	ShapeBoolean
	ShapeMulti
	ShapeDate
	ShapeValueSet
)

var (
	DecodeInteger    = decodeWith(redigo.Int64)
	DecodeDouble     = decodeWith(redigo.Float64)
	DecodeStatus     = decodeWith(redigo.String)
	DecodeBoolean    = decodeWith(redigo.Bool)
	DecodeValue      = decodeWith(redigo.Bytes)
	DecodeValueList  = decodeWith(redigo.ByteSlices)
	DecodeDoubleList = decodeWith(float64Pointers)
	DecodeMap        = decodeWith(byteMap)
	DecodeKeyValue   = decodeWith(keyValue)
	DecodeDate       = decodeWith(unixTime)
)

var shapeDecoders = map[ReplyShape]ReplyDecoder{
	ShapeByteArray:  DecodeByteArray,
	ShapeInteger:    DecodeInteger,
	ShapeDouble:     DecodeDouble,
	ShapeDoubleList: DecodeDoubleList,
	ShapeMap:        DecodeMap,
	ShapeKeyList:    DecodeValueList,
	ShapeKeyValue:   DecodeKeyValue,
	ShapeValue:      DecodeValue,
	ShapeStatus:     DecodeStatus,
	ShapeValueList:  DecodeValueList,
	ShapeBoolean:    DecodeBoolean,
	ShapeMulti:      DecodeMulti,
	ShapeDate:       DecodeDate,
	ShapeValueSet:   DecodeValueList,
}

var replyShapes = map[CommandType]ReplyShape{
	BITCOUNT:         ShapeInteger,
	BITOP:            ShapeInteger,
	BITPOS:           ShapeInteger,
	DBSIZE:           ShapeInteger,
	DECR:             ShapeInteger,
	DECRBY:           ShapeInteger,
	DEL:              ShapeInteger,
	GETBIT:           ShapeInteger,
	HDEL:             ShapeInteger,
	HINCRBY:          ShapeInteger,
	HLEN:             ShapeInteger,
	HSTRLEN:          ShapeInteger,
	INCR:             ShapeInteger,
	INCRBY:           ShapeInteger,
	LINSERT:          ShapeInteger,
	LLEN:             ShapeInteger,
	LPUSH:            ShapeInteger,
	LPOS:             ShapeInteger,
	LPUSHX:           ShapeInteger,
	LREM:             ShapeInteger,
	PTTL:             ShapeInteger,
	PUBLISH:          ShapeInteger,
	RPUSH:            ShapeInteger,
	RPUSHX:           ShapeInteger,
	SADD:             ShapeInteger,
	SCARD:            ShapeInteger,
	SDIFFSTORE:       ShapeInteger,
	SETBIT:           ShapeInteger,
	SETRANGE:         ShapeInteger,
	SINTERSTORE:      ShapeInteger,
	SREM:             ShapeInteger,
	SUNIONSTORE:      ShapeInteger,
	STRLEN:           ShapeInteger,
	TTL:              ShapeInteger,
	XLEN:             ShapeInteger,
	XTRIM:            ShapeInteger,
	ZADD:             ShapeInteger,
	ZCARD:            ShapeInteger,
	ZCOUNT:           ShapeInteger,
	ZINTERSTORE:      ShapeInteger,
	ZRANK:            ShapeInteger,
	ZREM:             ShapeInteger,
	ZREMRANGEBYRANK:  ShapeInteger,
	ZREMRANGEBYSCORE: ShapeInteger,
	ZREVRANK:         ShapeInteger,
	ZUNIONSTORE:      ShapeInteger,
	PFCOUNT:          ShapeInteger,
	PFMERGE:          ShapeInteger,
	PFADD:            ShapeInteger,

	HINCRBYFLOAT: ShapeDouble,
	INCRBYFLOAT:  ShapeDouble,
	ZINCRBY:      ShapeDouble,
	ZSCORE:       ShapeDouble,

	ZMSCORE: ShapeDoubleList,

	HGETALL: ShapeMap,

	HKEYS: ShapeKeyList,
	KEYS:  ShapeKeyList,

	BRPOP: ShapeKeyValue,

	BRPOPLPUSH:  ShapeValue,
	ECHO:        ShapeValue,
	GET:         ShapeValue,
	GETRANGE:    ShapeValue,
	GETSET:      ShapeValue,
	HGET:        ShapeValue,
	LINDEX:      ShapeValue,
	LPOP:        ShapeValue,
	RANDOMKEY:   ShapeValue,
	RENAME:      ShapeValue,
	RPOP:        ShapeValue,
	RPOPLPUSH:   ShapeValue,
	SPOP:        ShapeValue,
	SRANDMEMBER: ShapeValue,

	BGREWRITEAOF: ShapeStatus,
	BGSAVE:       ShapeStatus,
	CLIENT:       ShapeStatus,
	DEBUG:        ShapeStatus,
	DISCARD:      ShapeStatus,
	FLUSHALL:     ShapeStatus,
	FLUSHDB:      ShapeStatus,
	HMSET:        ShapeStatus,
	INFO:         ShapeStatus,
	LSET:         ShapeStatus,
	LTRIM:        ShapeStatus,
	MIGRATE:      ShapeStatus,
	MSET:         ShapeStatus,
	QUIT:         ShapeStatus,
	RESTORE:      ShapeStatus,
	SAVE:         ShapeStatus,
	SELECT:       ShapeStatus,
	SET:          ShapeStatus,
	SETEX:        ShapeStatus,
	SHUTDOWN:     ShapeStatus,
	SLAVEOF:      ShapeStatus,
	SYNC:         ShapeStatus,
	TYPE:         ShapeStatus,
	WATCH:        ShapeStatus,
	UNWATCH:      ShapeStatus,

	HMGET:            ShapeValueList,
	MGET:             ShapeValueList,
	HVALS:            ShapeValueList,
	LRANGE:           ShapeValueList,
	SORT:             ShapeValueList,
	ZRANGE:           ShapeValueList,
	ZRANGEBYSCORE:    ShapeValueList,
	ZREVRANGE:        ShapeValueList,
	ZREVRANGEBYSCORE: ShapeValueList,

	EXISTS:    ShapeBoolean,
	EXPIRE:    ShapeBoolean,
	EXPIREAT:  ShapeBoolean,
	HEXISTS:   ShapeBoolean,
	HSET:      ShapeBoolean,
	HSETNX:    ShapeBoolean,
	MOVE:      ShapeBoolean,
	COPY:      ShapeBoolean,
	MSETNX:    ShapeBoolean,
	PERSIST:   ShapeBoolean,
	PEXPIRE:   ShapeBoolean,
	PEXPIREAT: ShapeBoolean,
	RENAMENX:  ShapeBoolean,
	SETNX:     ShapeBoolean,
	SISMEMBER: ShapeBoolean,
	SMOVE:     ShapeBoolean,

	EXEC:  ShapeMulti,
	MULTI: ShapeMulti,

	LASTSAVE: ShapeDate,

	SDIFF:    ShapeValueSet,
	SINTER:   ShapeValueSet,
	SMEMBERS: ShapeValueSet,
	SUNION:   ShapeValueSet,
}

// ReplyShapeOf returns the reply shape registered for the given command,
// or ShapeByteArray when the command is unmapped. Custom commands are
// never mapped.
func ReplyShapeOf(cmd ProtocolKeyword) ReplyShape {
	if t, ok := cmd.(CommandType); ok {
		if shape, ok := replyShapes[t]; ok {
			return shape
		}
	}

	return ShapeByteArray
}

// TypeHint returns the decoder for the given command's reply.
func TypeHint(cmd ProtocolKeyword) ReplyDecoder {
	return shapeDecoders[ReplyShapeOf(cmd)]
}

// DecodeByteArray returns bulk and status replies as byte slices and
// passes any other reply through untouched.
func DecodeByteArray(raw interface{}) (interface{}, error) {
	if s, ok := raw.(string); ok {
		return []byte(s), nil
	}

	return raw, nil
}

// DecodeMulti passes the reply of MULTI and EXEC through untouched.
func DecodeMulti(raw interface{}) (interface{}, error) {
	return raw, nil
}

func decodeWith[T any](f func(interface{}, error) (T, error)) ReplyDecoder {
	return func(raw interface{}) (interface{}, error) {
		if raw == nil {
			return nil, nil
		}

		value, err := f(raw, nil)
		if err != nil {
			return nil, err
		}

		return value, nil
	}
}

func float64Pointers(reply interface{}, err error) ([]*float64, error) {
	values, err := redigo.Values(reply, err)
	if err != nil {
		return nil, err
	}

	scores := make([]*float64, len(values))
	for i, value := range values {
		if value == nil {
			continue
		}

		score, err := redigo.Float64(value, nil)
		if err != nil {
			return nil, err
		}

		scores[i] = &score
	}

	return scores, nil
}

func byteMap(reply interface{}, err error) (map[string][]byte, error) {
	values, err := redigo.ByteSlices(reply, err)
	if err != nil {
		return nil, err
	}

	if len(values)%2 != 0 {
		return nil, fmt.Errorf("expected even number of values for map, got %d", len(values))
	}

	m := make(map[string][]byte, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		m[string(values[i])] = values[i+1]
	}

	return m, nil
}

func keyValue(reply interface{}, err error) (KeyValue, error) {
	values, err := redigo.ByteSlices(reply, err)
	if err != nil {
		return KeyValue{}, err
	}

	if len(values) != 2 {
		return KeyValue{}, fmt.Errorf("expected key and value, got %d values", len(values))
	}

	return KeyValue{Key: values[0], Value: values[1]}, nil
}

func unixTime(reply interface{}, err error) (time.Time, error) {
	seconds, err := redigo.Int64(reply, err)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(seconds, 0), nil
}
