package redisconn

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	redigo "github.com/gomodule/redigo/redis"
)

func nullFalse() interface{} {
	return false
}

// okToBoolean maps an OK status reply to true.
func okToBoolean(value interface{}) (interface{}, error) {
	s, err := redigo.String(value, nil)
	if err != nil {
		return nil, err
	}

	return s == "OK", nil
}

func valueToString(value interface{}) (interface{}, error) {
	return redigo.String(value, nil)
}

func toKeyValuePointer(value interface{}) (interface{}, error) {
	kv, ok := value.(KeyValue)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T", value)
	}

	return &kv, nil
}

func toInt64Pointer(value interface{}) (interface{}, error) {
	n, ok := value.(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T", value)
	}

	return &n, nil
}

func toFloat64Pointer(value interface{}) (interface{}, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, fmt.Errorf("unexpected reply type %T", value)
	}

	return &f, nil
}

// toServerTime converts the reply of TIME (seconds and microseconds) to
// a time.Time.
func toServerTime(value interface{}) (interface{}, error) {
	parts, err := redigo.Int64s(value, nil)
	if err != nil {
		return nil, err
	}

	if len(parts) != 2 {
		return nil, fmt.Errorf("expected seconds and microseconds, got %d values", len(parts))
	}

	return time.Unix(parts[0], parts[1]*int64(time.Microsecond)), nil
}

// toInfo parses the reply of INFO into a flat property map. Section
// headers and blank lines are skipped.
func toInfo(value interface{}) (interface{}, error) {
	text, err := redigo.Bytes(value, nil)
	if err != nil {
		return nil, err
	}

	info := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(text))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if i := strings.Index(line, ":"); i >= 0 {
			info[line[:i]] = line[i+1:]
		}
	}

	return info, scanner.Err()
}

// toScoredMembers converts a flat member/score list into ZMembers.
func toScoredMembers(value interface{}) (interface{}, error) {
	values, err := redigo.ByteSlices(value, nil)
	if err != nil {
		return nil, err
	}

	if len(values)%2 != 0 {
		return nil, fmt.Errorf("expected member and score pairs, got %d values", len(values))
	}

	members := make([]ZMember, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		score, err := strconv.ParseFloat(string(values[i+1]), 64)
		if err != nil {
			return nil, err
		}

		members = append(members, ZMember{Member: values[i], Score: score})
	}

	return members, nil
}

// toStreamEntries converts the reply of XRANGE into StreamEntries.
func toStreamEntries(value interface{}) (interface{}, error) {
	entries, err := redigo.Values(value, nil)
	if err != nil {
		return nil, err
	}

	converted := make([]StreamEntry, 0, len(entries))
	for _, entry := range entries {
		parts, err := redigo.Values(entry, nil)
		if err != nil {
			return nil, err
		}

		if len(parts) != 2 {
			return nil, fmt.Errorf("expected stream entry id and fields, got %d values", len(parts))
		}

		id, err := redigo.String(parts[0], nil)
		if err != nil {
			return nil, err
		}

		fields, err := byteMap(parts[1], nil)
		if err != nil {
			return nil, err
		}

		converted = append(converted, StreamEntry{ID: id, Fields: fields})
	}

	return converted, nil
}
