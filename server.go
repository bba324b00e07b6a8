package redisconn

import "time"

// ServerCommands exposes server administration commands.
type ServerCommands struct {
	conn *Connection
}

func (c *Connection) Server() ServerCommands {
	return ServerCommands{conn: c}
}

func (s ServerCommands) DBSize() (int64, error) {
	return invokeAs[int64](s.conn.invoke(), DBSIZE, DecodeInteger)
}

// FlushDB removes all keys of the selected database.
func (s ServerCommands) FlushDB() error {
	_, err := s.conn.invoke().just(FLUSHDB, DecodeStatus)
	return err
}

func (s ServerCommands) FlushAll() error {
	_, err := s.conn.invoke().just(FLUSHALL, DecodeStatus)
	return err
}

func (s ServerCommands) BgSave() error {
	_, err := s.conn.invoke().just(BGSAVE, DecodeStatus)
	return err
}

func (s ServerCommands) Save() error {
	_, err := s.conn.invoke().just(SAVE, DecodeStatus)
	return err
}

func (s ServerCommands) LastSave() (time.Time, error) {
	return invokeAs[time.Time](s.conn.invoke(), LASTSAVE, DecodeDate)
}

// Time returns the current server time.
func (s ServerCommands) Time() (time.Time, error) {
	return invokeConverted[time.Time](s.conn.invoke(), TIME, DecodeMulti, toServerTime, nil)
}

// Info returns the server properties, optionally restricted to a single
// section.
func (s ServerCommands) Info(section ...string) (map[string]string, error) {
	args := make([]interface{}, 0, len(section))
	for _, name := range section {
		args = append(args, name)
	}

	return invokeConverted[map[string]string](s.conn.invoke(), INFO, DecodeValue, toInfo, nil, args...)
}
