package redisconn

// GeoCommands exposes commands operating on geospatial indexes.
type GeoCommands struct {
	conn *Connection
}

// GeoLocation is a named point.
type GeoLocation struct {
	Name      []byte
	Longitude float64
	Latitude  float64
}

func (c *Connection) Geo() GeoCommands {
	return GeoCommands{conn: c}
}

// GeoAdd adds the locations and returns the number of new members.
func (g GeoCommands) GeoAdd(key []byte, locations ...GeoLocation) (int64, error) {
	args := make([]interface{}, 0, 1+len(locations)*3)
	args = append(args, key)
	for _, l := range locations {
		args = append(args, l.Longitude, l.Latitude, l.Name)
	}

	return invokeAs[int64](g.conn.invoke(), GEOADD, DecodeInteger, args...)
}

// GeoDist returns the distance between two members in the given unit
// (m, km, mi or ft), or nil if either member is missing.
func (g GeoCommands) GeoDist(key, member1, member2 []byte, unit string) (*float64, error) {
	return invokeConverted[*float64](g.conn.invoke(), GEODIST, DecodeDouble, toFloat64Pointer, nil, key, member1, member2, unit)
}

// GeoHash returns the geohash strings of members. Missing members have a
// nil hash.
func (g GeoCommands) GeoHash(key []byte, members ...[]byte) ([][]byte, error) {
	return invokeAs[[][]byte](g.conn.invoke(), GEOHASH, DecodeValueList, keyArgs(key, members...)...)
}
