package redisconn

// ScriptingCommands exposes Lua scripting commands.
type ScriptingCommands struct {
	conn *Connection
}

func (c *Connection) Scripting() ScriptingCommands {
	return ScriptingCommands{conn: c}
}

// Eval runs script with the given keys and arguments. The reply is
// returned as decoded by DecodeByteArray.
func (s ScriptingCommands) Eval(script string, keys [][]byte, args ...[]byte) (interface{}, error) {
	return s.conn.invoke().just(EVAL, DecodeByteArray, scriptArgs(script, keys, args)...)
}

// EvalSha runs a script previously loaded with ScriptLoad.
func (s ScriptingCommands) EvalSha(sha string, keys [][]byte, args ...[]byte) (interface{}, error) {
	return s.conn.invoke().just(EVALSHA, DecodeByteArray, scriptArgs(sha, keys, args)...)
}

// ScriptLoad loads script into the script cache and returns its SHA1.
func (s ScriptingCommands) ScriptLoad(script string) (string, error) {
	return invokeConverted[string](s.conn.invoke(), SCRIPT, DecodeValue, valueToString, nil, "LOAD", script)
}

func (s ScriptingCommands) ScriptFlush() error {
	_, err := s.conn.invoke().just(SCRIPT, DecodeStatus, "FLUSH")
	return err
}

func scriptArgs(script string, keys [][]byte, args [][]byte) []interface{} {
	values := make([]interface{}, 0, 2+len(keys)+len(args))
	values = append(values, script, len(keys))
	values = append(values, byteArgs(keys...)...)
	return append(values, byteArgs(args...)...)
}
