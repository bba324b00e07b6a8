package redisconn

// Execute runs a command by name with raw arguments. The reply is decoded
// according to the reply shape registered for the command, or returned as
// raw bytes for unknown commands.
func (c *Connection) Execute(command string, args ...[]byte) (interface{}, error) {
	return c.ExecuteWithHint(command, nil, args...)
}

// ExecuteWithHint is like Execute but decodes the reply with the given
// decoder. A nil hint falls back to the registered reply shape.
//
// While a transaction is active, the number of arguments of known commands
// is validated before the command is queued.
func (c *Connection) ExecuteWithHint(command string, hint ReplyDecoder, args ...[]byte) (interface{}, error) {
	name := normalizeCommandName(command)
	if name == "" {
		return nil, usageErrorf("a valid command needs to be specified")
	}

	cmd := lookupCommand(name)

	if c.multi {
		if err := validateArgumentCount(cmd, len(args)); err != nil {
			return nil, err
		}
	}

	decoder := hint
	if decoder == nil {
		decoder = TypeHint(cmd)
	}

	return c.invoke().just(cmd, decoder, byteArgs(args...)...)
}
