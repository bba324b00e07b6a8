package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/efritz/redisconn"
)

var (
	addr      string
	database  int
	timeout   time.Duration
	pipelined bool
	multi     bool
	flush     string
	backend   string
	verbose   bool
)

var execCmd = &cobra.Command{
	Use:   "exec [command; command ...]",
	Short: "Execute raw commands",
	Long: `Execute raw commands read from the arguments (separated by ';') or,
when no arguments are given, from stdin (one command per line).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		commands, err := readCommands(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		if len(commands) == 0 {
			return fmt.Errorf("no commands given")
		}

		factory, err := newFactory()
		if err != nil {
			return err
		}
		defer factory.Close()

		conn, err := factory.Connection()
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer conn.Close()

		return run(conn, commands, cmd.OutOrStdout())
	},
}

func init() {
	execCmd.Flags().StringVar(&addr, "addr", "localhost:6379", "Redis server address")
	execCmd.Flags().IntVar(&database, "db", 0, "Database index")
	execCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Reply timeout")
	execCmd.Flags().BoolVar(&pipelined, "pipeline", false, "Send all commands in a single pipeline")
	execCmd.Flags().BoolVar(&multi, "multi", false, "Wrap all commands in MULTI/EXEC")
	execCmd.Flags().StringVar(&flush, "flush", "each", "Pipeline flush policy (each, close or buffered:N)")
	execCmd.Flags().StringVar(&backend, "backend", "redigo", "Native driver (redigo or go-redis)")
	execCmd.Flags().BoolVar(&verbose, "verbose", false, "Log connection events to stderr")
}

func newFactory() (*redisconn.Factory, error) {
	policy, err := redisconn.ParseFlushPolicy(flush)
	if err != nil {
		return nil, err
	}

	configs := []redisconn.ConfigFunc{
		redisconn.WithDatabase(database),
		redisconn.WithTimeout(timeout),
		redisconn.WithFlushPolicy(policy),
		redisconn.WithPoolCapacity(1),
		redisconn.WithSharedConnection(false),
	}

	switch backend {
	case "redigo":
	case "go-redis":
		configs = append(configs, redisconn.WithBackend(redisconn.BackendGoRedis))
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}

	if !verbose {
		configs = append(configs, redisconn.WithLogger(redisconn.NilLogger))
	}

	return redisconn.NewFactory(addr, configs...), nil
}

// readCommands splits the arguments on ';' or, without arguments, reads
// one command per line of input.
func readCommands(args []string, in io.Reader) ([][]string, error) {
	var lines []string
	if len(args) > 0 {
		lines = strings.Split(strings.Join(args, " "), ";")
	} else {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	var commands [][]string
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) > 0 {
			commands = append(commands, fields)
		}
	}

	return commands, nil
}

func run(conn *redisconn.Connection, commands [][]string, out io.Writer) error {
	if pipelined {
		if err := conn.OpenPipeline(); err != nil {
			return err
		}
	}

	if multi {
		if err := conn.Multi(); err != nil {
			return err
		}
	}

	for _, command := range commands {
		value, err := conn.Execute(command[0], toArgs(command[1:])...)
		if err != nil {
			return err
		}

		if !pipelined && !multi {
			fmt.Fprintln(out, format(value))
		}
	}

	if multi {
		values, err := conn.Exec()
		if err != nil {
			return report(err, out)
		}

		if !pipelined {
			printAll(values, out)
		}
	}

	if pipelined {
		values, err := conn.ClosePipeline()
		if err != nil {
			return report(err, out)
		}

		printAll(values, out)
	}

	return nil
}

// report prints the partial results of a failed batch before returning
// the error.
func report(err error, out io.Writer) error {
	var pipelineErr *redisconn.PipelineError
	if errors.As(err, &pipelineErr) {
		printAll(pipelineErr.Results, out)
	}

	return err
}

func printAll(values []interface{}, out io.Writer) {
	for i, value := range values {
		fmt.Fprintf(out, "%d) %s\n", i+1, format(value))
	}
}

func toArgs(fields []string) [][]byte {
	args := make([][]byte, 0, len(fields))
	for _, field := range fields {
		args = append(args, []byte(field))
	}

	return args
}

func format(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "(nil)"
	case []byte:
		return fmt.Sprintf("%q", v)
	case string:
		return v
	case error:
		return fmt.Sprintf("(error) %s", v.Error())
	case [][]byte:
		parts := make([]string, 0, len(v))
		for _, part := range v {
			parts = append(parts, format(part))
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, part := range v {
			parts = append(parts, format(part))
		}
		return "[" + strings.Join(parts, " ") + "]"
	}

	return fmt.Sprintf("%v", value)
}
