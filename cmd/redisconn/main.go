// Package main is the entry point for the redisconn command line client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "redisconn",
	Short: "Redis connection client",
	Long:  `redisconn runs raw Redis commands directly, in a pipeline, or inside a MULTI/EXEC transaction.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(execCmd)
}
