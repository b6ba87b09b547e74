package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "jari",
	Short: "Jari - an embedded task tracker for concurrent autonomous agents",
	Long: `Jari maintains a transactionally consistent store of todos, their
dependencies, and a ready queue, mediating concurrent updates through
field-level optimistic concurrency with explicit conflict capture and
resolution.`,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("agent", "", "Agent name issuing this command")
	rootCmd.PersistentFlags().String("db", "", "Database directory (overrides JARI_DB)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(depCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(linkedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(conflictsCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(primeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(metricsCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

// exitCodeFor maps a domain error onto the process exit code scheme:
// 1 user error, 2 conflict pending, 3 storage error, 4 cycle detected.
func exitCodeFor(err error) int {
	var ec jarierr.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return jarierr.ExitUserError
}

func requireAgent(cmd *cobra.Command) (string, error) {
	agent, _ := cmd.Flags().GetString("agent")
	if agent == "" {
		return "", &jarierr.InvalidInputError{Field: "agent", Reason: "--agent is required"}
	}
	return agent, nil
}
