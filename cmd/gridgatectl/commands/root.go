// Package commands provides the complete command tree implementation for gridgatectl.
//
// This package defines the hierarchical command structure for the gridgate CLI
// tool, implementing a resource-based command architecture similar to kubectl.
// Commands are organized into logical groups that match the daemon's mutation
// pipeline surface.
//
// COMMAND STRUCTURE:
//   - info: Daemon health and version inspection
//   - submit: Mutation batch submission (sync, async, dry-run)
//   - task: Pipeline run tracking (ls, info)
//   - policy: Safety policy management (get, set)
//   - limiter: Rate limiter bucket state
//   - snapshot: Pre-mutation snapshot inspection (ls, info)
//
// All commands follow consistent patterns with standardized flag handling, error
// messages, and output formatting for reliable pipeline operations.
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "gridgatectl",
	Short: "CLI tool for the gridgate spreadsheet mutation safety gateway",
	Long: `Gridgate CLI (gridgatectl) is a command-line tool for submitting
spreadsheet mutation batches through the gridgated safety pipeline
and inspecting pipeline state.

Similar to kubectl for Kubernetes, gridgatectl lets you submit mutation
batches, track their execution, and manage the daemon's safety policy.`,
	SilenceUsage: true,
	Example: `  # Show daemon information
  gridgatectl info

  # Submit a mutation batch and wait for results
  gridgatectl submit mutations.json --wait

  # Validate a batch without touching the remote document
  gridgatectl submit mutations.json --dry-run --wait

  # Submit asynchronously and poll later
  gridgatectl submit mutations.json
  gridgatectl task ls

  # Inspect the active safety policy
  gridgatectl policy get

  # Connect to a remote daemon
  gridgatectl --api=192.168.1.100:8488 info

  # Output in JSON format
  gridgatectl --output=json task ls
  gridgatectl -o json info

  # Show verbose output
  gridgatectl --verbose task ls`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	// Add all top-level commands to root
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(submitCmd)
	RootCmd.AddCommand(taskCmd)
	RootCmd.AddCommand(policyCmd)
	RootCmd.AddCommand(limiterCmd)
	RootCmd.AddCommand(snapshotCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"gridgated API server address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", 8,
		"Connection timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
