// Package commands provides task management command definitions for gridgatectl.
//
// This file implements the task command tree for tracking asynchronous
// mutation submissions through the daemon pipeline.
//
// TASK COMMANDS:
//   - ls: List live pipeline runs with status filtering
//   - info: Detailed information for a specific run including results
//
// Task commands are how operators follow up on submissions made without
// --wait; terminal tasks remain visible until the daemon's retention expires.
package commands

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/spf13/cobra"
)

// Task command (parent command for task operations)
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Track asynchronous mutation pipeline runs",
	Long: `Commands for tracking mutation pipeline runs in gridgated.

This command group provides operations for listing pipeline runs and
inspecting individual runs including their execution results.`,
}

// Task list command
var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all live pipeline runs",
	Long: `List all live pipeline runs tracked by the daemon.

This command displays run status, age, and task store counters. Terminal
runs stay listed until the daemon's retention window expires them.`,
	Example: `  # List all tasks
  gridgatectl task ls

  # Filter tasks by status
  gridgatectl task ls --status=running

  # Output in JSON format
  gridgatectl -o json task ls

  # Show verbose output with timestamps and errors
  gridgatectl --verbose task ls`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Task info command (detailed info for a specific run)
var taskInfoCmd = &cobra.Command{
	Use:   "info <task-id>",
	Short: "Show detailed information for a specific pipeline run",
	Long: `Display detailed information for one pipeline run by ID.

For terminal runs this includes per-batch execution results with
operation summaries, snapshot IDs, and captured change reports.`,
	Example: `  # Show info for a specific task
  gridgatectl task info 1a2b3c4d

  # Show per-change diff detail
  gridgatectl --verbose task info 1a2b3c4d

  # Output in JSON format
  gridgatectl --output=json task info 1a2b3c4d`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected 1 task ID, got %d", len(args))
			return fmt.Errorf("requires exactly 1 argument (task ID)")
		}
		return nil
	},
	// RunE will be set by the main package that imports this
}

// SetupTaskCommands initializes task commands and their flags
func SetupTaskCommands() {
	// Add subcommands to task command
	taskCmd.AddCommand(taskLsCmd)
	taskCmd.AddCommand(taskInfoCmd)
}

// GetTaskCommands returns the task command structures for handler assignment
func GetTaskCommands() (*cobra.Command, *cobra.Command) {
	return taskLsCmd, taskInfoCmd
}

// SetupTaskFlags configures flags for task commands
func SetupTaskFlags(taskLsCmd *cobra.Command, statusFilterPtr *string) {
	// Add flags to task ls command
	taskLsCmd.Flags().StringVar(statusFilterPtr, "status", "",
		"Filter tasks by status (pending, running, succeeded, failed)")
}
