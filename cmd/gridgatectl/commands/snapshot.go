// Package commands provides snapshot command definitions for gridgatectl.
//
// This file implements the snapshot command tree for inspecting pre-mutation
// snapshots that gridgated creates before executing high-risk batches.
//
// SNAPSHOT COMMANDS:
//   - ls: List snapshot records for a document
//   - info: Detailed information for a specific snapshot
//
// Snapshot commands support manual recovery workflows: when a destructive
// change needs to be unwound, these commands locate the record that preceded it.
package commands

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/spf13/cobra"
)

// Snapshot command (parent command for snapshot operations)
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect pre-mutation document snapshots",
	Long: `Commands for inspecting snapshots created before high-risk batches.

The daemon records a snapshot before any batch that deletes sheets or
randomizes ranges. This command group lists and inspects those records.`,
}

// Snapshot list command
var snapshotLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List snapshots for a document",
	Long: `List pre-mutation snapshot records for one document, most recent first.

Requires --document since snapshot listings are only meaningful in the
context of a specific spreadsheet.`,
	Example: `  # List snapshots for a document
  gridgatectl snapshot ls --document=doc-1

  # Output in JSON format
  gridgatectl -o json snapshot ls --document=doc-1`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Snapshot info command (detailed info for a specific snapshot)
var snapshotInfoCmd = &cobra.Command{
	Use:   "info <snapshot-id>",
	Short: "Show detailed information for a specific snapshot",
	Long: `Display detailed information for one snapshot record by ID including
captured document content size when the daemon runs with content capture.`,
	Example: `  # Show info for a specific snapshot
  gridgatectl snapshot info 1a2b3c4d

  # Output in JSON format (includes captured content when present)
  gridgatectl --output=json snapshot info 1a2b3c4d`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected 1 snapshot ID, got %d", len(args))
			return fmt.Errorf("requires exactly 1 argument (snapshot ID)")
		}
		return nil
	},
	// RunE will be set by the main package that imports this
}

// SetupSnapshotCommands initializes snapshot commands
func SetupSnapshotCommands() {
	// Add subcommands to snapshot command
	snapshotCmd.AddCommand(snapshotLsCmd)
	snapshotCmd.AddCommand(snapshotInfoCmd)
}

// GetSnapshotCommands returns the snapshot command structures for handler assignment
func GetSnapshotCommands() (*cobra.Command, *cobra.Command) {
	return snapshotLsCmd, snapshotInfoCmd
}

// SetupSnapshotFlags configures flags for snapshot commands
func SetupSnapshotFlags(snapshotLsCmd *cobra.Command, documentIDPtr *string) {
	// Add flags to snapshot ls command
	snapshotLsCmd.Flags().StringVar(documentIDPtr, "document", "",
		"Document ID whose snapshots to list")
	snapshotLsCmd.MarkFlagRequired("document")
}
