// Package commands provides mutation submission command definitions for gridgatectl.
//
// This file implements the submit command for sending mutation batch files
// through the daemon's safety pipeline with support for synchronous execution,
// dry runs, and diff capture.
//
// SUBMIT COMMAND:
//   - submit: Send a mutation batch file through the pipeline
//
// The submit command is the primary write path of the CLI; everything else
// inspects state that submissions create.
package commands

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/spf13/cobra"
)

// Submit command (mutation batch submission)
var submitCmd = &cobra.Command{
	Use:   "submit <mutations-file>",
	Short: "Submit a mutation batch through the safety pipeline",
	Long: `Submit a mutation batch file through the gridgated safety pipeline.

The file holds a JSON array of mutations, each pairing a document ID with
one typed request. The daemon validates the batch against the active
policy, compiles it into rate-limited remote calls, and optionally
captures a before/after diff of the affected documents.`,
	Example: `  # Submit and wait for per-batch results
  gridgatectl submit mutations.json --wait

  # Validate and compile without sending anything remote
  gridgatectl submit mutations.json --dry-run --wait

  # Capture a change report alongside execution
  gridgatectl submit mutations.json --wait --capture-diff

  # Submit asynchronously and poll later
  gridgatectl submit mutations.json
  gridgatectl task info <task-id>

  # Allow more time for large synchronous batches
  gridgatectl --timeout=120 submit mutations.json --wait`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected 1 mutations file, got %d", len(args))
			return fmt.Errorf("requires exactly 1 argument (mutations file path)")
		}
		return nil
	},
	// RunE will be set by the main package that imports this
}

// GetSubmitCommand returns the submit command for handler assignment
func GetSubmitCommand() *cobra.Command {
	return submitCmd
}

// SetupSubmitFlags configures flags for the submit command
func SetupSubmitFlags(submitCmd *cobra.Command, waitPtr, dryRunPtr, captureDiffPtr *bool) {
	submitCmd.Flags().BoolVarP(waitPtr, "wait", "w", false,
		"Block until the pipeline finishes and print per-batch results")
	submitCmd.Flags().BoolVar(dryRunPtr, "dry-run", false,
		"Validate and compile the batch without sending remote calls")
	submitCmd.Flags().BoolVar(captureDiffPtr, "capture-diff", false,
		"Capture before/after document state and report changes")
}
