// Package handlers provides command handler functions for gridgatectl mutation submission.
//
// This file contains the submit command handler which reads a mutation batch
// from a JSON file and sends it through the daemon's safety pipeline. The file
// holds the raw mutations array in the daemon wire format:
//
//	[
//	  {"documentId": "doc-1", "request": {"updateCells": {...}}},
//	  {"documentId": "doc-1", "request": {"appendCells": {...}}}
//	]
//
// The CLI never interprets individual requests; validation of the request
// union, policy gating, and batch compilation all happen daemon-side so the
// CLI stays compatible across daemon pipeline changes.
package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/display"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HandleSubmit handles the submit command for sending a mutation batch file
// through the daemon pipeline. Supports synchronous execution with --wait,
// validation-only runs with --dry-run, and change reporting with --capture-diff.
//
// Without --wait the daemon answers with a task ID; operators poll progress
// through the task commands. Policy rejections surface immediately in both
// modes since the daemon validates before accepting a batch.
func HandleSubmit(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read mutations file: %w", err)
	}

	// Catch malformed files locally before bothering the daemon
	var mutations []json.RawMessage
	if err := json.Unmarshal(data, &mutations); err != nil {
		return fmt.Errorf("mutations file %s is not a JSON array: %w", path, err)
	}
	if len(mutations) == 0 {
		return fmt.Errorf("mutations file %s contains no mutations", path)
	}

	logging.Info("Submitting %d mutation(s) from %s to API server: %s",
		len(mutations), path, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	outcome, err := apiClient.SubmitMutations(json.RawMessage(data),
		config.Submit.DryRun, config.Submit.CaptureDiff, config.Submit.Wait)
	if err != nil {
		return err
	}

	if config.Submit.Wait {
		display.DisplayResults(outcome.Results)
		failed := 0
		for _, res := range outcome.Results {
			if res.Error != nil || res.Skipped {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d batch(es) did not complete", failed, len(outcome.Results))
		}
		logging.Success("Successfully executed %d batch(es)", len(outcome.Results))
		return nil
	}

	if config.Global.Output == "json" {
		encoded, _ := json.MarshalIndent(outcome, "", "  ")
		fmt.Println(string(encoded))
		return nil
	}
	fmt.Printf("Task %s accepted (%s)\n", outcome.TaskID, outcome.Status)
	fmt.Printf("Poll with: gridgatectl task info %s\n", outcome.TaskID)
	logging.Success("Submitted %d mutation(s) as task %s", len(mutations), outcome.TaskID)
	return nil
}
