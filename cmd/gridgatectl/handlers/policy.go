// Package handlers provides command handler functions for gridgatectl policy operations.
//
// This file contains safety policy management handlers: reading the policy the
// daemon currently enforces, and replacing it atomically from a JSON file. The
// set operation is intentionally file-based rather than flag-based so the full
// policy document goes through code review like any other configuration change.
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

// HandlePolicyGet handles the policy get subcommand for displaying the safety
// policy configuration the daemon currently enforces.
func HandlePolicyGet(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching policy from API server: %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	policy, err := apiClient.GetPolicy()
	if err != nil {
		return err
	}

	display.DisplayPolicy(policy)
	logging.Success("Successfully retrieved active policy")
	return nil
}

// HandlePolicySet handles the policy set subcommand for atomically replacing
// the daemon's safety policy from a JSON file. An invalid policy is rejected
// by the daemon and leaves the previous policy in force.
func HandlePolicySet(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}

	// Catch malformed files locally before bothering the daemon
	if !json.Valid(data) {
		return fmt.Errorf("policy file %s is not valid JSON", path)
	}

	logging.Info("Updating policy from %s via API server: %s", path, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	applied, err := apiClient.UpdatePolicy(json.RawMessage(data))
	if err != nil {
		return err
	}

	display.DisplayPolicy(applied)
	logging.Success("Policy updated successfully")
	return nil
}
