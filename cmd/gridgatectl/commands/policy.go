// Package commands provides policy management command definitions for gridgatectl.
//
// This file implements the policy command tree for inspecting and replacing
// the safety policy that gridgated enforces on every mutation batch.
//
// POLICY COMMANDS:
//   - get: Show the active policy configuration
//   - set: Atomically replace the active policy from a JSON file
//
// Policy changes take effect for the next submitted batch; updates are atomic
// so an invalid policy file never leaves the daemon without limits.
package commands

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/spf13/cobra"
)

// Policy command (parent command for policy operations)
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the daemon's mutation safety policy",
	Long: `Commands for managing the safety policy gridgated enforces.

This command group provides operations for reading the policy currently
in force and replacing it atomically from a policy file.`,
}

// Policy get command
var policyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the active safety policy",
	Long: `Show the safety policy configuration the daemon currently enforces,
including per-operation cell ceilings, delete limits, and batch caps.`,
	Example: `  # Show the active policy
  gridgatectl policy get

  # Output in JSON format (suitable for editing and re-applying)
  gridgatectl -o json policy get > policy.json`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// Policy set command
var policySetCmd = &cobra.Command{
	Use:   "set <policy-file>",
	Short: "Replace the active safety policy from a file",
	Long: `Atomically replace the daemon's safety policy with the JSON document
in the given file. An invalid policy is rejected and the previous
policy stays in force.`,
	Example: `  # Apply a reviewed policy file
  gridgatectl policy set policy.json

  # Round-trip: export, edit, re-apply
  gridgatectl -o json policy get > policy.json
  gridgatectl policy set policy.json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			cmd.Help()
			fmt.Println()
			logging.Error("Invalid arguments: expected 1 policy file, got %d", len(args))
			return fmt.Errorf("requires exactly 1 argument (policy file path)")
		}
		return nil
	},
	// RunE will be set by the main package that imports this
}

// SetupPolicyCommands initializes policy commands
func SetupPolicyCommands() {
	// Add subcommands to policy command
	policyCmd.AddCommand(policyGetCmd)
	policyCmd.AddCommand(policySetCmd)
}

// GetPolicyCommands returns the policy command structures for handler assignment
func GetPolicyCommands() (*cobra.Command, *cobra.Command) {
	return policyGetCmd, policySetCmd
}
