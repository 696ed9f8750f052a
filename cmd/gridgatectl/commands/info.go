// Package commands provides daemon information command definitions for gridgatectl.
//
// This file implements the daemon information command that displays gridgated
// health, version, and uptime for operational visibility.
//
// INFO COMMAND:
//   - info: Shows daemon health status, version, and uptime
//
// The info command provides operators with the quickest reachability check and
// version confirmation when troubleshooting pipeline connectivity.

package commands

import (
	"github.com/spf13/cobra"
)

// Info command (daemon information)
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show daemon health and version information",
	Long: `Show gridgated health status, version, and uptime.

This provides the quickest way to verify the daemon is reachable and
confirm which version the CLI is talking to.`,
	Example: `  # Show daemon information
  gridgatectl info

  # Show daemon info from specific API server
  gridgatectl --api=192.168.1.100:8488 info

  # Output in JSON format
  gridgatectl -o json info`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetInfoCommand returns the info command for handler assignment
func GetInfoCommand() *cobra.Command {
	return infoCmd
}
