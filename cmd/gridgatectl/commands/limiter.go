// Package commands provides rate limiter command definitions for gridgatectl.
//
// This file implements the limiter command for inspecting the daemon's
// per-class token buckets and throttle state.
//
// LIMITER COMMAND:
//   - limiter: Show token balances, refill rates, and throttle status
//
// Useful when submissions slow down: a throttled limiter means the remote
// API recently answered 429 and the daemon is pacing itself down.

package commands

import (
	"github.com/spf13/cobra"
)

// Limiter command (rate limiter state)
var limiterCmd = &cobra.Command{
	Use:   "limiter",
	Short: "Show rate limiter bucket state",
	Long: `Show the daemon's per-class rate limiter state including token
balances, capacities, refill rates, and throttle status.

A throttled bucket means the remote API recently rejected a call with
429 and the daemon temporarily halved its pacing for that call class.`,
	Example: `  # Show limiter state
  gridgatectl limiter

  # Output in JSON format
  gridgatectl -o json limiter`,
	Args: cobra.NoArgs,
	// RunE will be set by the main package that imports this
}

// GetLimiterCommand returns the limiter command for handler assignment
func GetLimiterCommand() *cobra.Command {
	return limiterCmd
}
