// Package handlers provides command handler functions for gridgatectl limiter operations.
package handlers

import (
	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/display"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HandleLimiter handles the limiter command for displaying per-class rate
// limiter bucket state. Shows token balances, refill rates, and whether the
// daemon is running in throttled degraded mode after remote 429 responses.
func HandleLimiter(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching rate limiter state from API server: %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	state, err := apiClient.GetLimiter()
	if err != nil {
		return err
	}

	display.DisplayLimiter(*state)
	logging.Success("Successfully retrieved limiter state (%d bucket(s))", len(state.Buckets))
	return nil
}
