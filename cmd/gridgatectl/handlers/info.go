// Package handlers provides command handler functions for gridgatectl daemon inspection.
package handlers

import (
	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/display"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HandleInfo handles the info command for retrieving daemon health, version,
// and uptime information. The quickest way to verify daemon reachability and
// confirm which gridgated version the CLI is talking to.
func HandleInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching daemon information from API server: %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	health, err := apiClient.GetHealth()
	if err != nil {
		return err
	}

	display.DisplayHealth(*health)
	logging.Success("Daemon %s is %s", health.Version, health.Status)
	return nil
}
