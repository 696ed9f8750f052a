// Package handlers provides command handler functions for gridgatectl snapshot operations.
//
// This file contains pre-mutation snapshot inspection handlers. Snapshots are
// created daemon-side before high-risk batches execute; these commands let
// operators find the snapshot that preceded a destructive change when manual
// recovery is needed.
package handlers

import (
	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/display"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HandleSnapshotList handles the snapshot ls subcommand for listing
// pre-mutation snapshot records for one document.
func HandleSnapshotList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching snapshots for document %s from API server: %s",
		config.Snapshot.DocumentID, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	snapshots, err := apiClient.GetSnapshots(config.Snapshot.DocumentID)
	if err != nil {
		return err
	}

	display.DisplaySnapshots(snapshots)
	logging.Success("Successfully retrieved %d snapshot(s)", len(snapshots))
	return nil
}

// HandleSnapshotInfo handles the snapshot info subcommand for inspecting one
// snapshot record by ID including captured content size when available.
func HandleSnapshotInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	snapshotID := args[0]
	logging.Info("Fetching snapshot %s from API server: %s", snapshotID, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	snap, err := apiClient.GetSnapshot(snapshotID)
	if err != nil {
		return err
	}

	display.DisplaySnapshot(*snap)
	logging.Success("Successfully retrieved snapshot %s", snap.ID)
	return nil
}
