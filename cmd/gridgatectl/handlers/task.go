// Package handlers provides command handler functions for gridgatectl task operations.
//
// This file contains the task tracking handlers for monitoring asynchronous
// mutation submissions: listing live pipeline runs with store counters and
// inspecting individual runs including their terminal execution results.
package handlers

import (
	"github.com/spf13/cobra"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/display"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HandleTaskList handles the task ls subcommand for displaying all live
// pipeline runs with lifecycle status and task store counters. Supports
// filtering by status for operational monitoring of pending work.
func HandleTaskList(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching tasks from API server: %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	list, err := apiClient.GetTasks()
	if err != nil {
		return err
	}

	// Apply status filter
	filtered := list.Tasks
	if config.Task.StatusFilter != "" {
		filtered = nil
		for _, task := range list.Tasks {
			if task.Status == config.Task.StatusFilter {
				filtered = append(filtered, task)
			}
		}
	}

	display.DisplayTasks(client.TaskListResponse{Tasks: filtered, Stats: list.Stats})
	logging.Success("Successfully retrieved %d task(s) (%d after filtering)", len(list.Tasks), len(filtered))
	return nil
}

// HandleTaskInfo handles the task info subcommand for inspecting one pipeline
// run by ID including per-batch execution results once the run is terminal.
func HandleTaskInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	taskID := args[0]
	logging.Info("Fetching task %s from API server: %s", taskID, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	task, err := apiClient.GetTask(taskID)
	if err != nil {
		return err
	}

	display.DisplayTask(*task)
	logging.Success("Successfully retrieved task %s (%s)", task.ID, task.Status)
	return nil
}
