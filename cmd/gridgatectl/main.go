// Package main provides the entry point for the gridgate CLI tool (gridgatectl).
//
// This package implements the main executable for the mutation pipeline CLI
// that enables operators to interact with a running gridgated daemon. The CLI
// provides commands for submitting mutation batches through the safety
// pipeline, tracking their execution, and managing daemon policy.
//
// CLI ARCHITECTURE:
// The main package orchestrates the complete CLI system including:
//   - Command Structure: Hierarchical resource-based commands (task, policy, snapshot)
//   - Handler Integration: Command execution with API client communication
//   - Flag Management: Global and command-specific configuration options
//   - Configuration Binding: CLI state management and validation pipeline
//
// COMMAND CATEGORIES:
//   - Submit Commands: Mutation batch submission with dry-run and diff capture
//   - Task Commands: Asynchronous pipeline run tracking and result inspection
//   - Policy Commands: Safety policy inspection and atomic replacement
//   - Inspection Commands: Daemon health, limiter state, and snapshot records
//
// INITIALIZATION FLOW:
// 1. Command structure setup with hierarchical organization
// 2. Flag configuration for global and command-specific options
// 3. Handler assignment linking commands to API operations
// 4. Configuration validation and CLI state management
// 5. Command execution with proper error handling and exit codes
//
// The CLI follows kubectl-style patterns for intuitive pipeline management with
// consistent interfaces, comprehensive help text, and production-ready reliability.
package main

import (
	"os"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/commands"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/handlers"
)

func init() {
	// Get root command from commands package
	rootCmd := commands.RootCmd

	// Set version and validation
	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	// Setup all command structures
	commands.SetupCommands()
	commands.SetupTaskCommands()
	commands.SetupPolicyCommands()
	commands.SetupSnapshotCommands()

	// Setup global flags
	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output, config.DefaultAPIAddr)

	// Setup submit command flags
	commands.SetupSubmitFlags(commands.GetSubmitCommand(),
		&config.Submit.Wait, &config.Submit.DryRun, &config.Submit.CaptureDiff)

	// Setup task command flags
	taskLsCmd, _ := commands.GetTaskCommands()
	commands.SetupTaskFlags(taskLsCmd, &config.Task.StatusFilter)

	// Setup snapshot command flags
	snapshotLsCmd, _ := commands.GetSnapshotCommands()
	commands.SetupSnapshotFlags(snapshotLsCmd, &config.Snapshot.DocumentID)

	// Setup command handlers
	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	// Get command references
	taskLsCmd, taskInfoCmd := commands.GetTaskCommands()
	policyGetCmd, policySetCmd := commands.GetPolicyCommands()
	snapshotLsCmd, snapshotInfoCmd := commands.GetSnapshotCommands()

	// Assign handlers
	commands.GetInfoCommand().RunE = handlers.HandleInfo
	commands.GetSubmitCommand().RunE = handlers.HandleSubmit
	commands.GetLimiterCommand().RunE = handlers.HandleLimiter
	taskLsCmd.RunE = handlers.HandleTaskList
	taskInfoCmd.RunE = handlers.HandleTaskInfo
	policyGetCmd.RunE = handlers.HandlePolicyGet
	policySetCmd.RunE = handlers.HandlePolicySet
	snapshotLsCmd.RunE = handlers.HandleSnapshotList
	snapshotInfoCmd.RunE = handlers.HandleSnapshotInfo
}

// main is the main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
