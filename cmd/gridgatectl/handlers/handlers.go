// Package handlers provides command handler functions for gridgatectl.
//
// This package contains all the command execution logic for gridgatectl commands,
// organized by resource type for maintainability and clean separation of concerns.
// Each handler file corresponds to a specific resource type and contains all
// related command handlers and helper functions.
//
// The package is organized as follows:
// - info.go: Daemon health and version inspection
// - submit.go: Mutation batch submission (sync, async, dry-run)
// - task.go: Pipeline run tracking (ls, info)
// - policy.go: Safety policy inspection and replacement (get, set)
// - limiter.go: Rate limiter bucket state
// - snapshot.go: Pre-mutation snapshot inspection (ls, info)
//
// All handlers follow consistent patterns:
// - cobra.Command RunE function signature for CLI integration
// - Standardized error handling and logging using the logging package
// - Consistent output formatting through the display package
// - Clean separation between API communication and presentation logic
package handlers
