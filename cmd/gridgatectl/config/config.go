// Package config provides configuration management for the gridgatectl CLI.
package config

import "github.com/gridgate-dev/gridgate/internal/version"

const (
	DefaultAPIAddr = "127.0.0.1:8488" // Default API server address (routable)
)

// Version returns the current gridgatectl CLI version from the centralized version package
var Version = version.GridgatectlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of gridgated API server to connect to
	LogLevel string // Log level for CLI operations
	Timeout  int    // Connection timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Task holds the task command configuration
var Task struct {
	StatusFilter string // Filter tasks by status (pending, running, succeeded, failed)
}

// Submit holds the submit command configuration
var Submit struct {
	Wait        bool // Block until the pipeline finishes and print results
	DryRun      bool // Validate and compile without sending anything remote
	CaptureDiff bool // Capture before/after document state and report changes
}

// Snapshot holds the snapshot command configuration
var Snapshot struct {
	DocumentID string // Document whose snapshots to list
}
