// Package config provides common default configuration values shared across
// Gridgate components (API server, remote client, daemon). This centralizes
// configuration management and ensures consistency across the pipeline.
package config

const (
	// DefaultBindAddr is the default bind address for the HTTP API server
	// Using 0.0.0.0 allows binding to all available network interfaces
	DefaultBindAddr = "0.0.0.0"

	// DefaultLogLevel is the default log level for all components
	// INFO provides good balance of visibility without verbose debug output
	DefaultLogLevel = "INFO"

	// DefaultSheetsEndpoint is the default base URL for the remote spreadsheet
	// document API. Overridden in tests and when pointing at an emulator.
	DefaultSheetsEndpoint = "https://sheets.googleapis.com/v4"
)
