// Package utils provides common utility functions for the Gridgate pipeline.
//
// This file implements unified ID generation and formatting functionality used
// across the pipeline for creating and displaying unique identifiers. Provides
// consistent ID formats for batches, tasks, and other pipeline resources while
// eliminating code duplication.
//
// ID GENERATION STRATEGY:
// Uses crypto/rand for high-quality random data generation to ensure uniqueness
// across concurrent executions and prevent collisions. All generated IDs follow
// the same 12-character hexadecimal format for consistency and readability.
//
// USAGE PATTERNS:
// - Batch IDs: Correlation of compiled batches across log lines
// - Task IDs: Async job tracking identifiers (when not using uuid)
// - Resource IDs: Future extensions for other pipeline resources
//
// The unified approach ensures consistent ID formats across all pipeline
// components while providing a single source of truth for ID logic.

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ShortIDLength is the number of characters shown when an ID is truncated
// for display. Matches the generated ID length so generated IDs pass through
// truncation unchanged.
const ShortIDLength = 12

// GenerateID creates a unique 12-character hex identifier for pipeline resources.
// Uses crypto/rand to ensure uniqueness across concurrent executions and prevent
// collisions.
//
// Essential for resource identification, logging correlation, and API operations
// where resources need to be uniquely referenced. The 12-character format
// balances uniqueness with human readability in logs and interfaces.
//
// Returns format: "a1b2c3d4e5f6" (12 hex characters, similar to Docker short IDs)
func GenerateID() (string, error) {
	// Generate 6 bytes of random data (12 hex characters)
	bytes := make([]byte, 6)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// TruncateIDSafe truncates an ID to ShortIDLength characters for display,
// returning short IDs unchanged. Safe for IDs of any length including empty
// strings, making it suitable for formatting untrusted or optional IDs in
// logs and CLI output.
func TruncateIDSafe(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
