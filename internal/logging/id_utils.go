// Package logging provides ID formatting utilities for consistent ID display
// across all logging contexts in the Gridgate mutation pipeline.
//
// Implements intelligent ID truncation that preserves full IDs in debug contexts
// while providing user-friendly short IDs in info/warning contexts, improving
// log readability without sacrificing traceability when detailed debugging is needed.
//
// ID FORMATTING STRATEGY:
//   - Debug logs: Full IDs for complete traceability
//   - Info/Warn/Error/Success logs: Truncated 12-character IDs for readability
//   - Consistent formatting across all pipeline components
//
// USAGE PATTERNS:
//   - FormatDocumentID: Format spreadsheet document IDs for logging
//   - FormatTaskID: Format async task IDs for logging
//   - FormatSnapshotID: Format snapshot IDs for logging
//   - FormatID: Generic ID formatting for any resource type
//
// The context-aware approach ensures operators get readable logs during normal
// operations while preserving full detail when troubleshooting specific issues.
package logging

import (
	"github.com/charmbracelet/log"
	"github.com/gridgate-dev/gridgate/internal/utils"
)

// FormatID formats an ID for logging based on the current log level context.
// Returns the full ID for debug logging to ensure complete traceability
// during troubleshooting, while returning a truncated 12-character ID for
// other log levels to improve readability in operational logs.
func FormatID(id string) string {
	// If debug level is enabled, show full IDs for complete traceability
	// Use stderr logger since debug messages go to stderr
	if stderrLogger.GetLevel() <= log.DebugLevel {
		return id
	}

	// For info/warn/error/success contexts, use truncated IDs for readability
	return utils.TruncateIDSafe(id)
}

// FormatDocumentID formats a spreadsheet document ID for logging with
// context-aware truncation. Document IDs issued by the remote API are long
// opaque strings that flood operational logs when printed in full.
//
// Usage: logging.Info("Executing batch for document %s", logging.FormatDocumentID(docID))
func FormatDocumentID(documentID string) string {
	return FormatID(documentID)
}

// FormatTaskID formats an async task ID for logging with context-aware truncation.
// Provides a semantic wrapper around FormatID specifically for task identifiers.
//
// Usage: logging.Info("Task %s completed", logging.FormatTaskID(taskID))
func FormatTaskID(taskID string) string {
	return FormatID(taskID)
}

// FormatSnapshotID formats a snapshot ID for logging with context-aware truncation.
// Provides a semantic wrapper around FormatID specifically for snapshot identifiers.
//
// Usage: logging.Info("Created snapshot %s", logging.FormatSnapshotID(snapID))
func FormatSnapshotID(snapshotID string) string {
	return FormatID(snapshotID)
}

// FormatTransactionID formats a caller transaction ID for logging with
// context-aware truncation.
//
// Usage: logging.Debug("Building requests for transaction %s", logging.FormatTransactionID(txID))
func FormatTransactionID(transactionID string) string {
	return FormatID(transactionID)
}
