// Fixed per-operation-kind risk classification.
//
// Destructive operations remove data or reorder it irreversibly; the policy
// gate counts them per batch and can require explicit target ranges. High
// risk operations additionally have no straightforward rollback, so the
// executor takes a snapshot before sending them. Classification is static by
// design: risk is a property of the operation kind, never of runtime state.
package request

import "github.com/gridgate-dev/gridgate/internal/sheets"

type riskProfile struct {
	destructive bool
	highRisk    bool
}

// riskProfiles classifies every supported request kind. Kinds absent from
// the table are neither destructive nor high risk (zero value).
var riskProfiles = map[sheets.RequestKind]riskProfile{
	// Deletions remove data outright
	sheets.KindDeleteDimension: {destructive: true},
	sheets.KindDeleteSheet:     {destructive: true},

	// Cut clears the source range
	sheets.KindCutPaste: {destructive: true},

	// Sort discards the previous row order
	sheets.KindSortRange: {destructive: true},

	// Randomize discards row order AND is non-deterministic, so not even a
	// repeat of the inverse operation can restore it
	sheets.KindRandomizeRange: {destructive: true, highRisk: true},

	// Text-to-columns overwrites adjacent columns with split output
	sheets.KindTextToColumns: {destructive: true, highRisk: true},
}

// Destructive reports the fixed classification for a request kind.
func Destructive(kind sheets.RequestKind) bool {
	return riskProfiles[kind].destructive
}

// HighRisk reports the fixed classification for a request kind.
func HighRisk(kind sheets.RequestKind) bool {
	return riskProfiles[kind].highRisk
}
