// Policy violation taxonomy and the enforcer that applies configured limits
// to pending mutation batches.
package policy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// ViolationCode identifies which policy rule rejected a batch.
type ViolationCode string

const (
	// CodeEffectScopeExceeded covers both batch-size and per-operation cell
	// ceiling violations: the requested effect scope exceeds a configured limit.
	CodeEffectScopeExceeded ViolationCode = "EFFECT_SCOPE_EXCEEDED"

	// CodeMultipleDestructive marks a batch carrying more than one
	// destructive operation while allow_batch_destructive is off.
	CodeMultipleDestructive ViolationCode = "MULTIPLE_DESTRUCTIVE"

	// CodeMissingExplicitRange marks a destructive operation without an
	// explicit bounded target range.
	CodeMissingExplicitRange ViolationCode = "MISSING_EXPLICIT_RANGE"

	// CodeDimensionLimitExceeded marks a row/column deletion beyond the
	// configured dimension ceilings.
	CodeDimensionLimitExceeded ViolationCode = "DIMENSION_LIMIT_EXCEEDED"
)

// Violation is a non-retryable policy rejection raised before any network
// call. Index points at the offending operation within the validated batch,
// or -1 for batch-level violations.
type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
	Index   int           `json:"index"`  // Offending operation index, -1 for batch-level
	Limit   int64         `json:"limit"`  // Configured ceiling that was exceeded
	Actual  int64         `json:"actual"` // Observed value
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("policy violation %s: %s", v.Code, v.Message)
}

// AsViolation extracts a *Violation from an error chain, reporting whether
// the error is a policy rejection.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Enforcer applies a policy configuration to pending mutation batches. Safe
// for concurrent use; the configuration is immutable except through Update.
type Enforcer struct {
	mu  sync.RWMutex
	cfg Config
}

// NewEnforcer creates an enforcer with a validated configuration.
func NewEnforcer(cfg Config) (*Enforcer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Enforcer{cfg: cfg}, nil
}

// Config returns a copy of the active policy configuration.
func (e *Enforcer) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Update replaces the active policy configuration after validating it. This
// is the only mutation path; per-call overrides do not exist.
func (e *Enforcer) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	logging.Info("Policy configuration updated: maxIntents=%d maxCells=%d allowBatchDestructive=%t",
		cfg.MaxIntentsPerBatch, cfg.MaxCellsPerOperation, cfg.AllowBatchDestructive)
	return nil
}

// ValidateIntents validates a batch of pending mutations against the active
// limits. Runs synchronously before any network access; every returned error
// is a *Violation and is never retried.
func (e *Enforcer) ValidateIntents(reqs []request.Wrapped) error {
	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	if len(reqs) > cfg.MaxIntentsPerBatch {
		return &Violation{
			Code:    CodeEffectScopeExceeded,
			Message: fmt.Sprintf("batch of %d operations exceeds max_intents_per_batch %d", len(reqs), cfg.MaxIntentsPerBatch),
			Index:   -1,
			Limit:   int64(cfg.MaxIntentsPerBatch),
			Actual:  int64(len(reqs)),
		}
	}

	destructive := 0
	for i, w := range reqs {
		if w.Meta.Destructive {
			destructive++
		}

		if w.Meta.EstimatedCells > cfg.MaxCellsPerOperation {
			return &Violation{
				Code: CodeEffectScopeExceeded,
				Message: fmt.Sprintf("operation %d (%s) affects an estimated %d cells, limit is %d",
					i, w.Req.Kind, w.Meta.EstimatedCells, cfg.MaxCellsPerOperation),
				Index:  i,
				Limit:  cfg.MaxCellsPerOperation,
				Actual: w.Meta.EstimatedCells,
			}
		}

		if cfg.RequireExplicitRangeForDelete && w.Meta.Destructive && !hasExplicitRange(w.Req) {
			return &Violation{
				Code: CodeMissingExplicitRange,
				Message: fmt.Sprintf("destructive operation %d (%s) has no explicit target range",
					i, w.Req.Kind),
				Index: i,
			}
		}

		if err := e.checkDimensionDeletion(i, w.Req, cfg); err != nil {
			return err
		}
	}

	if destructive > 1 && !cfg.AllowBatchDestructive {
		return &Violation{
			Code: CodeMultipleDestructive,
			Message: fmt.Sprintf("batch carries %d destructive operations and allow_batch_destructive is off",
				destructive),
			Index:  -1,
			Limit:  1,
			Actual: int64(destructive),
		}
	}

	return nil
}

// checkDimensionDeletion bounds row/column deletion counts against the
// dedicated dimension ceilings.
func (e *Enforcer) checkDimensionDeletion(index int, req sheets.Request, cfg Config) error {
	if req.Kind != sheets.KindDeleteDimension || req.DeleteDimension == nil {
		return nil
	}

	rng := req.DeleteDimension.Range
	count := rng.Count()

	switch rng.Dimension {
	case sheets.DimensionRows:
		if count > cfg.MaxRowsPerDelete {
			return &Violation{
				Code: CodeDimensionLimitExceeded,
				Message: fmt.Sprintf("operation %d deletes %d rows, limit is %d",
					index, count, cfg.MaxRowsPerDelete),
				Index:  index,
				Limit:  cfg.MaxRowsPerDelete,
				Actual: count,
			}
		}
	case sheets.DimensionColumns:
		if count > cfg.MaxColumnsPerDelete {
			return &Violation{
				Code: CodeDimensionLimitExceeded,
				Message: fmt.Sprintf("operation %d deletes %d columns, limit is %d",
					index, count, cfg.MaxColumnsPerDelete),
				Index:  index,
				Limit:  cfg.MaxColumnsPerDelete,
				Actual: count,
			}
		}
	}

	return nil
}

// hasExplicitRange reports whether a request names a bounded target. Sheet
// deletions target a concrete sheet ID, which counts as explicit; cell-range
// operations must be bounded in both dimensions; dimension deletions carry
// explicit index intervals by construction.
func hasExplicitRange(req sheets.Request) bool {
	switch req.Kind {
	case sheets.KindUpdateCells:
		return req.UpdateCells != nil && req.UpdateCells.Range.Bounded()
	case sheets.KindSortRange:
		return req.SortRange != nil && req.SortRange.Range.Bounded()
	case sheets.KindRandomizeRange:
		return req.RandomizeRange != nil && req.RandomizeRange.Range.Bounded()
	case sheets.KindTextToColumns:
		return req.TextToColumns != nil && req.TextToColumns.Source.Bounded()
	case sheets.KindCutPaste:
		return req.CutPaste != nil && req.CutPaste.Source.Bounded()
	case sheets.KindDeleteDimension:
		return req.DeleteDimension != nil
	case sheets.KindDeleteSheet:
		return req.DeleteSheet != nil
	default:
		return true
	}
}
