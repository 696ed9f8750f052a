package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridgate-dev/gridgate/internal/diff"
	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/ratelimit"
	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/response"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/snapshot"
	"github.com/gridgate-dev/gridgate/internal/validate"
)

// Phase names a stage of execution reported through progress callbacks.
type Phase string

const (
	PhaseValidating    Phase = "validating"
	PhaseCompiling     Phase = "compiling"
	PhaseExecuting     Phase = "executing"
	PhaseCapturingDiff Phase = "capturing_diff"
)

// Progress is one execution progress event. Current/Total count compiled
// batches once compilation has happened; before that both are zero.
type Progress struct {
	Phase      Phase  `json:"phase"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	DocumentID string `json:"document_id,omitempty"`
	Message    string `json:"message"`
}

// ProgressFunc receives progress events. Called from executor goroutines;
// implementations must be safe for concurrent use.
type ProgressFunc func(Progress)

// ExecuteOptions tune one execution run.
type ExecuteOptions struct {
	// DryRun compiles and gates but sends nothing to the remote.
	DryRun bool

	// CaptureDiff enables before/after state capture and change reporting.
	CaptureDiff bool

	// Tier overrides automatic diff tier selection when non-empty.
	Tier diff.Tier

	// Progress receives execution events when non-nil.
	Progress ProgressFunc
}

// Result is the outcome of one compiled batch.
type Result struct {
	DocumentID   string           `json:"document_id"`
	BatchIndex   int              `json:"batch_index"`
	RequestCount int              `json:"request_count"`
	Payload      PayloadMetrics   `json:"payload_metrics"`
	DryRun       bool             `json:"dry_run,omitempty"`
	SnapshotID   string           `json:"snapshot_id,omitempty"`
	Response     *response.Result `json:"response,omitempty"`
	Diff         *diff.Report     `json:"diff,omitempty"`
	Error        *ErrorDetail     `json:"error,omitempty"`

	// Skipped marks batches never sent because an earlier batch for the
	// same document failed.
	Skipped bool `json:"skipped,omitempty"`
}

// ExecutorConfig tunes the executor.
type ExecutorConfig struct {
	Compiler       CompilerConfig `json:"compiler"`
	ThrottleWindow time.Duration  `json:"throttle_window"` // Limiter degradation after a 429
}

// DefaultExecutorConfig throttles for a minute after a remote quota signal.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Compiler:       DefaultCompilerConfig(),
		ThrottleWindow: time.Minute,
	}
}

// Validate checks the nested compiler config and the throttle window.
func (c ExecutorConfig) Validate() error {
	if err := c.Compiler.Validate(); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.ThrottleWindow, "throttle_window"); err != nil {
		return err
	}
	return nil
}

// Executor runs compiled batches against the remote API with every safety
// rail applied: policy gate, rate limiter, snapshot protection, and diff
// capture.
type Executor struct {
	cfg       ExecutorConfig
	client    sheets.Client
	enforcer  *policy.Enforcer
	limiter   *ratelimit.Limiter
	differ    *diff.Engine
	snapshots snapshot.Service
}

// NewExecutor wires the executor. client, enforcer, and limiter are
// required; differ and snapshots may be nil to disable diff capture and
// high-risk snapshot protection respectively (nil snapshots makes every
// high-risk batch fail closed).
func NewExecutor(cfg ExecutorConfig, client sheets.Client, enforcer *policy.Enforcer,
	limiter *ratelimit.Limiter, differ *diff.Engine, snapshots snapshot.Service) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil || enforcer == nil || limiter == nil {
		return nil, fmt.Errorf("client, enforcer, and limiter are required")
	}
	return &Executor{
		cfg:       cfg,
		client:    client,
		enforcer:  enforcer,
		limiter:   limiter,
		differ:    differ,
		snapshots: snapshots,
	}, nil
}

// Validate runs only the policy gate over an intent list, without compiling
// or executing anything. Lets callers reject doomed submissions before
// queueing them.
func (e *Executor) Validate(reqs []request.Wrapped) error {
	return e.enforcer.ValidateIntents(reqs)
}

// ExecuteAll validates, compiles, and executes a full intent list. Batches
// targeting the same document run strictly in submission order and stop on
// the first failure (later same-document batches are marked skipped);
// batches for different documents run concurrently. Results are returned in
// compiled batch order. A policy violation rejects the whole list before
// any network call.
func (e *Executor) ExecuteAll(ctx context.Context, reqs []request.Wrapped, opts ExecuteOptions) ([]Result, error) {
	report(opts.Progress, Progress{Phase: PhaseValidating, Message: fmt.Sprintf("validating %d request(s)", len(reqs))})

	if err := e.enforcer.ValidateIntents(reqs); err != nil {
		logging.Warn("Rejected %d request(s): %v", len(reqs), err)
		return nil, err
	}

	report(opts.Progress, Progress{Phase: PhaseCompiling, Message: "compiling batches"})

	batches, err := Compile(reqs, e.cfg.Compiler)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}

	// Lane per document: sequential within, concurrent across
	lanes := make(map[string][]int)
	laneOrder := make([]string, 0)
	for i, b := range batches {
		if _, ok := lanes[b.DocumentID]; !ok {
			laneOrder = append(laneOrder, b.DocumentID)
		}
		lanes[b.DocumentID] = append(lanes[b.DocumentID], i)
	}

	results := make([]Result, len(batches))
	var done int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, docID := range laneOrder {
		wg.Add(1)
		go func(docID string, indexes []int) {
			defer wg.Done()
			failed := false
			for _, idx := range indexes {
				if failed {
					results[idx] = Result{
						DocumentID:   docID,
						BatchIndex:   idx,
						RequestCount: len(batches[idx].Requests),
						Skipped:      true,
					}
					continue
				}

				res := e.executeBatch(ctx, batches[idx], idx, opts)
				results[idx] = res
				if res.Error != nil {
					failed = true
					logging.Warn("Batch %d for document %s failed, skipping %d remaining batch(es)",
						idx, logging.FormatDocumentID(docID), remainingAfter(indexes, idx))
				}

				mu.Lock()
				done++
				report(opts.Progress, Progress{
					Phase:      PhaseExecuting,
					Current:    int(done),
					Total:      len(batches),
					DocumentID: docID,
					Message:    fmt.Sprintf("batch %d of %d", done, len(batches)),
				})
				mu.Unlock()
			}
		}(docID, lanes[docID])
	}
	wg.Wait()

	return results, nil
}

// Execute runs one pre-compiled batch through the full safety rail: risk
// gating, rate limiting, the single mutating call, and diff capture.
// ExecuteAll is the usual entry point; Execute serves callers that compile
// batches themselves.
func (e *Executor) Execute(ctx context.Context, b CompiledBatch, opts ExecuteOptions) Result {
	return e.executeBatch(ctx, b, 0, opts)
}

func remainingAfter(indexes []int, idx int) int {
	for i, v := range indexes {
		if v == idx {
			return len(indexes) - i - 1
		}
	}
	return 0
}

// executeBatch runs one compiled batch: snapshot, before-capture, the single
// mutating call, parse, and after-capture.
func (e *Executor) executeBatch(ctx context.Context, b CompiledBatch, idx int, opts ExecuteOptions) Result {
	res := Result{
		DocumentID:   b.DocumentID,
		BatchIndex:   idx,
		RequestCount: len(b.Requests),
		Payload:      b.PayloadMetrics(),
		DryRun:       opts.DryRun,
	}

	tier := opts.Tier
	if tier == "" && e.differ != nil {
		tier = e.differ.Config().SelectTier(b.EstimatedCells)
	}

	if opts.DryRun {
		res.Response = response.ParseBatchUpdateResponse(&sheets.BatchUpdateResponse{SpreadsheetID: b.DocumentID}, b.Requests)
		return res
	}

	// High-risk batches never execute without a named recovery point
	if b.HighRisk {
		if e.snapshots == nil {
			res.Error = &ErrorDetail{
				Code:      CodeRejected,
				Message:   "high-risk batch requires snapshot support, which is not configured",
				Retryable: false,
			}
			return res
		}
		if err := e.limiter.Acquire(ctx, ratelimit.ClassRead, 1); err != nil {
			res.Error = Classify(err)
			return res
		}
		snapID, err := e.snapshots.Create(ctx, b.DocumentID)
		if err != nil {
			res.Error = Classify(fmt.Errorf("snapshot failed: %w", err))
			return res
		}
		res.SnapshotID = snapID
	}

	captureDiff := opts.CaptureDiff && e.differ != nil

	var before *diff.DocumentState
	if captureDiff {
		report(opts.Progress, Progress{Phase: PhaseCapturingDiff, DocumentID: b.DocumentID,
			Message: fmt.Sprintf("capturing %s before-state", tier)})
		if err := e.limiter.Acquire(ctx, ratelimit.ClassRead, 1); err != nil {
			res.Error = Classify(err)
			return res
		}
		state, err := e.differ.CaptureState(ctx, b.DocumentID, tier)
		if err != nil {
			res.Error = Classify(err)
			return res
		}
		before = state
	}

	// Write cost scales with the number of requests in the call
	if err := e.limiter.Acquire(ctx, ratelimit.ClassWrite, len(b.Requests)); err != nil {
		res.Error = Classify(err)
		return res
	}

	remote := b.BuildRemoteRequest(captureDiff, captureDiff && tier != diff.TierMetadata)
	resp, err := e.client.BatchUpdate(ctx, b.DocumentID, remote)
	if err != nil {
		res.Error = Classify(err)
		if res.Error.Code == CodeRateLimited {
			e.limiter.Throttle(e.cfg.ThrottleWindow)
		}
		return res
	}

	res.Response = response.ParseBatchUpdateResponse(resp, b.Requests)
	logging.Info("Executed batch of %d request(s) on document %s: %s",
		len(b.Requests), logging.FormatDocumentID(b.DocumentID), res.Response.Summary)

	if captureDiff {
		res.Diff = e.captureAndCompare(ctx, b.DocumentID, before, resp, tier, opts)
	}
	return res
}

// captureAndCompare builds the after-state, preferring the document the
// mutation response already carries over a second network read.
func (e *Executor) captureAndCompare(ctx context.Context, documentID string, before *diff.DocumentState,
	resp *sheets.BatchUpdateResponse, tier diff.Tier, opts ExecuteOptions) *diff.Report {
	report(opts.Progress, Progress{Phase: PhaseCapturingDiff, DocumentID: documentID,
		Message: fmt.Sprintf("capturing %s after-state", tier)})

	after := e.differ.CaptureStateFromResponse(resp, tier)
	if after == nil {
		if err := e.limiter.Acquire(ctx, ratelimit.ClassRead, 1); err != nil {
			logging.Warn("Skipping diff for document %s: %v", logging.FormatDocumentID(documentID), err)
			return nil
		}
		state, err := e.differ.CaptureState(ctx, documentID, tier)
		if err != nil {
			logging.Warn("Skipping diff for document %s: %v", logging.FormatDocumentID(documentID), err)
			return nil
		}
		after = state
	}

	return e.differ.Compare(before, after, tier)
}

func report(fn ProgressFunc, p Progress) {
	if fn != nil {
		fn(p)
	}
}
