// Package client provides comprehensive API client functionality for the gridgatectl CLI.
//
// This package implements the complete HTTP client layer for communicating with
// the gridgated REST API. It handles all aspects of API communication including
// request/response serialization, error handling, retry logic, and structured
// logging for reliable pipeline operations.
//
// API CLIENT ARCHITECTURE:
// The GridgateAPIClient wraps the Resty HTTP client with gridgate-specific functionality:
//   - Connection Management: Timeout configuration, retry policies, and connection pooling
//   - Request/Response Handling: JSON serialization, structured error parsing, and logging
//   - Authentication: User-Agent headers and API versioning for compatibility tracking
//   - Fault Tolerance: Automatic retries on connection failures with exponential backoff
//
// SUPPORTED OPERATIONS:
//   - Daemon Health: Version, uptime, and readiness information
//   - Mutation Submission: Synchronous and asynchronous batch submission with dry-run support
//   - Task Tracking: Live task listing and individual task inspection
//   - Policy Management: Reading and atomically replacing the active safety policy
//   - Rate Limiter: Per-class token bucket state and throttle visibility
//   - Snapshots: Pre-mutation snapshot listing and inspection
//
// The response types in this package mirror the daemon API wire format rather than
// importing daemon internals, keeping the CLI decoupled from server-side refactors.
package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// HealthInfo mirrors the daemon health endpoint response with version and
// uptime details for daemon readiness checks and operational visibility.
type HealthInfo struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// Task represents a tracked mutation pipeline run with lifecycle status and
// the execution results once the run reaches a terminal state.
type Task struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// TaskStats carries task store counters for operational monitoring.
type TaskStats struct {
	Tasks     int   `json:"tasks"`
	Created   int64 `json:"created"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Swept     int64 `json:"swept"`
}

// TaskListResponse represents the task listing endpoint payload including
// live tasks and store-level counters.
type TaskListResponse struct {
	Tasks []Task    `json:"tasks"`
	Stats TaskStats `json:"stats"`
}

// BucketState mirrors one rate limiter bucket snapshot from the daemon,
// covering token balance, capacity, and throttle status per call class.
type BucketState struct {
	Class          string    `json:"class"`
	Tokens         float64   `json:"tokens"`
	Capacity       float64   `json:"capacity"`
	RefillRate     float64   `json:"refill_rate"`
	Throttled      bool      `json:"throttled"`
	ThrottledUntil time.Time `json:"throttled_until,omitempty"`
}

// LimiterState represents the limiter endpoint payload with the aggregate
// throttle flag and per-class bucket detail.
type LimiterState struct {
	Throttled bool          `json:"throttled"`
	Buckets   []BucketState `json:"buckets"`
}

// SnapshotRecord mirrors a pre-mutation snapshot record. Document content is
// kept raw since the CLI only summarizes it, never interprets cell data.
type SnapshotRecord struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Document   json.RawMessage `json:"document,omitempty"`
}

// OperationResult mirrors one parsed per-operation outcome from a batch
// execution, including optional kind-specific detail like created sheet IDs.
type OperationResult struct {
	Index   int            `json:"index"`
	Kind    string         `json:"kind"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// BatchResponse mirrors the parsed remote response for one executed batch.
type BatchResponse struct {
	DocumentID string            `json:"document_id"`
	Operations []OperationResult `json:"operations"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Summary    string            `json:"summary"`
}

// DiffChange mirrors one detected document change from the diff engine.
type DiffChange struct {
	Kind       string `json:"kind"`
	SheetID    int64  `json:"sheet_id"`
	SheetTitle string `json:"sheet_title,omitempty"`
	Row        int64  `json:"row,omitempty"`
	Column     int64  `json:"column,omitempty"`
	Block      int    `json:"block,omitempty"`
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
}

// DiffReport mirrors the diff engine comparison report for one batch.
type DiffReport struct {
	DocumentID string       `json:"document_id"`
	Tier       string       `json:"tier"`
	Changes    []DiffChange `json:"changes"`
	Truncated  bool         `json:"truncated"`
}

// ExecutionError mirrors the daemon's classified execution error payload.
type ExecutionError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	StatusCode int    `json:"status_code,omitempty"`
}

// PayloadMetrics mirrors the wire-cost summary attached to each result.
type PayloadMetrics struct {
	RequestCount    int   `json:"request_count"`
	SerializedBytes int   `json:"serialized_bytes"`
	EstimatedCells  int64 `json:"estimated_cells"`
}

// ExecutionResult mirrors one per-batch execution result from the daemon
// including the parsed response, optional diff report, and failure detail.
type ExecutionResult struct {
	DocumentID   string          `json:"document_id"`
	BatchIndex   int             `json:"batch_index"`
	RequestCount int             `json:"request_count"`
	Payload      PayloadMetrics  `json:"payload_metrics"`
	DryRun       bool            `json:"dry_run,omitempty"`
	SnapshotID   string          `json:"snapshot_id,omitempty"`
	Response     *BatchResponse  `json:"response,omitempty"`
	Diff         *DiffReport     `json:"diff,omitempty"`
	Error        *ExecutionError `json:"error,omitempty"`
	Skipped      bool            `json:"skipped,omitempty"`
}

// SubmitOutcome captures either outcome of a mutation submission: synchronous
// execution results when waiting, or a task ID for later polling.
type SubmitOutcome struct {
	TaskID  string            `json:"taskId,omitempty"`
	Status  string            `json:"status,omitempty"`
	Results []ExecutionResult `json:"results,omitempty"`
}

// GridgateAPIClient wraps the Resty HTTP client with gridgate-specific
// functionality for reliable daemon API communication. Provides a configured
// client with retry logic, structured logging, and proper timeout handling.
type GridgateAPIClient struct {
	client  *resty.Client
	baseURL string
}

// NewGridgateAPIClient creates a new API client with comprehensive Resty
// configuration for reliable daemon communication. Configures timeout handling,
// retry logic, structured logging integration, and proper headers.
func NewGridgateAPIClient(apiAddr string, timeout int) *GridgateAPIClient {
	client := resty.New()

	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	// Route Resty's internal logging through our structured logging system
	client.SetLogger(utils.RestyLogger{})

	// Configure client with timeouts, headers, and retry logic
	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("gridgatectl/%s", config.Version))

	// Add retry mechanism with custom retry conditions
	client.
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Only retry on connection errors, not HTTP errors
			return err != nil
		})

	// Custom request logging using structured logging
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	// Custom response logging using structured logging
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	// Custom error logging using structured logging
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &GridgateAPIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// GetHealth fetches daemon health, version, and uptime information.
// Provides the quickest way to verify that gridgated is reachable and
// identify which daemon version the CLI is talking to.
func (api *GridgateAPIClient) GetHealth() (*HealthInfo, error) {
	var health HealthInfo

	resp, err := api.client.R().
		SetResult(&health).
		Get("/health")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &health, nil
}

// SubmitMutations submits a mutation batch to the daemon pipeline. The
// mutations argument is the raw JSON array read from the submission file;
// keeping it raw lets the daemon own request-union validation instead of
// duplicating the wire format in the CLI.
//
// When wait is true the call blocks until the pipeline finishes and the
// outcome carries per-batch results. Otherwise the daemon answers 202 with
// a task ID for later polling via the task commands.
func (api *GridgateAPIClient) SubmitMutations(mutations json.RawMessage, dryRun, captureDiff, wait bool) (*SubmitOutcome, error) {
	payload := map[string]any{
		"source": map[string]any{
			"tool":   "gridgatectl",
			"action": "submit",
		},
		"mutations":   mutations,
		"dryRun":      dryRun,
		"captureDiff": captureDiff,
		"wait":        wait,
	}

	var outcome SubmitOutcome
	resp, err := api.client.R().
		SetBody(payload).
		SetResult(&outcome).
		Post("/mutations")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 400 {
		return nil, fmt.Errorf("invalid mutation batch: %s", resp.String())
	}

	if resp.StatusCode() == 422 {
		return nil, fmt.Errorf("batch rejected by policy: %s", resp.String())
	}

	if resp.StatusCode() != 200 && resp.StatusCode() != 202 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &outcome, nil
}

// GetTasks fetches all live tasks with task store counters from the daemon API.
// Provides complete pipeline run inventory for monitoring and troubleshooting
// asynchronous mutation submissions.
func (api *GridgateAPIClient) GetTasks() (*TaskListResponse, error) {
	var response TaskListResponse

	resp, err := api.client.R().
		SetResult(&response).
		Get("/tasks")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &response, nil
}

// GetTask fetches one task by ID including its terminal result payload.
// Handles not-found scenarios for expired or unknown task IDs with a clear
// error message for operators polling asynchronous submissions.
func (api *GridgateAPIClient) GetTask(taskID string) (*Task, error) {
	var task Task

	resp, err := api.client.R().
		SetResult(&task).
		Get(fmt.Sprintf("/tasks/%s", taskID))

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("task '%s' not found (unknown or expired)", taskID)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &task, nil
}

// GetPolicy fetches the active safety policy configuration from the daemon.
// Returned raw so the CLI can render exactly what the daemon enforces without
// dropping fields added by newer daemon versions.
func (api *GridgateAPIClient) GetPolicy() (map[string]any, error) {
	var policy map[string]any

	resp, err := api.client.R().
		SetResult(&policy).
		Get("/policy")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return policy, nil
}

// UpdatePolicy replaces the active safety policy with the raw JSON document
// read from the policy file. The daemon applies the update atomically: an
// invalid policy leaves the previous one in force and answers 422.
func (api *GridgateAPIClient) UpdatePolicy(policyJSON json.RawMessage) (map[string]any, error) {
	var applied map[string]any

	resp, err := api.client.R().
		SetBody(policyJSON).
		SetResult(&applied).
		Put("/policy")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 400 {
		return nil, fmt.Errorf("malformed policy document: %s", resp.String())
	}

	if resp.StatusCode() == 422 {
		return nil, fmt.Errorf("policy rejected: %s", resp.String())
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return applied, nil
}

// GetLimiter fetches per-class rate limiter bucket state from the daemon API.
// Enables operators to check token balances and verify whether the daemon is
// currently running in a throttled degraded mode after remote 429 responses.
func (api *GridgateAPIClient) GetLimiter() (*LimiterState, error) {
	var state LimiterState

	resp, err := api.client.R().
		SetResult(&state).
		Get("/limiter")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &state, nil
}

// GetSnapshots fetches pre-mutation snapshot records for one document.
// The daemon requires a document filter since snapshot listings are only
// meaningful in the context of a specific spreadsheet.
func (api *GridgateAPIClient) GetSnapshots(documentID string) ([]SnapshotRecord, error) {
	var response struct {
		Snapshots []SnapshotRecord `json:"snapshots"`
	}

	resp, err := api.client.R().
		SetResult(&response).
		SetQueryParam("document_id", documentID).
		Get("/snapshots")

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 501 {
		return nil, fmt.Errorf("snapshots are not configured on this daemon")
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return response.Snapshots, nil
}

// GetSnapshot fetches one snapshot record by ID including captured document
// content when the daemon was started with content capture enabled.
func (api *GridgateAPIClient) GetSnapshot(snapshotID string) (*SnapshotRecord, error) {
	var record SnapshotRecord

	resp, err := api.client.R().
		SetResult(&record).
		Get(fmt.Sprintf("/snapshots/%s", snapshotID))

	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}

	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("snapshot '%s' not found", snapshotID)
	}

	if resp.StatusCode() == 501 {
		return nil, fmt.Errorf("snapshots are not configured on this daemon")
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &record, nil
}

// CreateAPIClient creates a new gridgate API client using current global CLI
// configuration including API address and timeout settings. Provides convenient
// client instantiation for CLI commands without manual configuration management.
func CreateAPIClient() *GridgateAPIClient {
	return NewGridgateAPIClient(config.Global.APIAddr, config.Global.Timeout)
}
