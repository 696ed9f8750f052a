// HTTP client for the remote spreadsheet document API.
//
// CLIENT ARCHITECTURE:
// The HTTPClient wraps the Resty HTTP client with pipeline-specific
// functionality:
//   - Connection Management: Timeout configuration and connection pooling
//   - Request/Response Handling: JSON serialization and structured error parsing
//   - Fault Tolerance: Automatic retries on connection failures only; HTTP
//     error statuses are surfaced as typed APIErrors for the batch executor's
//     retryability classification, never retried here
//   - Logging: Request/response tracing through the unified logging system
//
// The Client interface is what the pipeline consumes, so tests substitute
// in-memory fakes without any HTTP machinery.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gridgate-dev/gridgate/internal/logging"
)

// Client is the narrow surface the mutation pipeline needs from the remote
// document API: one batched mutation call and one state fetch.
type Client interface {
	// BatchUpdate applies an ordered list of mutation requests to one
	// document in a single remote call.
	BatchUpdate(ctx context.Context, documentID string, req *BatchUpdateRequest) (*BatchUpdateResponse, error)

	// GetDocument fetches document state, optionally restricted to ranges
	// and optionally including grid values.
	GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*DocumentData, error)
}

// APIError is a typed remote API failure carrying the HTTP status needed by
// the batch executor to classify retryability (429 throttling, 4xx caller
// errors, 5xx transient failures).
type APIError struct {
	StatusCode int    `json:"statusCode"` // HTTP status from the remote API
	Status     string `json:"status"`     // Remote status token, e.g. RESOURCE_EXHAUSTED
	Message    string `json:"message"`    // Human-readable remote message
}

// Error implements the error interface with status context for logs.
func (e *APIError) Error() string {
	return fmt.Sprintf("remote API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// RateLimited reports whether the error is the remote quota signal.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Transient reports whether the error is a server-side failure worth retrying.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500
}

// remoteErrorBody is the error envelope the remote API returns on failures.
type remoteErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// restyLogger routes Resty's internal logging through the unified logging
// system so client-level noise follows the configured level and format.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) { logging.Error("resty: "+format, v...) }
func (restyLogger) Warnf(format string, v ...interface{})  { logging.Warn("resty: "+format, v...) }
func (restyLogger) Debugf(format string, v ...interface{}) { logging.Debug("resty: "+format, v...) }

// HTTPClient is the production Client implementation backed by Resty.
type HTTPClient struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPClient creates a document API client with timeout handling, retry
// logic for connection failures, and structured logging integration.
//
// HTTP-level error statuses are deliberately not retried here: the batch
// executor owns the retryability decision and the rate limiter owns backoff,
// so the client retries only when the request never reached the remote side.
func NewHTTPClient(baseURL string, timeout time.Duration, userAgent string) *HTTPClient {
	client := resty.New()

	baseURL = strings.TrimRight(baseURL, "/")

	// Route Resty's internal logging through our structured logging system
	client.SetLogger(restyLogger{})

	// Configure client with timeouts, headers, and retry logic
	client.
		SetTimeout(timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent)

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
		logging.Debug("Document API request: %s %s", req.Method, req.URL)
		return nil
	})

	// Custom response logging using structured logging
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("Document API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	// Custom error logging using structured logging
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Document API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &HTTPClient{
		client:  client,
		baseURL: baseURL,
	}
}

// BatchUpdate issues the single mutating call for a compiled batch against
// the remote batchUpdate endpoint.
func (h *HTTPClient) BatchUpdate(ctx context.Context, documentID string, req *BatchUpdateRequest) (*BatchUpdateResponse, error) {
	var result BatchUpdateResponse
	var remoteErr remoteErrorBody

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&remoteErr).
		Post(fmt.Sprintf("/spreadsheets/%s:batchUpdate", documentID))

	if err != nil {
		return nil, fmt.Errorf("batchUpdate call failed for document %s: %w",
			logging.FormatDocumentID(documentID), err)
	}

	if resp.IsError() {
		return nil, apiErrorFrom(resp, &remoteErr)
	}

	return &result, nil
}

// GetDocument fetches document state for diff capture. Grid values are only
// requested when the caller needs cell-level comparison, keeping metadata
// fetches cheap.
func (h *HTTPClient) GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*DocumentData, error) {
	var result DocumentData
	var remoteErr remoteErrorBody

	r := h.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&remoteErr).
		SetQueryParam("includeGridData", fmt.Sprintf("%t", includeGridData))
	if len(ranges) > 0 {
		r.SetQueryParamsFromValues(url.Values{"ranges": ranges})
	}

	resp, err := r.Get(fmt.Sprintf("/spreadsheets/%s", documentID))
	if err != nil {
		return nil, fmt.Errorf("document fetch failed for %s: %w",
			logging.FormatDocumentID(documentID), err)
	}

	if resp.IsError() {
		return nil, apiErrorFrom(resp, &remoteErr)
	}

	return &result, nil
}

// apiErrorFrom builds a typed APIError from an HTTP error response, falling
// back to the raw status when the remote error envelope is absent.
func apiErrorFrom(resp *resty.Response, body *remoteErrorBody) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     body.Error.Status,
		Message:    body.Error.Message,
	}
	if apiErr.Status == "" {
		apiErr.Status = resp.Status()
	}
	if apiErr.Message == "" {
		apiErr.Message = "remote API returned an error response"
	}
	return apiErr
}
