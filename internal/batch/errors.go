package batch

import (
	"context"
	"errors"

	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// ErrorCode classifies an execution failure for callers deciding whether to
// retry.
type ErrorCode string

const (
	// CodePolicyViolation means the batch was rejected before any network
	// call. Never retryable without changing the request or the policy.
	CodePolicyViolation ErrorCode = "POLICY_VIOLATION"

	// CodeRateLimited means the remote signalled quota exhaustion (429).
	// Retryable after backing off; triggers limiter throttling.
	CodeRateLimited ErrorCode = "RATE_LIMITED"

	// CodeRejected means the remote rejected the request (other 4xx). Not
	// retryable: the same request will fail the same way.
	CodeRejected ErrorCode = "REJECTED"

	// CodeRemoteError means the remote failed (5xx). Retryable.
	CodeRemoteError ErrorCode = "REMOTE_ERROR"

	// CodeNetworkError means the call never completed (timeouts, connection
	// failures). Retryable.
	CodeNetworkError ErrorCode = "NETWORK_ERROR"

	// CodeCancelled means the caller's context ended the operation.
	CodeCancelled ErrorCode = "CANCELLED"
)

// ErrorDetail is the classified form of one execution failure.
type ErrorDetail struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	StatusCode int       `json:"status_code,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Classify maps an error from the execution path to its retry class.
// 429 responses are the only remote client errors worth retrying; every
// other 4xx is deterministic and retrying would just burn quota.
func Classify(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	if v, ok := policy.AsViolation(err); ok {
		return &ErrorDetail{
			Code:      CodePolicyViolation,
			Message:   v.Error(),
			Retryable: false,
		}
	}

	var apiErr *sheets.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.RateLimited():
			return &ErrorDetail{
				Code:       CodeRateLimited,
				Message:    apiErr.Error(),
				Retryable:  true,
				StatusCode: apiErr.StatusCode,
			}
		case apiErr.Transient():
			return &ErrorDetail{
				Code:       CodeRemoteError,
				Message:    apiErr.Error(),
				Retryable:  true,
				StatusCode: apiErr.StatusCode,
			}
		default:
			return &ErrorDetail{
				Code:       CodeRejected,
				Message:    apiErr.Error(),
				Retryable:  false,
				StatusCode: apiErr.StatusCode,
			}
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ErrorDetail{
			Code:      CodeCancelled,
			Message:   err.Error(),
			Retryable: false,
		}
	}

	return &ErrorDetail{
		Code:      CodeNetworkError,
		Message:   err.Error(),
		Retryable: true,
	}
}
