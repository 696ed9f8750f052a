// Package handlers implements the HTTP endpoint handlers for the gridgate
// API server. Handlers are factories taking their pipeline dependencies and
// returning gin.HandlerFunc, so routing stays declarative in the api package
// and each handler is testable in isolation with httptest.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/batch"
	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/taskstore"
)

// Mutation is one submitted intent: a target document plus the wire request.
type Mutation struct {
	DocumentID string         `json:"documentId" binding:"required"`
	Request    sheets.Request `json:"request" binding:"required"`
}

// SubmitRequest is the body of POST /api/v1/mutations.
type SubmitRequest struct {
	Source      SourceInfo `json:"source"`
	Mutations   []Mutation `json:"mutations" binding:"required,min=1"`
	DryRun      bool       `json:"dryRun"`
	CaptureDiff bool       `json:"captureDiff"`

	// Wait makes the call synchronous: the response carries the execution
	// results instead of a task to poll.
	Wait bool `json:"wait"`
}

// SourceInfo identifies the submitting tool for audit logging.
type SourceInfo struct {
	Tool          string `json:"tool"`
	Action        string `json:"action"`
	TransactionID string `json:"transactionId"`
}

// SubmitResponse is the body returned for asynchronous submissions.
type SubmitResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

// HandleSubmitMutations accepts a mutation batch. Policy violations reject
// the submission synchronously with 422 regardless of Wait, so callers never
// poll a task that was doomed before any network activity.
func HandleSubmitMutations(executor *batch.Executor, tasks *taskstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body SubmitRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		builder := request.NewBuilder(request.Source{
			Tool:          body.Source.Tool,
			Action:        body.Source.Action,
			TransactionID: body.Source.TransactionID,
		})

		reqs := make([]request.Wrapped, 0, len(body.Mutations))
		for i, m := range body.Mutations {
			wrapped, err := builder.FromRequest(m.DocumentID, m.Request)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": err.Error(),
					"index": i,
				})
				return
			}
			reqs = append(reqs, wrapped)
		}

		// Reject doomed submissions before a task exists to poll
		if err := executor.Validate(reqs); err != nil {
			writeExecuteError(c, err)
			return
		}

		opts := batch.ExecuteOptions{DryRun: body.DryRun, CaptureDiff: body.CaptureDiff}

		if body.Wait {
			results, err := executor.ExecuteAll(c.Request.Context(), reqs, opts)
			if err != nil {
				writeExecuteError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"results": results})
			return
		}

		// documentId of the first mutation names the task; cross-document
		// batches are still tracked as one task
		task := tasks.Create(body.Mutations[0].DocumentID)
		go runTask(executor, tasks, task.ID, reqs, opts)

		c.JSON(http.StatusAccepted, SubmitResponse{
			TaskID: task.ID,
			Status: string(task.Status),
		})
	}
}

// runTask executes an accepted batch in the background and records the
// outcome on the task.
func runTask(executor *batch.Executor, tasks *taskstore.Store, taskID string, reqs []request.Wrapped, opts batch.ExecuteOptions) {
	if err := tasks.MarkRunning(taskID); err != nil {
		logging.Error("Failed to mark task %s running: %v", logging.FormatTaskID(taskID), err)
		return
	}

	results, err := executor.ExecuteAll(context.Background(), reqs, opts)
	if err != nil {
		if ferr := tasks.Fail(taskID, err.Error(), nil); ferr != nil {
			logging.Error("Failed to record task %s failure: %v", logging.FormatTaskID(taskID), ferr)
		}
		return
	}

	// A batch-level error inside the results still counts as task failure
	for _, r := range results {
		if r.Error != nil {
			if ferr := tasks.Fail(taskID, r.Error.Message, results); ferr != nil {
				logging.Error("Failed to record task %s failure: %v", logging.FormatTaskID(taskID), ferr)
			}
			return
		}
	}

	if cerr := tasks.Complete(taskID, results); cerr != nil {
		logging.Error("Failed to record task %s completion: %v", logging.FormatTaskID(taskID), cerr)
	}
}

// writeExecuteError maps execution errors to HTTP statuses: policy
// violations are the caller's fault (422), everything else is reported as a
// bad gateway since the remote never completed the work.
func writeExecuteError(c *gin.Context, err error) {
	if v, ok := policy.AsViolation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     v.Message,
			"code":      v.Code,
			"index":     v.Index,
			"limit":     v.Limit,
			"actual":    v.Actual,
			"retryable": false,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
