package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/batch"
	"github.com/gridgate-dev/gridgate/internal/diff"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/ratelimit"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/snapshot"
	"github.com/gridgate-dev/gridgate/internal/taskstore"
)

// stubClient answers every remote call successfully.
type stubClient struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (c *stubClient) BatchUpdate(ctx context.Context, documentID string, req *sheets.BatchUpdateRequest) (*sheets.BatchUpdateResponse, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	return &sheets.BatchUpdateResponse{
		SpreadsheetID: documentID,
		Replies:       make([]sheets.Reply, len(req.Requests)),
	}, nil
}

func (c *stubClient) GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error) {
	return &sheets.DocumentData{SpreadsheetID: documentID}, nil
}

func (c *stubClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type handlerFixture struct {
	executor *batch.Executor
	enforcer *policy.Enforcer
	limiter  *ratelimit.Limiter
	tasks    *taskstore.Store
	client   *stubClient
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	enforcer, err := policy.NewEnforcer(policy.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() failed: %v", err)
	}
	limiter, err := ratelimit.New(ratelimit.Config{ReadRate: 1000, ReadBurst: 1000, WriteRate: 1000, WriteBurst: 1000})
	if err != nil {
		t.Fatalf("ratelimit.New() failed: %v", err)
	}
	t.Cleanup(limiter.Close)

	client := &stubClient{}
	differ, err := diff.NewEngine(diff.DefaultConfig(), client)
	if err != nil {
		t.Fatalf("diff.NewEngine() failed: %v", err)
	}

	executor, err := batch.NewExecutor(batch.DefaultExecutorConfig(), client, enforcer, limiter, differ, snapshot.NewMemoryService(nil))
	if err != nil {
		t.Fatalf("NewExecutor() failed: %v", err)
	}

	tasks, err := taskstore.New(taskstore.DefaultConfig())
	if err != nil {
		t.Fatalf("taskstore.New() failed: %v", err)
	}
	t.Cleanup(tasks.Close)

	return &handlerFixture{executor: executor, enforcer: enforcer, limiter: limiter, tasks: tasks, client: client}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func submitBody(n int) map[string]any {
	muts := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		muts = append(muts, map[string]any{
			"documentId": "doc-1",
			"request": map[string]any{
				"updateCells": map[string]any{
					"range": map[string]any{
						"sheetId":          0,
						"startRowIndex":    0,
						"endRowIndex":      1,
						"startColumnIndex": 0,
						"endColumnIndex":   1,
					},
					"rows":   [][]string{{"x"}},
					"fields": "userEnteredValue",
				},
			},
		})
	}
	return map[string]any{
		"source":    map[string]any{"tool": "test", "action": "submit"},
		"mutations": muts,
	}
}

func TestSubmitMutationsWaitReturnsResults(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.POST("/mutations", HandleSubmitMutations(f.executor, f.tasks))

	body := submitBody(2)
	body["wait"] = true

	w := postJSON(t, router, "/mutations", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Results []batch.Result `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 batch result, got %d", len(resp.Results))
	}
	if resp.Results[0].Response == nil || resp.Results[0].Response.Succeeded != 2 {
		t.Errorf("unexpected result: %+v", resp.Results[0])
	}
}

func TestSubmitMutationsAsyncCreatesTask(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.POST("/mutations", HandleSubmitMutations(f.executor, f.tasks))

	w := postJSON(t, router, "/mutations", submitBody(1))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusAccepted, w.Body.String())
	}

	var resp SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.TaskID == "" {
		t.Fatal("expected a task ID")
	}

	// Poll the store until the background run finishes
	deadline := time.Now().Add(2 * time.Second)
	for {
		task, ok := f.tasks.Get(resp.TaskID)
		if ok && task.Status.Terminal() {
			if task.Status != taskstore.StatusSucceeded {
				t.Fatalf("task ended %s: %s", task.Status, task.Error)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmitMutationsPolicyViolationRejectsBeforeTask(t *testing.T) {
	f := newHandlerFixture(t)
	cfg := policy.DefaultConfig()
	cfg.MaxIntentsPerBatch = 1
	if err := f.enforcer.Update(cfg); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	router := gin.New()
	router.POST("/mutations", HandleSubmitMutations(f.executor, f.tasks))

	w := postJSON(t, router, "/mutations", submitBody(2))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusUnprocessableEntity, w.Body.String())
	}
	if f.client.callCount() != 0 {
		t.Error("policy rejection must not reach the remote")
	}
	if stats := f.tasks.Stats(); stats.Created != 0 {
		t.Error("rejected submission must not create a task")
	}
}

func TestSubmitMutationsRejectsMalformedRequest(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.POST("/mutations", HandleSubmitMutations(f.executor, f.tasks))

	body := map[string]any{
		"mutations": []map[string]any{{
			"documentId": "doc-1",
			"request":    map[string]any{}, // No union field populated
		}},
	}
	w := postJSON(t, router, "/mutations", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSubmitMutationsDryRun(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.POST("/mutations", HandleSubmitMutations(f.executor, f.tasks))

	body := submitBody(1)
	body["wait"] = true
	body["dryRun"] = true

	w := postJSON(t, router, "/mutations", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if f.client.callCount() != 0 {
		t.Error("dry run must not reach the remote")
	}
}

func TestTaskEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.GET("/tasks", HandleTasks(f.tasks))
	router.GET("/tasks/:id", HandleTaskByID(f.tasks))

	task := f.tasks.Create("doc-1")

	req := httptest.NewRequest("GET", "/tasks/"+task.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("task lookup status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest("GET", "/tasks/missing", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown task status = %d, want %d", w.Code, http.StatusNotFound)
	}

	req = httptest.NewRequest("GET", "/tasks", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("task list status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestPolicyEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.GET("/policy", HandleGetPolicy(f.enforcer))
	router.PUT("/policy", HandleUpdatePolicy(f.enforcer))

	req := httptest.NewRequest("GET", "/policy", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get policy status = %d", w.Code)
	}

	var cfg policy.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to parse policy: %v", err)
	}
	if cfg.MaxIntentsPerBatch != policy.DefaultConfig().MaxIntentsPerBatch {
		t.Errorf("unexpected policy: %+v", cfg)
	}

	// Valid update
	cfg.MaxIntentsPerBatch = 7
	data, _ := json.Marshal(cfg)
	putReq := httptest.NewRequest("PUT", "/policy", bytes.NewReader(data))
	putReq.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, putReq)
	if w.Code != http.StatusOK {
		t.Fatalf("put policy status = %d: %s", w.Code, w.Body.String())
	}
	if f.enforcer.Config().MaxIntentsPerBatch != 7 {
		t.Error("policy update did not take effect")
	}

	// Invalid update leaves the old policy in force
	cfg.MaxIntentsPerBatch = 0
	data, _ = json.Marshal(cfg)
	putReq = httptest.NewRequest("PUT", "/policy", bytes.NewReader(data))
	putReq.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, putReq)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid policy status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if f.enforcer.Config().MaxIntentsPerBatch != 7 {
		t.Error("invalid update must not replace the active policy")
	}
}

func TestLimiterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	router := gin.New()
	router.GET("/limiter", HandleLimiter(f.limiter))

	req := httptest.NewRequest("GET", "/limiter", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("limiter status = %d", w.Code)
	}

	var resp struct {
		Throttled bool                 `json:"throttled"`
		Buckets   []ratelimit.Snapshot `json:"buckets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse limiter state: %v", err)
	}
	if len(resp.Buckets) != 2 {
		t.Errorf("expected read and write buckets, got %d", len(resp.Buckets))
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := snapshot.NewMemoryService(nil)
	router := gin.New()
	router.GET("/snapshots", HandleSnapshots(svc))
	router.GET("/snapshots/:id", HandleSnapshotByID(svc))

	id, err := svc.Create(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/snapshots?document_id=doc-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("snapshot list status = %d", w.Code)
	}

	req = httptest.NewRequest("GET", fmt.Sprintf("/snapshots/%s", id), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("snapshot lookup status = %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/snapshots", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("snapshot list without document_id status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
