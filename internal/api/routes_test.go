package api

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/batch"
	"github.com/gridgate-dev/gridgate/internal/diff"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/ratelimit"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/snapshot"
	"github.com/gridgate-dev/gridgate/internal/taskstore"
)

type noopClient struct{}

func (noopClient) BatchUpdate(ctx context.Context, documentID string, req *sheets.BatchUpdateRequest) (*sheets.BatchUpdateResponse, error) {
	return &sheets.BatchUpdateResponse{SpreadsheetID: documentID}, nil
}

func (noopClient) GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error) {
	return &sheets.DocumentData{SpreadsheetID: documentID}, nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()

	enforcer, err := policy.NewEnforcer(policy.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEnforcer() failed: %v", err)
	}
	limiter, err := ratelimit.New(ratelimit.DefaultConfig())
	if err != nil {
		t.Fatalf("ratelimit.New() failed: %v", err)
	}
	t.Cleanup(limiter.Close)

	differ, err := diff.NewEngine(diff.DefaultConfig(), noopClient{})
	if err != nil {
		t.Fatalf("diff.NewEngine() failed: %v", err)
	}
	executor, err := batch.NewExecutor(batch.DefaultExecutorConfig(), noopClient{}, enforcer, limiter, differ, nil)
	if err != nil {
		t.Fatalf("NewExecutor() failed: %v", err)
	}
	tasks, err := taskstore.New(taskstore.DefaultConfig())
	if err != nil {
		t.Fatalf("taskstore.New() failed: %v", err)
	}
	t.Cleanup(tasks.Close)

	cfg := DefaultConfig()
	cfg.Executor = executor
	cfg.Enforcer = enforcer
	cfg.Limiter = limiter
	cfg.Tasks = tasks
	cfg.Snapshots = snapshot.NewMemoryService(nil)
	return cfg
}

// TestSetupRoutes tests that routes are properly registered by checking the route tree
func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := NewServer(testConfig(t))
	router := gin.New()
	server.setupRoutes(router)

	expectedRoutes := map[string]string{
		"GET /api/v1/health":        "health endpoint",
		"POST /api/v1/mutations":    "mutation submission endpoint",
		"GET /api/v1/tasks":         "task list endpoint",
		"GET /api/v1/tasks/:id":     "task by ID endpoint",
		"GET /api/v1/policy":        "policy inspection endpoint",
		"PUT /api/v1/policy":        "policy update endpoint",
		"GET /api/v1/limiter":       "limiter state endpoint",
		"GET /api/v1/snapshots":     "snapshot list endpoint",
		"GET /api/v1/snapshots/:id": "snapshot by ID endpoint",
	}

	registeredRoutes := make(map[string]bool)
	for _, route := range router.Routes() {
		registeredRoutes[route.Method+" "+route.Path] = true
	}

	for expectedRoute, description := range expectedRoutes {
		if !registeredRoutes[expectedRoute] {
			t.Errorf("missing route %s (%s)", expectedRoute, description)
		}
	}
}
