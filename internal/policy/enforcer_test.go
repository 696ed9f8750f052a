package policy

import (
	"os"
	"testing"

	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

const testDoc = "doc-policy-test"

func newTestEnforcer(t *testing.T, cfg Config) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	return e
}

func boundedRange() sheets.GridRange {
	return sheets.GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: 5, StartColumnIndex: 0, EndColumnIndex: 5}
}

func benignIntents(n int) []request.Wrapped {
	b := request.NewBuilder(request.Source{Tool: "test", Action: "update"})
	reqs := make([]request.Wrapped, 0, n)
	for i := 0; i < n; i++ {
		reqs = append(reqs, b.UpdateCells(testDoc, boundedRange(), [][]string{{"v"}}))
	}
	return reqs
}

// TestBatchSizeCeiling tests the exact boundary of max_intents_per_batch
func TestBatchSizeCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIntentsPerBatch = 100
	e := newTestEnforcer(t, cfg)

	if err := e.ValidateIntents(benignIntents(100)); err != nil {
		t.Errorf("ValidateIntents(100 intents) = %v, want nil at the exact limit", err)
	}

	err := e.ValidateIntents(benignIntents(101))
	if err == nil {
		t.Fatal("ValidateIntents(101 intents) = nil, want EFFECT_SCOPE_EXCEEDED")
	}
	v, ok := AsViolation(err)
	if !ok {
		t.Fatalf("error is not a *Violation: %v", err)
	}
	if v.Code != CodeEffectScopeExceeded {
		t.Errorf("Code = %q, want %q", v.Code, CodeEffectScopeExceeded)
	}
	if v.Actual != 101 || v.Limit != 100 {
		t.Errorf("Actual/Limit = %d/%d, want 101/100", v.Actual, v.Limit)
	}
}

// TestCellCeilingPerOperation tests per-operation effect scope enforcement
func TestCellCeilingPerOperation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCellsPerOperation = 100
	e := newTestEnforcer(t, cfg)

	b := request.NewBuilder(request.Source{Tool: "test", Action: "update"})
	big := sheets.GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: 50, StartColumnIndex: 0, EndColumnIndex: 50}

	err := e.ValidateIntents([]request.Wrapped{b.UpdateCells(testDoc, big, nil)})
	v, ok := AsViolation(err)
	if !ok {
		t.Fatalf("want *Violation, got %v", err)
	}
	if v.Code != CodeEffectScopeExceeded {
		t.Errorf("Code = %q, want %q", v.Code, CodeEffectScopeExceeded)
	}
	if v.Index != 0 {
		t.Errorf("Index = %d, want 0", v.Index)
	}
}

// TestMultipleDestructive tests the destructive-count gate and its toggle
func TestMultipleDestructive(t *testing.T) {
	b := request.NewBuilder(request.Source{Tool: "test", Action: "delete"})
	dim := sheets.DimensionRange{SheetID: 1, Dimension: sheets.DimensionRows, StartIndex: 0, EndIndex: 2}
	two := []request.Wrapped{b.DeleteDimension(testDoc, dim), b.DeleteDimension(testDoc, dim)}

	cfg := DefaultConfig()
	cfg.AllowBatchDestructive = false
	e := newTestEnforcer(t, cfg)

	err := e.ValidateIntents(two)
	v, ok := AsViolation(err)
	if !ok || v.Code != CodeMultipleDestructive {
		t.Fatalf("want MULTIPLE_DESTRUCTIVE violation, got %v", err)
	}

	cfg.AllowBatchDestructive = true
	e = newTestEnforcer(t, cfg)
	if err := e.ValidateIntents(two); err != nil {
		t.Errorf("ValidateIntents with allow_batch_destructive = %v, want nil", err)
	}
}

// TestExplicitRangeRequirement tests rejection of unbounded destructive targets
func TestExplicitRangeRequirement(t *testing.T) {
	b := request.NewBuilder(request.Source{Tool: "test", Action: "sort"})
	unbounded := sheets.GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: sheets.Unbounded, StartColumnIndex: 0, EndColumnIndex: 3}

	cfg := DefaultConfig()
	cfg.MaxCellsPerOperation = 1000000 // Keep the cell ceiling out of the way
	cfg.RequireExplicitRangeForDelete = true
	e := newTestEnforcer(t, cfg)

	err := e.ValidateIntents([]request.Wrapped{b.SortRange(testDoc, unbounded, nil)})
	v, ok := AsViolation(err)
	if !ok || v.Code != CodeMissingExplicitRange {
		t.Fatalf("want MISSING_EXPLICIT_RANGE violation, got %v", err)
	}

	// A bounded destructive target passes
	if err := e.ValidateIntents([]request.Wrapped{b.SortRange(testDoc, boundedRange(), nil)}); err != nil {
		t.Errorf("bounded destructive target rejected: %v", err)
	}

	// With the requirement off, unbounded destructive targets pass
	cfg.RequireExplicitRangeForDelete = false
	e = newTestEnforcer(t, cfg)
	if err := e.ValidateIntents([]request.Wrapped{b.SortRange(testDoc, unbounded, nil)}); err != nil {
		t.Errorf("requirement disabled but still rejected: %v", err)
	}
}

// TestDimensionDeletionBounds tests row and column deletion ceilings
func TestDimensionDeletionBounds(t *testing.T) {
	b := request.NewBuilder(request.Source{Tool: "test", Action: "delete"})

	cfg := DefaultConfig()
	cfg.MaxRowsPerDelete = 10
	cfg.MaxColumnsPerDelete = 3
	e := newTestEnforcer(t, cfg)

	tests := []struct {
		name     string
		rng      sheets.DimensionRange
		wantCode ViolationCode
	}{
		{
			name: "rows at limit",
			rng:  sheets.DimensionRange{SheetID: 1, Dimension: sheets.DimensionRows, StartIndex: 0, EndIndex: 10},
		},
		{
			name:     "rows over limit",
			rng:      sheets.DimensionRange{SheetID: 1, Dimension: sheets.DimensionRows, StartIndex: 0, EndIndex: 11},
			wantCode: CodeDimensionLimitExceeded,
		},
		{
			name: "columns at limit",
			rng:  sheets.DimensionRange{SheetID: 1, Dimension: sheets.DimensionColumns, StartIndex: 0, EndIndex: 3},
		},
		{
			name:     "columns over limit",
			rng:      sheets.DimensionRange{SheetID: 1, Dimension: sheets.DimensionColumns, StartIndex: 0, EndIndex: 4},
			wantCode: CodeDimensionLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateIntents([]request.Wrapped{b.DeleteDimension(testDoc, tt.rng)})
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateIntents() = %v, want nil", err)
				}
				return
			}
			v, ok := AsViolation(err)
			if !ok || v.Code != tt.wantCode {
				t.Errorf("ValidateIntents() = %v, want violation %q", err, tt.wantCode)
			}
		})
	}
}

// TestUpdateReplacesConfig tests the explicit policy update path
func TestUpdateReplacesConfig(t *testing.T) {
	e := newTestEnforcer(t, DefaultConfig())

	cfg := DefaultConfig()
	cfg.MaxIntentsPerBatch = 2
	if err := e.Update(cfg); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := e.ValidateIntents(benignIntents(3)); err == nil {
		t.Error("ValidateIntents(3) = nil after lowering limit to 2, want violation")
	}

	// Invalid updates are rejected and leave the active config untouched
	bad := DefaultConfig()
	bad.MaxIntentsPerBatch = 0
	if err := e.Update(bad); err == nil {
		t.Error("Update with zero limit = nil, want error")
	}
	if got := e.Config().MaxIntentsPerBatch; got != 2 {
		t.Errorf("MaxIntentsPerBatch = %d after failed update, want 2", got)
	}
}

// TestLoadConfigDefaults tests YAML loading with partial overrides
func TestLoadConfigDefaults(t *testing.T) {
	path := t.TempDir() + "/policy.yaml"
	content := "max_intents_per_batch: 25\nallow_batch_destructive: true\n"
	if err := writeFile(path, content); err != nil {
		t.Fatalf("write temp policy: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxIntentsPerBatch != 25 {
		t.Errorf("MaxIntentsPerBatch = %d, want 25", cfg.MaxIntentsPerBatch)
	}
	if !cfg.AllowBatchDestructive {
		t.Error("AllowBatchDestructive = false, want true")
	}
	// Untouched keys keep defaults
	if cfg.MaxRowsPerDelete != DefaultConfig().MaxRowsPerDelete {
		t.Errorf("MaxRowsPerDelete = %d, want default %d", cfg.MaxRowsPerDelete, DefaultConfig().MaxRowsPerDelete)
	}

	// Unknown keys are rejected
	if err := writeFile(path, "max_intents: 5\n"); err != nil {
		t.Fatalf("write temp policy: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig with unknown key = nil, want error")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
