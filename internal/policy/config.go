// Package policy provides the safety gate that validates pending mutations
// against configured limits before any network call is made.
//
// ENFORCEMENT MODEL:
// Policy runs synchronously at the front of batch execution. Every failure is
// a caller-scope error: the batch was never sent, nothing changed remotely,
// and retrying without changing the request is pointless. The gate checks
// batch size, destructive-operation counts, per-operation effect scope, and
// explicit-range requirements for destructive operations, with a dedicated
// bound on row/column deletion counts.
//
// CONFIGURATION:
// Limits arrive from a YAML policy file or daemon flags, are validated once,
// and are immutable per enforcer except through the explicit UpdatePolicy
// path exposed by the batch compiler.
package policy

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gridgate-dev/gridgate/internal/validate"
	"gopkg.in/yaml.v3"
)

// Config holds the safety limits applied to every batch before execution.
// All ceilings are positive; disabling a behavior uses the boolean switches,
// never a zero limit.
type Config struct {
	// MaxCellsPerOperation caps the estimated effect scope of any single
	// operation.
	MaxCellsPerOperation int64 `yaml:"max_cells_per_operation" json:"max_cells_per_operation" validate:"required,min=1"`

	// MaxRowsPerDelete and MaxColumnsPerDelete bound dimension deletions.
	MaxRowsPerDelete    int64 `yaml:"max_rows_per_delete" json:"max_rows_per_delete" validate:"required,min=1"`
	MaxColumnsPerDelete int64 `yaml:"max_columns_per_delete" json:"max_columns_per_delete" validate:"required,min=1"`

	// RequireExplicitRangeForDelete rejects destructive operations whose
	// target range is unbounded or absent.
	RequireExplicitRangeForDelete bool `yaml:"require_explicit_range_for_delete" json:"require_explicit_range_for_delete"`

	// AllowBatchDestructive permits more than one destructive operation in
	// a single batch.
	AllowBatchDestructive bool `yaml:"allow_batch_destructive" json:"allow_batch_destructive"`

	// MaxIntentsPerBatch caps the number of operations validated together.
	MaxIntentsPerBatch int `yaml:"max_intents_per_batch" json:"max_intents_per_batch" validate:"required,min=1"`
}

// DefaultConfig returns production-ready limits: generous enough for routine
// bulk edits, tight enough that a runaway caller cannot wipe a document in
// one call.
func DefaultConfig() Config {
	return Config{
		MaxCellsPerOperation:          50000,
		MaxRowsPerDelete:              500,
		MaxColumnsPerDelete:           26,
		RequireExplicitRangeForDelete: true,
		AllowBatchDestructive:         false,
		MaxIntentsPerBatch:            100,
	}
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid policy config: %w", err)
	}
	return nil
}

// LoadConfig reads a policy configuration from a YAML file and validates it.
// Unknown keys are rejected so a typo in a limit name cannot silently leave
// the default in place. Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
