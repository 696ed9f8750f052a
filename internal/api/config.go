// Package api provides the HTTP API server for the gridgate daemon.
// This server accepts mutation submissions, exposes task status for polling,
// and surfaces policy and rate limiter state via REST endpoints.
package api

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/batch"
	"github.com/gridgate-dev/gridgate/internal/policy"
	"github.com/gridgate-dev/gridgate/internal/ratelimit"
	"github.com/gridgate-dev/gridgate/internal/snapshot"
	"github.com/gridgate-dev/gridgate/internal/taskstore"
	"github.com/gridgate-dev/gridgate/internal/validate"
)

const (
	// DefaultAPIPort is the default port for the HTTP API server
	DefaultAPIPort = 8488
)

// Config holds everything the API server needs: network binding plus the
// pipeline components the handlers delegate to. Serves as a dependency
// injection container so the server stays loosely coupled from construction
// order and tests can substitute fakes.
type Config struct {
	BindAddr  string                  // HTTP server bind address (e.g., "0.0.0.0")
	BindPort  int                     // HTTP server bind port
	Executor  *batch.Executor         // Mutation execution pipeline
	Enforcer  *policy.Enforcer        // Policy gate, also served via GET/PUT /policy
	Limiter   *ratelimit.Limiter      // Rate limiter, observed via GET /limiter
	Tasks     *taskstore.Store        // Task registry for async submission polling
	Snapshots *snapshot.MemoryService // Snapshot lookup; nil disables the endpoints
}

// DefaultConfig creates a Config with loopback binding for safer local
// development. The daemon overrides the address for external access.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:  "127.0.0.1",
		BindPort:  DefaultAPIPort,
		Executor:  nil, // Must be set by caller
		Enforcer:  nil, // Must be set by caller
		Limiter:   nil, // Must be set by caller
		Tasks:     nil, // Must be set by caller
		Snapshots: nil, // Optional
	}
}

// Validate checks network settings and required pipeline components.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.Executor == nil {
		return fmt.Errorf("executor cannot be nil")
	}
	if c.Enforcer == nil {
		return fmt.Errorf("policy enforcer cannot be nil")
	}
	if c.Limiter == nil {
		return fmt.Errorf("rate limiter cannot be nil")
	}
	if c.Tasks == nil {
		return fmt.Errorf("task store cannot be nil")
	}
	return nil
}
