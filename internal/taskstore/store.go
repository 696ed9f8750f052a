// Package taskstore tracks submitted mutation tasks through their lifecycle
// so API clients can poll for outcomes after the submit call returns.
//
// LIFECYCLE:
// A task is created pending when a mutation batch is accepted, moves to
// running when execution starts, and lands in succeeded or failed with its
// result attached. Terminal tasks are retained for a configurable TTL and
// then swept, so the store stays bounded without an external database.
//
// Thread-safe: a single RWMutex guards the map, with atomic counters for
// metrics so the stats endpoint never contends with task updates.
package taskstore

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/utils"
	"github.com/gridgate-dev/gridgate/internal/validate"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Task is one tracked mutation submission.
type Task struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Error      string    `json:"error,omitempty"`

	// Result carries the execution outcome for terminal tasks. Stored as an
	// opaque value so the store does not depend on executor types.
	Result any `json:"result,omitempty"`
}

// Config controls retention and sweep cadence.
type Config struct {
	TTL           time.Duration `json:"ttl"`            // Retention for terminal tasks
	SweepInterval time.Duration `json:"sweep_interval"` // How often expired tasks are removed
}

// DefaultConfig retains terminal tasks for an hour and sweeps every minute.
func DefaultConfig() Config {
	return Config{
		TTL:           time.Hour,
		SweepInterval: time.Minute,
	}
}

// Validate rejects non-positive durations.
func (c Config) Validate() error {
	if err := validate.ValidatePositiveTimeout(c.TTL, "ttl"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.SweepInterval, "sweep_interval"); err != nil {
		return err
	}
	return nil
}

// Stats is a point-in-time view of store activity.
type Stats struct {
	Tasks     int   `json:"tasks"`
	Created   int64 `json:"created"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Swept     int64 `json:"swept"`
}

// Store is the in-memory task registry.
type Store struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	cfg    Config
	stopCh chan struct{}
	once   sync.Once

	// Metrics (atomic for lock-free reads)
	created   int64
	completed int64
	failed    int64
	swept     int64

	// Injectable clock for expiry tests
	now func() time.Time
}

// New creates a store and starts the background sweeper.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		tasks:  make(map[string]*Task),
		cfg:    cfg,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	go s.sweepLoop()
	return s, nil
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stopCh) })
}

// Create registers a new pending task and returns it.
func (s *Store) Create(documentID string) *Task {
	now := s.now()
	id, _ := utils.GenerateID()
	task := &Task{
		ID:         id,
		DocumentID: documentID,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	atomic.AddInt64(&s.created, 1)
	logging.Debug("Created task %s for document %s",
		logging.FormatTaskID(task.ID), logging.FormatDocumentID(documentID))
	return copyTask(task)
}

// Get returns a task by ID. Terminal tasks past their TTL are treated as
// missing even if the sweeper has not removed them yet.
func (s *Store) Get(id string) (*Task, bool) {
	s.mu.RLock()
	task, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(task) {
		return nil, false
	}
	return copyTask(task), true
}

// MarkRunning transitions a pending task to running.
func (s *Store) MarkRunning(id string) error {
	return s.transition(id, StatusRunning, "", nil)
}

// Complete transitions a task to succeeded with its result attached.
func (s *Store) Complete(id string, result any) error {
	if err := s.transition(id, StatusSucceeded, "", result); err != nil {
		return err
	}
	atomic.AddInt64(&s.completed, 1)
	return nil
}

// Fail transitions a task to failed with the error message attached. A
// partial result may accompany the failure.
func (s *Store) Fail(id string, errMsg string, result any) error {
	if err := s.transition(id, StatusFailed, errMsg, result); err != nil {
		return err
	}
	atomic.AddInt64(&s.failed, 1)
	return nil
}

func (s *Store) transition(id string, status Status, errMsg string, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	if task.Status.Terminal() {
		return fmt.Errorf("task %s already %s", id, task.Status)
	}

	task.Status = status
	task.UpdatedAt = s.now()
	task.Error = errMsg
	if result != nil {
		task.Result = result
	}
	return nil
}

// List returns all live tasks, newest first not guaranteed.
func (s *Store) List() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if !s.expired(task) {
			out = append(out, copyTask(task))
		}
	}
	return out
}

// Stats returns store metrics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.tasks)
	s.mu.RUnlock()
	return Stats{
		Tasks:     n,
		Created:   atomic.LoadInt64(&s.created),
		Completed: atomic.LoadInt64(&s.completed),
		Failed:    atomic.LoadInt64(&s.failed),
		Swept:     atomic.LoadInt64(&s.swept),
	}
}

// expired reports whether a terminal task has outlived its TTL. Pending and
// running tasks never expire.
func (s *Store) expired(task *Task) bool {
	if !task.Status.Terminal() {
		return false
	}
	return s.now().Sub(task.UpdatedAt) > s.cfg.TTL
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes expired terminal tasks.
func (s *Store) sweep() {
	s.mu.Lock()
	var removed int64
	for id, task := range s.tasks {
		if s.expired(task) {
			delete(s.tasks, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		atomic.AddInt64(&s.swept, removed)
		logging.Debug("Swept %d expired task(s)", removed)
	}
}

// copyTask returns a shallow copy so callers cannot mutate stored state.
func copyTask(t *Task) *Task {
	c := *t
	return &c
}
