// Package ratelimit provides the token-bucket gate that paces calls to the
// remote document API, with adaptive throttling after remote quota signals.
//
// BUCKET MODEL:
// One bucket per call class (read, write). Tokens refill continuously in
// proportion to elapsed wall-clock time, capped at the bucket capacity. An
// acquire that finds insufficient tokens computes the exact wait for the
// deficit, sleeps once, refills again, and deducts. Waits are never surfaced
// as errors; the limiter delays instead of failing.
//
// SERIALIZED ACCOUNTING:
// All acquire calls for one bucket are serialized through a single-consumer
// goroutine fed by a FIFO channel, so the floating-point refill/consume
// arithmetic is never raced and callers are served strictly in arrival
// order. This queue is the only mutual-exclusion primitive the pipeline
// needs beyond the bucket's own state lock.
//
// ADAPTIVE THROTTLING:
// When the remote API signals quota exhaustion the executor calls Throttle,
// which halves the refill rate and shrinks capacity to the base rate for a
// window. Normal limits restore automatically once the window elapses (or
// explicitly via RestoreNormalLimits).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridgate-dev/gridgate/internal/logging"
)

// Class selects which token bucket an acquire draws from.
type Class string

const (
	// ClassRead covers state fetches: diff captures and document reads.
	ClassRead Class = "read"

	// ClassWrite covers mutating batchUpdate calls.
	ClassWrite Class = "write"
)

// Config holds per-class bucket parameters. Rates are tokens per second;
// bursts are bucket capacities.
type Config struct {
	ReadRate   float64 `json:"read_rate"`
	ReadBurst  float64 `json:"read_burst"`
	WriteRate  float64 `json:"write_rate"`
	WriteBurst float64 `json:"write_burst"`
}

// DefaultConfig mirrors the remote API's published per-minute quotas with
// modest headroom: 60 reads and 60 writes per minute, bursts of 10.
func DefaultConfig() Config {
	return Config{
		ReadRate:   1.0,
		ReadBurst:  10,
		WriteRate:  1.0,
		WriteBurst: 10,
	}
}

// Validate rejects non-positive rates or bursts.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"read_rate":   c.ReadRate,
		"read_burst":  c.ReadBurst,
		"write_rate":  c.WriteRate,
		"write_burst": c.WriteBurst,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	return nil
}

// Snapshot is a point-in-time view of one bucket for observability.
type Snapshot struct {
	Class          Class     `json:"class"`
	Tokens         float64   `json:"tokens"`
	Capacity       float64   `json:"capacity"`
	RefillRate     float64   `json:"refill_rate"`
	Throttled      bool      `json:"throttled"`
	ThrottledUntil time.Time `json:"throttled_until,omitempty"`
}

// acquireRequest is one queued acquire awaiting its turn at the bucket.
type acquireRequest struct {
	ctx   context.Context
	count float64
	done  chan error
}

// bucket holds one call class's token state plus the FIFO queue that
// serializes access to it. Invariant at every observation point:
// 0 <= tokens <= capacity.
type bucket struct {
	class    Class
	requests chan acquireRequest

	mu             sync.Mutex
	tokens         float64
	lastRefill     time.Time
	capacity       float64
	refillRate     float64
	baseCapacity   float64
	baseRate       float64
	throttledUntil time.Time

	// Injectable clock for deterministic tests
	now   func() time.Time
	sleep func(time.Duration)
}

// Limiter gates read and write call classes with independent buckets.
type Limiter struct {
	buckets map[Class]*bucket
	stopped chan struct{}
	once    sync.Once
}

// New creates a limiter from a validated configuration and starts one
// consumer goroutine per bucket.
func New(cfg Config) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		buckets: map[Class]*bucket{
			ClassRead:  newBucket(ClassRead, cfg.ReadRate, cfg.ReadBurst),
			ClassWrite: newBucket(ClassWrite, cfg.WriteRate, cfg.WriteBurst),
		},
		stopped: make(chan struct{}),
	}
	for _, b := range l.buckets {
		go b.run(l.stopped)
	}
	return l, nil
}

func newBucket(class Class, rate, burst float64) *bucket {
	return &bucket{
		class:        class,
		requests:     make(chan acquireRequest, 64),
		tokens:       burst, // Start full so the first burst is not delayed
		lastRefill:   time.Now(),
		capacity:     burst,
		refillRate:   rate,
		baseCapacity: burst,
		baseRate:     rate,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Close stops the bucket consumers. Pending acquires receive an error.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stopped) })
}

// Acquire blocks until count tokens are available in the class bucket, or
// the context is cancelled. Token shortage is handled by waiting, never by
// returning an error; the only error paths are cancellation and shutdown.
func (l *Limiter) Acquire(ctx context.Context, class Class, count int) error {
	b, ok := l.buckets[class]
	if !ok {
		return fmt.Errorf("unknown rate limit class %q", class)
	}
	if count <= 0 {
		return nil
	}

	req := acquireRequest{ctx: ctx, count: float64(count), done: make(chan error, 1)}

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return fmt.Errorf("rate limiter closed")
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		// The consumer will still deduct for this request; accepting the
		// overshoot is simpler than unwinding a grant already in flight
		return ctx.Err()
	}
}

// Throttle halves the refill rate and shrinks capacity to the base rate for
// the given window, simulating degraded quota after a remote rate-limit
// signal. Normal limits return automatically once the window elapses.
func (l *Limiter) Throttle(window time.Duration) {
	for _, b := range l.buckets {
		b.throttle(window)
	}
	logging.Warn("Rate limiter throttled for %v after remote quota signal", window)
}

// RestoreNormalLimits reverts all buckets to their base rates immediately.
func (l *Limiter) RestoreNormalLimits() {
	for _, b := range l.buckets {
		b.restore()
	}
	logging.Info("Rate limiter restored to normal limits")
}

// IsThrottled reports whether any bucket is inside a throttle window. Pure
// time check; no token state is touched.
func (l *Limiter) IsThrottled() bool {
	for _, b := range l.buckets {
		if b.isThrottled() {
			return true
		}
	}
	return false
}

// Snapshots returns per-bucket state for the observability endpoint.
func (l *Limiter) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(l.buckets))
	for _, class := range []Class{ClassRead, ClassWrite} {
		b := l.buckets[class]
		b.mu.Lock()
		b.refillLocked()
		out = append(out, Snapshot{
			Class:          b.class,
			Tokens:         b.tokens,
			Capacity:       b.capacity,
			RefillRate:     b.refillRate,
			Throttled:      b.now().Before(b.throttledUntil),
			ThrottledUntil: b.throttledUntil,
		})
		b.mu.Unlock()
	}
	return out
}

// run is the bucket's single consumer: it serves queued acquires strictly in
// FIFO order, performing all token arithmetic from this one goroutine.
func (b *bucket) run(stopped <-chan struct{}) {
	for {
		select {
		case <-stopped:
			// Drain waiters so nothing blocks forever on shutdown
			for {
				select {
				case req := <-b.requests:
					req.done <- fmt.Errorf("rate limiter closed")
				default:
					return
				}
			}
		case req := <-b.requests:
			b.serve(req)
		}
	}
}

// serve grants one acquire, sleeping for the exact token deficit when the
// bucket is short. Uses at most one sleep per request: after the computed
// wait the refill is guaranteed to cover the deficit.
func (b *bucket) serve(req acquireRequest) {
	if req.ctx.Err() != nil {
		req.done <- req.ctx.Err()
		return
	}

	b.mu.Lock()
	b.maybeAutoRestoreLocked()
	b.refillLocked()

	if b.tokens < req.count {
		needed := req.count - b.tokens
		wait := time.Duration(needed / b.refillRate * float64(time.Second))
		b.mu.Unlock()

		logging.Debug("Rate limiter %s bucket short %.2f tokens, waiting %v", b.class, needed, wait)
		b.sleep(wait)

		b.mu.Lock()
		b.refillLocked()
	}

	b.tokens -= req.count
	if b.tokens < 0 {
		// Guard the invariant against float drift from the sleep math
		b.tokens = 0
	}
	b.mu.Unlock()

	req.done <- nil
}

// refillLocked adds tokens proportional to elapsed time since the last
// refill, capped at capacity. Caller holds b.mu.
func (b *bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.lastRefill = now
}

// maybeAutoRestoreLocked reverts to base limits when the throttle window has
// elapsed. Caller holds b.mu.
func (b *bucket) maybeAutoRestoreLocked() {
	if !b.throttledUntil.IsZero() && !b.now().Before(b.throttledUntil) {
		b.restoreLocked()
	}
}

func (b *bucket) throttle(window time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	b.throttledUntil = b.now().Add(window)
	b.refillRate = b.baseRate / 2
	b.capacity = b.baseRate // Shrink burst headroom to one second of base quota
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

func (b *bucket) restore() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restoreLocked()
}

// restoreLocked reverts rate and capacity to baseline. Caller holds b.mu.
func (b *bucket) restoreLocked() {
	b.refillRate = b.baseRate
	b.capacity = b.baseCapacity
	b.throttledUntil = time.Time{}
}

func (b *bucket) isThrottled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now().Before(b.throttledUntil)
}
