package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock drives bucket time deterministically: sleeps advance the clock
// instead of blocking, and record their durations for assertions.
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

// newTestLimiter wires a limiter to a fake clock before any bucket consumer
// touches the real one.
func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	for _, b := range l.buckets {
		b.mu.Lock()
		b.now = clock.now
		b.sleep = clock.sleep
		b.lastRefill = clock.now()
		b.mu.Unlock()
	}
	t.Cleanup(l.Close)
	return l, clock
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	bad := DefaultConfig()
	bad.WriteRate = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero write rate")
	}
}

func TestAcquireWithinBurstDoesNotWait(t *testing.T) {
	l, clock := newTestLimiter(t, Config{ReadRate: 1, ReadBurst: 10, WriteRate: 1, WriteBurst: 10})

	for i := 0; i < 10; i++ {
		if err := l.Acquire(context.Background(), ClassWrite, 1); err != nil {
			t.Fatalf("acquire %d failed: %v", i, err)
		}
	}
	if sleeps := clock.recorded(); len(sleeps) != 0 {
		t.Errorf("expected no waits inside burst, got %v", sleeps)
	}
}

func TestAcquireWaitsExactDeficit(t *testing.T) {
	l, clock := newTestLimiter(t, Config{ReadRate: 1, ReadBurst: 10, WriteRate: 2, WriteBurst: 4})

	// Drain the burst, then the next acquire of 3 tokens at 2 tokens/sec
	// must wait exactly 1.5s.
	if err := l.Acquire(context.Background(), ClassWrite, 4); err != nil {
		t.Fatalf("burst acquire failed: %v", err)
	}
	if err := l.Acquire(context.Background(), ClassWrite, 3); err != nil {
		t.Fatalf("deficit acquire failed: %v", err)
	}

	sleeps := clock.recorded()
	if len(sleeps) != 1 {
		t.Fatalf("expected exactly one wait, got %v", sleeps)
	}
	if got, want := sleeps[0], 1500*time.Millisecond; got != want {
		t.Errorf("wait = %v, want %v", got, want)
	}
}

func TestTokensNeverExceedCapacity(t *testing.T) {
	l, clock := newTestLimiter(t, Config{ReadRate: 100, ReadBurst: 5, WriteRate: 100, WriteBurst: 5})

	// A long idle period must not accumulate tokens past the burst.
	clock.advance(time.Hour)

	snaps := l.Snapshots()
	for _, s := range snaps {
		if s.Tokens > s.Capacity {
			t.Errorf("%s bucket tokens %.2f exceed capacity %.2f", s.Class, s.Tokens, s.Capacity)
		}
		if s.Tokens < 0 {
			t.Errorf("%s bucket tokens negative: %.2f", s.Class, s.Tokens)
		}
	}
}

func TestThrottleHalvesRateAndShrinksCapacity(t *testing.T) {
	l, _ := newTestLimiter(t, Config{ReadRate: 4, ReadBurst: 20, WriteRate: 4, WriteBurst: 20})

	l.Throttle(time.Minute)

	if !l.IsThrottled() {
		t.Fatal("limiter should report throttled inside the window")
	}
	for _, s := range l.Snapshots() {
		if s.RefillRate != 2 {
			t.Errorf("%s refill rate = %v, want half of base (2)", s.Class, s.RefillRate)
		}
		if s.Capacity != 4 {
			t.Errorf("%s capacity = %v, want base rate (4)", s.Class, s.Capacity)
		}
		if s.Tokens > s.Capacity {
			t.Errorf("%s tokens %.2f not clamped to shrunken capacity %.2f", s.Class, s.Tokens, s.Capacity)
		}
	}
}

func TestThrottleAutoRestores(t *testing.T) {
	l, clock := newTestLimiter(t, Config{ReadRate: 4, ReadBurst: 20, WriteRate: 4, WriteBurst: 20})

	l.Throttle(time.Minute)
	clock.advance(time.Minute + time.Second)

	if l.IsThrottled() {
		t.Error("throttle window elapsed but limiter still reports throttled")
	}

	// The next acquire runs restoration inside the consumer
	if err := l.Acquire(context.Background(), ClassWrite, 1); err != nil {
		t.Fatalf("acquire after window failed: %v", err)
	}
	for _, s := range l.Snapshots() {
		if s.RefillRate != 4 || s.Capacity != 20 {
			t.Errorf("%s not restored: rate=%v capacity=%v", s.Class, s.RefillRate, s.Capacity)
		}
	}
}

func TestRestoreNormalLimits(t *testing.T) {
	l, _ := newTestLimiter(t, Config{ReadRate: 4, ReadBurst: 20, WriteRate: 4, WriteBurst: 20})

	l.Throttle(time.Hour)
	l.RestoreNormalLimits()

	if l.IsThrottled() {
		t.Error("explicit restore should clear the throttle window")
	}
	for _, s := range l.Snapshots() {
		if s.RefillRate != 4 || s.Capacity != 20 {
			t.Errorf("%s not restored: rate=%v capacity=%v", s.Class, s.RefillRate, s.Capacity)
		}
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	l, _ := newTestLimiter(t, Config{ReadRate: 1, ReadBurst: 1, WriteRate: 1, WriteBurst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Acquire(ctx, ClassRead, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestAcquireUnknownClass(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig())
	if err := l.Acquire(context.Background(), Class("bulk"), 1); err == nil {
		t.Error("expected error for unknown class")
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	l, clock := newTestLimiter(t, Config{ReadRate: 1, ReadBurst: 2, WriteRate: 1, WriteBurst: 10})

	// Exhaust the read bucket; writes must remain unaffected.
	if err := l.Acquire(context.Background(), ClassRead, 2); err != nil {
		t.Fatalf("read acquire failed: %v", err)
	}
	if err := l.Acquire(context.Background(), ClassWrite, 5); err != nil {
		t.Fatalf("write acquire failed: %v", err)
	}
	if sleeps := clock.recorded(); len(sleeps) != 0 {
		t.Errorf("write bucket waited despite full burst: %v", sleeps)
	}
}
