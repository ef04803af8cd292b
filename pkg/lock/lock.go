package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when a lock could not be taken within its attempt budget.
var ErrBusy = errors.New("lock: busy")

// Backoff describes how long to sleep between two failed lock attempts.
// Each wait is multiplied by Factor up to Max. Attempts == 0 means retry
// until the context is done.
type Backoff struct {
	Initial  time.Duration
	Max      time.Duration
	Factor   float64
	Attempts int
}

// DefaultBackoff polls every millisecond and never gives up.
var DefaultBackoff = Backoff{Initial: time.Millisecond, Max: time.Millisecond, Factor: 1}

func (b Backoff) next(d time.Duration) time.Duration {
	if d <= 0 {
		d = b.Initial
	} else if b.Factor > 1 {
		d = time.Duration(float64(d) * b.Factor)
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

// Mutex is a mutex that is taken by polling instead of parking the caller
// in the runtime's wait queue. It is not fair.
type Mutex struct {
	mu sync.Mutex
}

func New() *Mutex { return &Mutex{} }

func (m *Mutex) TryLock() bool { return m.mu.TryLock() }
func (m *Mutex) Unlock()       { m.mu.Unlock() }

// LockRetry tries to take the lock, sleeping between the attempts
// as b says.
func (m *Mutex) LockRetry(ctx context.Context, b Backoff) error {
	var wait time.Duration
	for attempt := 1; ; attempt++ {
		if m.mu.TryLock() {
			return nil
		}
		if b.Attempts > 0 && attempt >= b.Attempts {
			return ErrBusy
		}
		wait = b.next(wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
