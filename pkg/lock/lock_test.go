package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLock(t *testing.T) {
	a := 0
	lock := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := lock.LockRetry(context.Background(), DefaultBackoff); err != nil {
					t.Errorf("lock failed: %v", err)
					return
				}
				a++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	if a != 800 {
		t.Errorf("lock test failed because a != 800, a = %v", a)
	}
}

func TestLockBusy(t *testing.T) {
	lock := New()
	if !lock.TryLock() {
		t.Fatalf("fresh lock should be free")
	}
	defer lock.Unlock()

	err := lock.LockRetry(context.Background(), Backoff{Initial: time.Microsecond, Attempts: 3})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestLockCancel(t *testing.T) {
	lock := New()
	lock.TryLock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := lock.LockRetry(ctx, DefaultBackoff); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestLockWaitsForRelease(t *testing.T) {
	lock := New()
	lock.TryLock()
	go func() {
		time.Sleep(5 * time.Millisecond)
		lock.Unlock()
	}()
	b := Backoff{Initial: time.Millisecond, Max: 4 * time.Millisecond, Factor: 2}
	if err := lock.LockRetry(context.Background(), b); err != nil {
		t.Errorf("lock failed: %v", err)
	}
	lock.Unlock()
}

func TestBackoffNext(t *testing.T) {
	b := Backoff{Initial: time.Millisecond, Max: 5 * time.Millisecond, Factor: 2}
	var d time.Duration
	var got []time.Duration
	for i := 0; i < 5; i++ {
		d = b.next(d)
		got = append(got, d)
	}
	want := []time.Duration{1, 2, 4, 5, 5}
	for i := range want {
		if got[i] != want[i]*time.Millisecond {
			t.Errorf("step %d = %v, want %vms", i, got[i], want[i])
		}
	}
}
