package os

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("file is locked by another process")

// Flock is an advisory lock file shared between processes.
type Flock struct {
	f *flock.Flock
}

func NewFileLock(path string) (*Flock, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "camreader.lock")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}
	return &Flock{f: flock.New(path)}, nil
}

func (f *Flock) Path() string { return f.f.Path() }
func (f *Flock) Locked() bool { return f.f.Locked() }
func (f *Flock) Lock() error  { return f.f.Lock() }

// TryLock takes the lock, polling every retry until ctx is done.
// ErrLocked is returned if the lock could not be taken.
func (f *Flock) TryLock(ctx context.Context, retry time.Duration) error {
	ok, err := f.f.TryLockContext(ctx, retry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (f *Flock) Unlock() error { return f.f.Unlock() }
