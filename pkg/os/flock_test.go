package os

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "video5.lock")

	a, err := NewFileLock(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileLock(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.TryLock(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if !a.Locked() {
		t.Errorf("lock should be held")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := b.TryLock(ctx, time.Millisecond); err == nil {
		t.Errorf("second lock should fail while the first one is held")
	}

	if err := a.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := b.TryLock(context.Background(), time.Millisecond); err != nil {
		t.Errorf("lock after release: %v", err)
	}
	_ = b.Unlock()
}

func TestWriteFileAtomic(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out.bin")
	if err := WriteFileAtomic(name, []byte("frame"), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil || string(data) != "frame" {
		t.Errorf("read back %q, %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(name))
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
	if Exists(name+".missing") || !Exists(name) {
		t.Errorf("Exists() is wrong about %v", name)
	}
}
