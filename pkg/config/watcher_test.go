package config

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/theia-vision/camreader/pkg/logger"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	file := write(t, dir, FileName, "output:\n  width: 100\n")

	changes := make(chan *Config, 16)
	w, err := NewWatcher(dir, logger.Nop(), func(c *Config) { changes <- c })
	if err != nil {
		t.Fatal(err)
	}
	w.Run()
	defer func() { _ = w.Shutdown(context.Background()) }()

	if err := os.WriteFile(file, []byte("output:\n  width: 200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Output.Width == 200 {
				return
			}
		case <-timeout:
			t.Fatal("no reload after the file was written")
		}
	}
}

func TestWatcherShutdown(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, "debug: true\n")
	w, err := NewWatcher(dir, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Run()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
	if err := w.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
}

func TestWatcherNoFile(t *testing.T) {
	if _, err := NewWatcher(t.TempDir(), nil, nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("NewWatcher() = %v, want %v", err, ErrNoFile)
	}
}
