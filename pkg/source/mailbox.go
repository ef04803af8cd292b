package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theia-vision/camreader/pkg/frame"
)

type slot struct {
	pix  []byte
	w, h int
}

// Mailbox passes frames from one producer to one consumer.
// It holds at most one unclaimed frame and a newer frame replaces it.
//
// Three buffers rotate: the one being written by Put, the ready one and
// the one last handed out by Take, which stays intact until the next Take.
type Mailbox struct {
	mu   sync.Mutex
	cond *sync.Cond

	channels int
	size     int
	writing  slot
	ready    slot
	held     slot

	hasReady bool
	closed   bool
	dropped  uint64
}

// NewMailbox allocates buffers for frames up to maxW x maxH x channels.
func NewMailbox(maxW, maxH, channels int) *Mailbox {
	size := maxW * maxH * channels
	m := &Mailbox{
		channels: channels,
		size:     size,
		writing:  slot{pix: make([]byte, size)},
		ready:    slot{pix: make([]byte, size)},
		held:     slot{pix: make([]byte, size)},
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Fits reports whether a w x h frame fits into the mailbox buffers.
func (m *Mailbox) Fits(w, h int) bool {
	return w > 0 && h > 0 && w*h*m.channels <= m.size
}

// Put copies a w x h frame into the mailbox.
// It reports whether an unclaimed frame was overwritten.
func (m *Mailbox) Put(pix []byte, w, h int) (dropped bool, err error) {
	n := w * h * m.channels
	if w <= 0 || h <= 0 || len(pix) < n {
		return false, fmt.Errorf("mailbox: %d bytes do not make a %dx%d frame", len(pix), w, h)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}
	if n > m.size {
		return false, fmt.Errorf("mailbox: %dx%d frame does not fit into %d bytes", w, h, m.size)
	}
	copy(m.writing.pix, pix[:n])
	m.writing.w, m.writing.h = w, h
	m.ready, m.writing = m.writing, m.ready

	dropped = m.hasReady
	if dropped {
		m.dropped++
	}
	m.hasReady = true
	m.cond.Signal()
	return dropped, nil
}

// Take waits for a frame and claims it. The returned buffer is valid until
// the next Take. A zero timeout waits until ctx is done, a positive one
// fails with ErrTimeout when it passes.
func (m *Mailbox) Take(ctx context.Context, timeout time.Duration) (*frame.Buffer, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, ErrTimeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	for !m.hasReady && !m.closed && ctx.Err() == nil {
		m.cond.Wait()
	}
	switch {
	case m.hasReady:
	case m.closed:
		return nil, ErrClosed
	default:
		return nil, context.Cause(ctx)
	}

	m.held, m.ready = m.ready, m.held
	m.hasReady = false
	s := m.held
	return &frame.Buffer{
		Pix:      s.pix[:s.w*s.h*m.channels],
		Stride:   s.w * m.channels,
		W:        s.w,
		H:        s.h,
		Channels: m.channels,
	}, nil
}

// Dropped returns the number of frames replaced before being claimed.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Close wakes up waiting consumers, Put and Take fail afterwards.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()
}
