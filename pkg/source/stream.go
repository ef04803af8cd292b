package source

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/monitoring"
)

// StreamChannels is the layout every stream decoder produces.
const StreamChannels = 4

// Stream is a source fed by an asynchronous decoder through Deliver.
type Stream struct {
	box     *Mailbox
	timeout time.Duration
	size    atomic.Uint64
	log     *logger.Logger
}

// NewStream makes a stream source for frames up to maxW x maxH.
// Fetch waits for a frame no longer than timeout unless it is zero.
func NewStream(maxW, maxH int, timeout time.Duration, log *logger.Logger) *Stream {
	s := &Stream{
		box:     NewMailbox(maxW, maxH, StreamChannels),
		timeout: timeout,
		log:     logger.Or(log),
	}
	s.setSize(maxW, maxH)
	return s
}

func (s *Stream) setSize(w, h int) { s.size.Store(uint64(w)<<32 | uint64(uint32(h))) }

func (s *Stream) Kind() Kind { return KindStream }

// Dimensions return the size of the last delivered frame
// or the maximum one until the first frame arrives.
func (s *Stream) Dimensions() (int, int) {
	v := s.size.Load()
	return int(v >> 32), int(uint32(v))
}

// Deliver hands a decoded w x h RGBA frame to the source.
// It is safe to call from the decoder's goroutine.
func (s *Stream) Deliver(pix []byte, w, h int) {
	if s.box.Fits(w, h) {
		s.setSize(w, h)
	}
	dropped, err := s.box.Put(pix, w, h)
	if err != nil {
		s.log.Warn().Err(err).Msg("decoded frame rejected")
		return
	}
	if dropped {
		monitoring.FrameDropped()
		s.log.Trace().Msg("unclaimed frame dropped")
	}
}

// Fetch waits for the next decoded frame. The frame stays valid until
// the next Fetch.
func (s *Stream) Fetch(ctx context.Context) (*frame.Buffer, error) {
	f, err := s.box.Take(ctx, s.timeout)
	if err != nil {
		return nil, err
	}
	monitoring.FrameFetched(string(KindStream), f.Empty())
	return f, nil
}

func (s *Stream) Dropped() uint64 { return s.box.Dropped() }

func (s *Stream) Close() error {
	s.box.Close()
	return nil
}
