package network

import (
	"errors"
	"sync"
	"time"

	"github.com/theia-vision/camreader/pkg/logger"
)

// ErrBufferFull is returned by Decoder.Input when the decoder wants the
// same data again later.
var ErrBufferFull = errors.New("decoder buffer is full")

// Decoder turns a compressed stream into frames.
type Decoder interface {
	Open(header []byte) error
	Input(data []byte) error
	// Frame returns the last decoded 4-channel frame if there is one.
	Frame() (pix []byte, w, h int, ok bool)
	Close() error
}

const (
	inputRetries = 100
	inputWait    = time.Millisecond
)

// Callback glues a vendor data callback to a decoder: it opens the decoder
// on a system header and pushes every decoded frame into sink.
func Callback(dec Decoder, sink Sink, log *logger.Logger) func(DataType, []byte) {
	log = logger.Or(log)
	var mu sync.Mutex
	opened := false
	return func(t DataType, data []byte) {
		mu.Lock()
		defer mu.Unlock()
		switch t {
		case DataSystemHeader:
			if opened {
				return
			}
			if err := dec.Open(data); err != nil {
				log.Error().Err(err).Msg("could not open the stream decoder")
				return
			}
			opened = true
		case DataStream:
			if !opened || len(data) == 0 {
				return
			}
			if err := input(dec, data); err != nil {
				log.Error().Err(err).Msg("could not input stream data")
				return
			}
			if pix, w, h, ok := dec.Frame(); ok {
				sink(pix, w, h)
			}
		}
	}
}

func input(dec Decoder, data []byte) (err error) {
	for i := 0; i < inputRetries; i++ {
		if err = dec.Input(data); !errors.Is(err, ErrBufferFull) {
			return err
		}
		time.Sleep(inputWait)
	}
	return err
}
