package pattern

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	magic = [4]byte{'P', 'T', 'R', 'N'}

	ErrHeader   = errors.New("pattern: bad stream header")
	errNotOpen  = errors.New("pattern: decoder is not open")
	errOverflow = errors.New("pattern: data overflows the frame")
)

const headerSize = 12

// Header is the system header of a w x h pattern stream.
func Header(w, h int) []byte {
	b := make([]byte, headerSize)
	copy(b, magic[:])
	binary.BigEndian.PutUint32(b[4:], uint32(w))
	binary.BigEndian.PutUint32(b[8:], uint32(h))
	return b
}

func parseHeader(b []byte) (w, h int, err error) {
	if len(b) != headerSize || [4]byte(b[:4]) != magic {
		return 0, 0, ErrHeader
	}
	w, h = int(binary.BigEndian.Uint32(b[4:])), int(binary.BigEndian.Uint32(b[8:]))
	if w <= 0 || h <= 0 || w > 1<<14 || h > 1<<14 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrHeader, w, h)
	}
	return w, h, nil
}

// rawDecoder assembles uncompressed RGBA chunks into frames.
type rawDecoder struct {
	w, h  int
	pix   []byte
	n     int
	ready bool
}

func (d *rawDecoder) Open(header []byte) error {
	w, h, err := parseHeader(header)
	if err != nil {
		return err
	}
	d.w, d.h, d.n, d.ready = w, h, 0, false
	d.pix = make([]byte, w*h*4)
	return nil
}

func (d *rawDecoder) Input(data []byte) error {
	if d.pix == nil {
		return errNotOpen
	}
	if d.n+len(data) > len(d.pix) {
		d.n = 0
		return errOverflow
	}
	d.n += copy(d.pix[d.n:], data)
	if d.n == len(d.pix) {
		d.n, d.ready = 0, true
	}
	return nil
}

func (d *rawDecoder) Frame() ([]byte, int, int, bool) {
	if !d.ready {
		return nil, 0, 0, false
	}
	d.ready = false
	return d.pix, d.w, d.h, true
}

func (d *rawDecoder) Close() error {
	d.pix = nil
	return nil
}
