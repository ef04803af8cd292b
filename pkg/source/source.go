// Package source has the frame sources a reader polls: a shared USB device,
// a network stream fed by a decoder callback and a fake network camera
// backed by a USB device.
package source

import (
	"context"
	"errors"

	"github.com/theia-vision/camreader/pkg/frame"
)

var (
	ErrTimeout = errors.New("source: no frame within the timeout")
	ErrClosed  = errors.New("source: closed")
)

type Kind string

const (
	KindUSB    Kind = "usb"
	KindStream Kind = "stream"
	KindFake   Kind = "fake"
)

// Source yields raw frames.
type Source interface {
	Kind() Kind
	// Dimensions are the default frame width and height of the source.
	Dimensions() (w, h int)
	// Fetch returns the next frame, possibly an empty one when the source
	// has nothing right now. The frame may be reused by the next Fetch.
	Fetch(ctx context.Context) (*frame.Buffer, error)
	Close() error
}
