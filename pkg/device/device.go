// Package device shares capture devices between readers of one process.
package device

import (
	"errors"

	"github.com/theia-vision/camreader/pkg/frame"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrNoInput        = errors.New("device has no input")
	ErrDeviceBusy     = errors.New("device is locked by another process")
	ErrReleased       = errors.New("device handle was already released")
	ErrClosed         = errors.New("device was closed")
)

// Capture is an opened capture device.
type Capture interface {
	// SetResolution asks the device for w x h frames. Devices may pick
	// the closest mode they support, see Resolution.
	SetResolution(w, h int) error
	Resolution() (w, h int)
	// Read grabs the next frame. The buffer belongs to the caller,
	// an empty one means the device had nothing to give.
	Read() (*frame.Buffer, error)
	Close() error
}

// Provider opens capture devices by index.
type Provider interface {
	Open(index int) (Capture, error)
}

// ProviderFunc is an adapter to allow the use of ordinary functions
// as capture providers.
type ProviderFunc func(index int) (Capture, error)

func (f ProviderFunc) Open(index int) (Capture, error) { return f(index) }
