package source

import (
	"context"

	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/monitoring"
)

// USB reads a capture device shared through a registry.
type USB struct {
	h *device.Handle
}

// NewUSB acquires the device index in reg. The device is asked for
// maxW x maxH frames when this is its first user.
func NewUSB(ctx context.Context, reg *device.Registry, index, maxW, maxH int) (*USB, error) {
	h, err := reg.Acquire(ctx, index, maxW, maxH)
	if err != nil {
		return nil, err
	}
	return &USB{h: h}, nil
}

func (u *USB) Kind() Kind             { return KindUSB }
func (u *USB) Index() int             { return u.h.Index() }
func (u *USB) Dimensions() (int, int) { return u.h.Dimensions() }

func (u *USB) Fetch(ctx context.Context) (*frame.Buffer, error) {
	f, err := u.h.Read(ctx)
	if err != nil {
		return nil, err
	}
	monitoring.FrameFetched(string(KindUSB), f.Empty())
	return f, nil
}

func (u *USB) Close() error { return u.h.Release() }

// Fake pretends to be a network camera while reading a local device.
type Fake struct {
	usb *USB
}

func NewFake(usb *USB) *Fake { return &Fake{usb: usb} }

func (f *Fake) Kind() Kind             { return KindFake }
func (f *Fake) Dimensions() (int, int) { return f.usb.Dimensions() }
func (f *Fake) Fetch(ctx context.Context) (*frame.Buffer, error) {
	return f.usb.Fetch(ctx)
}
func (f *Fake) Close() error { return f.usb.Close() }
