package source

import (
	"context"
	"testing"
	"time"

	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
)

type solidCapture struct{ w, h int }

func (c *solidCapture) SetResolution(w, h int) error { c.w, c.h = w, h; return nil }
func (c *solidCapture) Resolution() (int, int)       { return c.w, c.h }
func (c *solidCapture) Read() (*frame.Buffer, error) { return frame.New(c.w, c.h, 3), nil }
func (c *solidCapture) Close() error                 { return nil }

func registry() *device.Registry {
	p := device.ProviderFunc(func(int) (device.Capture, error) { return &solidCapture{}, nil })
	return device.NewRegistry(p, device.Options{}, logger.Nop())
}

func TestUSBAndFake(t *testing.T) {
	reg := registry()
	ctx := context.Background()

	usb, err := NewUSB(ctx, reg, 5, 320, 240)
	if err != nil {
		t.Fatal(err)
	}
	other, err := NewUSB(ctx, reg, 5, 320, 240)
	if err != nil {
		t.Fatal(err)
	}
	fake := NewFake(other)

	if fake.Kind() != KindFake || usb.Kind() != KindUSB {
		t.Errorf("kinds %v %v", usb.Kind(), fake.Kind())
	}
	if w, h := fake.Dimensions(); w != 320 || h != 240 {
		t.Errorf("fake dimensions %dx%d", w, h)
	}
	if reg.Usage(5) != 2 {
		t.Errorf("usage = %d", reg.Usage(5))
	}

	f, err := fake.Fetch(ctx)
	if err != nil || f.W != 320 || f.H != 240 {
		t.Errorf("Fetch() = %v, %v", f, err)
	}

	_ = fake.Close()
	if reg.Usage(5) != 1 {
		t.Errorf("usage after closing the fake = %d", reg.Usage(5))
	}
	_ = usb.Close()
	if reg.Usage(5) != 0 {
		t.Errorf("usage after closing both = %d", reg.Usage(5))
	}
}

func TestStream(t *testing.T) {
	s := NewStream(1980, 1080, 50*time.Millisecond, logger.Nop())
	if w, h := s.Dimensions(); w != 1980 || h != 1080 {
		t.Errorf("initial dimensions %dx%d", w, h)
	}

	go s.Deliver(pixels(704, 576, 9), 704, 576)

	f, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.W != 704 || f.H != 576 || f.Channels != 4 || f.Pix[0] != 9 {
		t.Errorf("Fetch() = %v", f)
	}
	if w, h := s.Dimensions(); w != 704 || h != 576 {
		t.Errorf("dimensions %dx%d after a frame", w, h)
	}

	s.Deliver(pixels(2000, 2000, 1), 2000, 2000)
	if w, _ := s.Dimensions(); w != 704 {
		t.Errorf("rejected frame changed dimensions")
	}
	_ = s.Close()
	if _, err := s.Fetch(context.Background()); err != ErrClosed {
		t.Errorf("Fetch() after Close = %v", err)
	}
}
