// Package pattern is a camera without hardware: it renders moving color
// bars, either as a local capture device or as a network camera.
package pattern

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/network"
)

var ErrNoDevice = errors.New("pattern: no such device")

// 75% color bars
var bars = [...][3]uint8{
	{191, 191, 191},
	{191, 191, 0},
	{0, 191, 191},
	{0, 191, 0},
	{191, 0, 191},
	{191, 0, 0},
	{0, 0, 191},
}

// Render draws frame number n into b: color bars in the upper part and
// a luma ramp moving by one pixel per frame below them.
func Render(b *frame.Buffer, n int) {
	if b.Empty() {
		return
	}
	split := b.H * 3 / 4
	c := b.Channels
	for y := 0; y < b.H; y++ {
		row := b.Row(y)
		for x := 0; x < b.W; x++ {
			var px [3]uint8
			if y < split {
				px = bars[x*len(bars)/b.W]
			} else {
				v := uint8((x + n) * 255 / max(b.W-1, 1))
				px = [3]uint8{v, v, v}
			}
			i := x * c
			switch c {
			case 1:
				row[i] = frame.Luma(px[0], px[1], px[2])
			default:
				row[i], row[i+1], row[i+2] = px[0], px[1], px[2]
				if c == 4 {
					row[i+3] = 0xff
				}
			}
		}
	}
}

// Provider serves the devices 0..Devices-1.
type Provider struct {
	Devices int
	// Silent devices open but never produce a frame.
	Silent map[int]bool
}

func (p *Provider) Open(index int) (device.Capture, error) {
	if index < 0 || index >= p.Devices {
		return nil, ErrNoDevice
	}
	return &camera{w: 640, h: 480, silent: p.Silent[index]}, nil
}

type camera struct {
	mu     sync.Mutex
	w, h   int
	n      int
	silent bool
}

func (c *camera) SetResolution(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w > 0 && h > 0 {
		c.w, c.h = w, h
	}
	return nil
}

func (c *camera) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *camera) Read() (*frame.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.silent {
		return frame.New(0, 0, 3), nil
	}
	b := frame.New(c.w, c.h, 3)
	Render(b, c.n)
	c.n++
	return b, nil
}

func (c *camera) Close() error { return nil }

// Client is a network camera that accepts Password, any when it is empty.
// It sends a system header and then each frame in bands of rows through
// the same decoder callback a vendor stream goes through.
type Client struct {
	Password string
	W, H     int
	FPS      int
	Log      *logger.Logger
}

const bandRows = 16

func (c *Client) ErrorMessage(code int) string { return network.ErrorMessage(code) }

func (c *Client) Login(_ context.Context, cred network.Credentials, sink network.Sink) (network.Session, error) {
	if c.Password != "" && cred.Password != c.Password {
		return nil, &network.LoginError{Code: network.CodeOpenFailed, Message: c.ErrorMessage(network.CodeOpenFailed)}
	}
	w, h, fps := c.W, c.H, c.FPS
	if w <= 0 || h <= 0 {
		w, h = 704, 576
	}
	if fps <= 0 {
		fps = 25
	}
	s := &session{done: make(chan struct{}), dec: &rawDecoder{}}
	data := network.Callback(s.dec, sink, c.Log)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(time.Second / time.Duration(fps))
		defer t.Stop()
		data(network.DataSystemHeader, Header(w, h))
		b := frame.New(w, h, 4)
		band := bandRows * b.Stride
		for n := 0; ; n++ {
			Render(b, n)
			for i := 0; i < len(b.Pix); i += band {
				data(network.DataStream, b.Pix[i:min(i+band, len(b.Pix))])
			}
			select {
			case <-s.done:
				return
			case <-t.C:
			}
		}
	}()
	return s, nil
}

type session struct {
	done chan struct{}
	dec  *rawDecoder
	once sync.Once
	wg   sync.WaitGroup
}

func (s *session) Logout() (err error) {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		err = s.dec.Close()
	})
	return err
}
