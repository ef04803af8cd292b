//go:build linux

// Package v4l2 reads Linux video devices without OpenCV.
package v4l2

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blackjack/webcam"
	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
)

const pixYUYV = webcam.PixelFormat(0x56595559) // 'YUYV'

var ErrFormat = errors.New("v4l2: device does not support YUYV")

// Provider opens /dev/video<index>.
type Provider struct {
	// Timeout of a single frame wait in seconds.
	Timeout uint32
}

func (p *Provider) Open(index int) (device.Capture, error) {
	cam, err := webcam.Open(fmt.Sprintf("/dev/video%d", index))
	if err != nil {
		return nil, err
	}
	if _, ok := cam.GetSupportedFormats()[pixYUYV]; !ok {
		_ = cam.Close()
		return nil, ErrFormat
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 1
	}
	return &camera{cam: cam, timeout: timeout}, nil
}

type camera struct {
	mu        sync.Mutex
	cam       *webcam.Webcam
	w, h      int
	timeout   uint32
	streaming bool
}

func (c *camera) SetResolution(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		return errors.New("v4l2: cannot change the format while streaming")
	}
	_, fw, fh, err := c.cam.SetImageFormat(pixYUYV, uint32(w), uint32(h))
	if err != nil {
		return err
	}
	c.w, c.h = int(fw), int(fh)
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
	if !c.streaming {
		if err := c.cam.StartStreaming(); err != nil {
			return nil, err
		}
		c.streaming = true
	}
	err := c.cam.WaitForFrame(c.timeout)
	switch err.(type) {
	case nil:
	case *webcam.Timeout:
		return frame.New(0, 0, 3), nil
	default:
		return nil, err
	}
	raw, err := c.cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return frame.New(0, 0, 3), nil
	}
	return decodeYUYV(raw, c.w, c.h)
}

func (c *camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streaming {
		_ = c.cam.StopStreaming()
		c.streaming = false
	}
	return c.cam.Close()
}
