//go:build !linux

package v4l2

import (
	"errors"

	"github.com/theia-vision/camreader/pkg/device"
)

var ErrFormat = errors.New("v4l2: device does not support YUYV")

// Provider is only available on Linux.
type Provider struct {
	Timeout uint32
}

func (p *Provider) Open(int) (device.Capture, error) {
	return nil, errors.New("v4l2: not supported on this platform")
}
