// Package opencv reads capture devices and RTSP streams through gocv.
package opencv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"gocv.io/x/gocv"
)

// Provider opens OpenCV capture devices. The index may carry an API
// domain offset, e.g. 200 + n for the n-th V4L2 device.
type Provider struct{}

func (Provider) Open(index int) (device.Capture, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, err
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("opencv: device %d is not opened", index)
	}
	return &camera{vc: vc, mat: gocv.NewMat()}, nil
}

type camera struct {
	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

func (c *camera) SetResolution(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vc.Set(gocv.VideoCaptureFrameWidth, float64(w))
	c.vc.Set(gocv.VideoCaptureFrameHeight, float64(h))
	return nil
}

func (c *camera) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.vc.Get(gocv.VideoCaptureFrameWidth)), int(c.vc.Get(gocv.VideoCaptureFrameHeight))
}

func (c *camera) Read() (*frame.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.vc.Read(&c.mat) || c.mat.Empty() {
		return frame.New(0, 0, 3), nil
	}
	return toBuffer(c.mat, 0)
}

func (c *camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.mat.Close(), c.vc.Close())
}

// toBuffer copies a BGR(A) or gray mat into an RGB(A) or gray frame.
// A non-zero channels forces the layout of the result.
func toBuffer(m gocv.Mat, channels int) (*frame.Buffer, error) {
	var code gocv.ColorConversionCode
	switch c := m.Channels(); {
	case c == 1 && (channels == 0 || channels == 1):
		return copyMat(m, 1)
	case c == 1:
		code = gocv.ColorGrayToBGRA
		if channels == 3 {
			code = gocv.ColorGrayToBGR
		}
	case c == 3 && channels == 4:
		code = gocv.ColorBGRToRGBA
	case c == 3:
		code = gocv.ColorBGRToRGB
		channels = 3
	case c == 4 && channels == 3:
		code = gocv.ColorBGRAToRGB
	case c == 4:
		code = gocv.ColorBGRAToRGBA
		channels = 4
	default:
		return nil, fmt.Errorf("opencv: unsupported mat with %d channels", c)
	}
	out := gocv.NewMat()
	defer out.Close()
	if err := gocv.CvtColor(m, &out, code); err != nil {
		return nil, err
	}
	return copyMat(out, channels)
}

func copyMat(m gocv.Mat, channels int) (*frame.Buffer, error) {
	pix := m.ToBytes()
	return frame.Wrap(pix, m.Cols(), m.Rows(), channels)
}
