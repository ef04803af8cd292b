package v4l2

import (
	"fmt"
	"image/color"

	"github.com/theia-vision/camreader/pkg/frame"
)

// decodeYUYV converts a packed YUYV 4:2:2 frame into RGB.
func decodeYUYV(src []byte, w, h int) (*frame.Buffer, error) {
	if w%2 != 0 || len(src) < w*h*2 {
		return nil, fmt.Errorf("v4l2: wrong frame length (exp: %d, read %d)", w*h*2, len(src))
	}
	b := frame.New(w, h, 3)
	for y := 0; y < h; y++ {
		in, out := src[y*w*2:(y+1)*w*2], b.Row(y)
		for i, j := 0, 0; i < len(in); i, j = i+4, j+6 {
			y0, cb, y1, cr := in[i], in[i+1], in[i+2], in[i+3]
			out[j], out[j+1], out[j+2] = color.YCbCrToRGB(y0, cb, cr)
			out[j+3], out[j+4], out[j+5] = color.YCbCrToRGB(y1, cb, cr)
		}
	}
	return b, nil
}
