package reader

import "github.com/theia-vision/camreader/pkg/frame"

// Options describe the frame a caller wants.
type Options struct {
	// Width and Height of the result, zero in either keeps the source size.
	Width, Height int
	// Channels is 1 (gray), 3 (RGB) or 4 (RGBA), zero keeps the source layout.
	Channels int
	// Crop trims the longer axis to keep the aspect ratio when resizing,
	// otherwise the frame is stretched.
	Crop bool
	Flip bool
	// FlipMode 0 reverses rows, positive reverses columns, negative both.
	FlipMode int
	Scale    frame.Interpolation
}

// DefaultOptions is a cropped RGB frame of the source size.
var DefaultOptions = Options{Channels: 3, Crop: true}

// Normalize converts, crops, resizes and flips raw into a new buffer.
// defW and defH are the source's default dimensions the crop is computed
// from. An empty raw frame gives an empty 3-channel buffer.
func Normalize(raw *frame.Buffer, defW, defH int, o Options) *frame.Buffer {
	if raw.Empty() {
		return frame.New(0, 0, 3)
	}

	img := raw
	if o.Channels != 0 {
		img = frame.Convert(img, o.Channels)
	}

	w, h := o.Width, o.Height
	if defW <= 0 || defH <= 0 {
		defW, defH = raw.W, raw.H
	}
	if w != 0 && h != 0 && (w != defW || h != defH) {
		if o.Crop {
			if w*defH > defW*h {
				cut := (defH - h*defW/w) >> 1
				img = img.Rows(cut, defH-cut)
			} else {
				cut := (defW - w*defH/h) >> 1
				img = img.Cols(cut, defW-cut)
			}
		}
		img = frame.Resize(img, w, h, o.Scale)
	}

	if o.Flip {
		img = frame.Flip(img, o.FlipMode)
	}
	if img == raw {
		img = raw.Clone()
	}
	return img
}
