// Package frame contains the pixel buffer shared by every capture backend
// and the channel, scale and flip operations over it.
package frame

import (
	"fmt"
	"image"
	"image/color"
)

// Buffer is a row-major 8-bit pixel grid with 1 (gray), 3 (RGB)
// or 4 (RGBA) interleaved channels.
//
// A buffer produced by Rows, Cols or Region shares Pix with its parent.
type Buffer struct {
	Pix      []uint8
	Stride   int
	W, H     int
	Channels int
}

// New allocates a zeroed w x h buffer with c channels.
func New(w, h, c int) *Buffer {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Buffer{Pix: make([]uint8, w*h*c), Stride: w * c, W: w, H: h, Channels: c}
}

// Wrap makes a buffer over pix without copying it.
func Wrap(pix []uint8, w, h, c int) (*Buffer, error) {
	if !ValidChannels(c) {
		return nil, fmt.Errorf("frame: unsupported number of channels: %d", c)
	}
	if len(pix) < w*h*c {
		return nil, fmt.Errorf("frame: %d bytes is too small for %dx%dx%d", len(pix), w, h, c)
	}
	return &Buffer{Pix: pix[:w*h*c], Stride: w * c, W: w, H: h, Channels: c}, nil
}

// ValidChannels reports whether c is a supported channel count.
func ValidChannels(c int) bool { return c == 1 || c == 3 || c == 4 }

func (b *Buffer) Empty() bool { return b == nil || b.W <= 0 || b.H <= 0 }

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (b *Buffer) PixOffset(x, y int) int { return y*b.Stride + x*b.Channels }

// Row returns the scanline y (W*Channels bytes).
func (b *Buffer) Row(y int) []uint8 {
	i := y * b.Stride
	return b.Pix[i : i+b.W*b.Channels]
}

// Rows returns a view of the rows [y0, y1).
func (b *Buffer) Rows(y0, y1 int) *Buffer { return b.Region(0, y0, b.W, y1) }

// Cols returns a view of the columns [x0, x1).
func (b *Buffer) Cols(x0, x1 int) *Buffer { return b.Region(x0, 0, x1, b.H) }

// Region returns a view of the rectangle [x0, x1) x [y0, y1) clipped
// to the buffer bounds.
func (b *Buffer) Region(x0, y0, x1, y1 int) *Buffer {
	x0, x1 = clip(x0, 0, b.W), clip(x1, 0, b.W)
	y0, y1 = clip(y0, 0, b.H), clip(y1, 0, b.H)
	if x1 <= x0 || y1 <= y0 {
		return &Buffer{Channels: b.Channels}
	}
	start := b.PixOffset(x0, y0)
	end := b.PixOffset(x1-1, y1-1) + b.Channels
	return &Buffer{
		Pix:      b.Pix[start:end],
		Stride:   b.Stride,
		W:        x1 - x0,
		H:        y1 - y0,
		Channels: b.Channels,
	}
}

// Clone returns a compact deep copy.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	out := New(b.W, b.H, b.Channels)
	for y := 0; y < b.H; y++ {
		copy(out.Row(y), b.Row(y))
	}
	return out
}

// Equal reports whether both buffers hold identical pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b.Empty() || o.Empty() {
		return b.Empty() && o.Empty()
	}
	if b.W != o.W || b.H != o.H || b.Channels != o.Channels {
		return false
	}
	for y := 0; y < b.H; y++ {
		if string(b.Row(y)) != string(o.Row(y)) {
			return false
		}
	}
	return true
}

func (b *Buffer) String() string {
	if b == nil {
		return "frame(nil)"
	}
	return fmt.Sprintf("frame(%dx%dx%d)", b.W, b.H, b.Channels)
}

// image.Image and draw.Image

func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.W, b.H) }

func (b *Buffer) ColorModel() color.Model {
	switch b.Channels {
	case 1:
		return color.GrayModel
	case 4:
		return color.NRGBAModel
	default:
		return color.RGBAModel
	}
}

func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return color.Transparent
	}
	i := b.PixOffset(x, y)
	s := b.Pix[i : i+b.Channels : i+b.Channels]
	switch b.Channels {
	case 1:
		return color.Gray{Y: s[0]}
	case 4:
		return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
	default:
		return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xff}
	}
}

func (b *Buffer) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	i := b.PixOffset(x, y)
	s := b.Pix[i : i+b.Channels : i+b.Channels]
	switch b.Channels {
	case 1:
		s[0] = color.GrayModel.Convert(c).(color.Gray).Y
	case 4:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		s[0], s[1], s[2], s[3] = n.R, n.G, n.B, n.A
	default:
		r, g, bb, _ := c.RGBA()
		s[0], s[1], s[2] = uint8(r>>8), uint8(g>>8), uint8(bb>>8)
	}
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
