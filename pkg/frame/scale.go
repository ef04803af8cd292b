package frame

import (
	"image"

	"golang.org/x/image/draw"
)

type Interpolation int

const (
	ScaleBilinear         Interpolation = iota // default, matches the linear resize of most capture stacks
	ScaleNearestNeighbour                      // nearest neighbour interpolation
	ScaleApproxBilinear                        // faster, lower quality bilinear
	ScaleCatmullRom                            // slow, best for strong downscales
)

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case ScaleNearestNeighbour:
		return draw.NearestNeighbor
	case ScaleApproxBilinear:
		return draw.ApproxBiLinear
	case ScaleCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// Resize scales b into a new w x h buffer with the same channel count.
func Resize(b *Buffer, w, h int, how Interpolation) *Buffer {
	out := New(w, h, b.Channels)
	if b.Empty() || out.Empty() {
		return out
	}
	if w == b.W && h == b.H {
		return b.Clone()
	}
	if b.Channels == 4 {
		resizeRGBA(b, out, how.scaler())
		return out
	}
	how.scaler().Scale(out, out.Bounds(), b, b.Bounds(), draw.Src, nil)
	return out
}

// resizeRGBA scales the color and the fourth channel as separate planes,
// every channel is an independent sample and a zero alpha keeps its color.
func resizeRGBA(b, out *Buffer, s draw.Scaler) {
	rgb := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	alpha := image.NewGray(rgb.Rect)
	for y := 0; y < b.H; y++ {
		src := b.Row(y)
		c, a := rgb.Pix[y*rgb.Stride:], alpha.Pix[y*alpha.Stride:]
		for x, i := 0, 0; x < b.W; x, i = x+1, i+4 {
			c[i], c[i+1], c[i+2], c[i+3] = src[i], src[i+1], src[i+2], 0xff
			a[x] = src[i+3]
		}
	}

	drgb := image.NewRGBA(image.Rect(0, 0, out.W, out.H))
	dalpha := image.NewGray(drgb.Rect)
	s.Scale(drgb, drgb.Rect, rgb, rgb.Rect, draw.Src, nil)
	s.Scale(dalpha, dalpha.Rect, alpha, alpha.Rect, draw.Src, nil)

	for y := 0; y < out.H; y++ {
		dst := out.Row(y)
		c, a := drgb.Pix[y*drgb.Stride:], dalpha.Pix[y*dalpha.Stride:]
		for x, i := 0, 0; x < out.W; x, i = x+1, i+4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c[i], c[i+1], c[i+2], a[x]
		}
	}
}

// Flip mirrors b into a new buffer.
// Mode 0 flips around the x-axis (rows are reversed), a positive mode flips
// around the y-axis (columns are reversed) and a negative one does both.
func Flip(b *Buffer, mode int) *Buffer {
	out := New(b.W, b.H, b.Channels)
	if b.Empty() {
		return out
	}
	c := b.Channels
	for y := 0; y < b.H; y++ {
		sy := y
		if mode <= 0 {
			sy = b.H - 1 - y
		}
		src, dst := b.Row(sy), out.Row(y)
		if mode == 0 {
			copy(dst, src)
			continue
		}
		for x, j := 0, len(src)-c; x < len(dst); x, j = x+c, j-c {
			copy(dst[x:x+c], src[j:j+c])
		}
	}
	return out
}

// ParseInterpolation maps bilinear, nearest, approx and catmullrom
// to their Interpolation, anything else is ScaleBilinear.
func ParseInterpolation(s string) Interpolation {
	switch s {
	case "nearest":
		return ScaleNearestNeighbour
	case "approx":
		return ScaleApproxBilinear
	case "catmullrom":
		return ScaleCatmullRom
	default:
		return ScaleBilinear
	}
}
