package frame

// Integer BT.601 coefficients scaled by 2^14, the same fixed-point
// layout OpenCV uses for its RGB<->Gray and RGB<->YCrCb conversions.
const (
	yuvShift = 14
	yuvHalf  = 1 << (yuvShift - 1)

	r2y = 4899 // 0.299
	g2y = 9617 // 0.587
	b2y = 1868 // 0.114

	cr = 11682 // 0.713
	cb = 9241  // 0.564

	cr2r = 22987  // 1.403
	cr2g = -11698 // -0.714
	cb2g = -5636  // -0.344
	cb2b = 29049  // 1.773

	delta = 128
)

// Luma returns the gray value of an RGB triple.
func Luma(r, g, b uint8) uint8 {
	return uint8((int(r)*r2y + int(g)*g2y + int(b)*b2y + yuvHalf) >> yuvShift)
}

// Convert changes the channel layout of b to c channels
// (1 = gray, 3 = RGB, 4 = RGBA).
// It returns b itself when nothing has to be done.
func Convert(b *Buffer, c int) *Buffer {
	if b == nil || b.Channels == c || !ValidChannels(c) {
		return b
	}
	out := New(b.W, b.H, c)
	if b.Empty() {
		return out
	}
	sc := b.Channels
	for y := 0; y < b.H; y++ {
		src, dst := b.Row(y), out.Row(y)
		for x, i, j := 0, 0, 0; x < b.W; x, i, j = x+1, i+sc, j+c {
			switch {
			case c == 1:
				dst[j] = Luma(src[i], src[i+1], src[i+2])
			case sc == 1:
				dst[j], dst[j+1], dst[j+2] = src[i], src[i], src[i]
				if c == 4 {
					dst[j+3] = 0xff
				}
			case c == 3:
				dst[j], dst[j+1], dst[j+2] = src[i], src[i+1], src[i+2]
			default:
				dst[j], dst[j+1], dst[j+2], dst[j+3] = src[i], src[i+1], src[i+2], 0xff
			}
		}
	}
	return out
}

// RGBToYCrCb converts one RGB pixel into the (Y, Cr, Cb) order.
func RGBToYCrCb(r, g, b uint8) (uint8, uint8, uint8) {
	y := (int(r)*r2y + int(g)*g2y + int(b)*b2y + yuvHalf) >> yuvShift
	vr := (int(r)-y)*cr + delta<<yuvShift
	vb := (int(b)-y)*cb + delta<<yuvShift
	return uint8(y), sat((vr + yuvHalf) >> yuvShift), sat((vb + yuvHalf) >> yuvShift)
}

// YCrCbToRGB is the inverse of RGBToYCrCb.
func YCrCbToRGB(y, vcr, vcb uint8) (uint8, uint8, uint8) {
	dr, db := int(vcr)-delta, int(vcb)-delta
	yy := int(y)
	r := yy + (dr*cr2r+yuvHalf)>>yuvShift
	g := yy + (db*cb2g+dr*cr2g+yuvHalf)>>yuvShift
	b := yy + (db*cb2b+yuvHalf)>>yuvShift
	return sat(r), sat(g), sat(b)
}

// ToYCrCb returns a 3-channel (Y, Cr, Cb) copy of an RGB or RGBA buffer.
func ToYCrCb(b *Buffer) *Buffer {
	out := New(b.W, b.H, 3)
	if b.Empty() || b.Channels < 3 {
		return out
	}
	sc := b.Channels
	for y := 0; y < b.H; y++ {
		src, dst := b.Row(y), out.Row(y)
		for i, j := 0, 0; j < len(dst); i, j = i+sc, j+3 {
			dst[j], dst[j+1], dst[j+2] = RGBToYCrCb(src[i], src[i+1], src[i+2])
		}
	}
	return out
}

// FromYCrCb writes the YCrCb buffer ycc back into the RGB(A) buffer dst
// of the same size. Alpha is left untouched.
func FromYCrCb(ycc, dst *Buffer) {
	if ycc.Empty() || dst.Empty() || dst.Channels < 3 {
		return
	}
	dc := dst.Channels
	for y := 0; y < dst.H && y < ycc.H; y++ {
		src, out := ycc.Row(y), dst.Row(y)
		for i, j := 0, 0; i < len(src) && j < len(out); i, j = i+3, j+dc {
			out[j], out[j+1], out[j+2] = YCrCbToRGB(src[i], src[i+1], src[i+2])
		}
	}
}

func sat(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}
