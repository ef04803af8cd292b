package balance

import "github.com/theia-vision/camreader/pkg/frame"

// Reference skin tone.
const (
	SkinR = 227
	SkinG = 181
	SkinB = 172
)

var skin = [3]float64{SkinR, SkinG, SkinB}

// SkinCr and SkinCb are the chroma of the reference skin tone.
var (
	SkinCr = int(0.439*skin[0] - 0.368*skin[1] - 0.071*skin[2] + 128)
	SkinCb = int(-0.148*skin[0] - 0.291*skin[1] + 0.439*skin[2] + 128)
)

// Face scales the chroma of a 3 or 4-channel frame so that the mean
// chroma of its central half matches the reference skin tone.
// Brightness is kept, alpha is left alone.
func Face(b *frame.Buffer) error {
	if b.Empty() {
		return nil
	}
	if b.Channels != 3 && b.Channels != 4 {
		return ErrUnsupportedChannels
	}
	ycc := frame.ToYCrCb(b)
	faceChroma(ycc)
	frame.FromYCrCb(ycc, b)
	return nil
}

// faceChroma works on a (Y, Cr, Cb) frame.
func faceChroma(ycc *frame.Buffer) {
	x0, x1 := ycc.W>>2, (ycc.W*3)>>2
	y0, y1 := ycc.H>>2, (ycc.H*3)>>2
	var crSum, cbSum, n int64
	for y := y0; y < y1; y++ {
		row := ycc.Row(y)
		for x := x0; x < x1; x++ {
			crSum += int64(row[x*3+1])
			cbSum += int64(row[x*3+2])
			n++
		}
	}
	if n == 0 || crSum == 0 || cbSum == 0 {
		return
	}
	crRatio := float32(int64(SkinCr)*n) / float32(crSum)
	cbRatio := float32(int64(SkinCb)*n) / float32(cbSum)

	var crLut, cbLut [256]uint8
	for v := range crLut {
		crLut[v] = uint8(min(int(float32(v)*crRatio), 255))
		cbLut[v] = uint8(min(int(float32(v)*cbRatio), 255))
	}
	for y := 0; y < ycc.H; y++ {
		row := ycc.Row(y)
		for i := 0; i < len(row); i += 3 {
			row[i+1] = crLut[row[i+1]]
			row[i+2] = cbLut[row[i+2]]
		}
	}
}
