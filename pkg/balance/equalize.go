package balance

import (
	"math"

	"github.com/theia-vision/camreader/pkg/frame"
)

// Equalize spreads the histogram of a gray frame over the full range.
func Equalize(b *frame.Buffer) {
	if b.Empty() || b.Channels != 1 {
		return
	}
	var hist [256]int
	for y := 0; y < b.H; y++ {
		for _, v := range b.Row(y) {
			hist[v]++
		}
	}

	total := b.W * b.H
	first := 0
	for hist[first] == 0 {
		first++
	}

	var lut [256]uint8
	if hist[first] == total {
		for i := range lut {
			lut[i] = uint8(first)
		}
	} else {
		scale := 255 / float64(total-hist[first])
		sum := 0
		for i := first + 1; i < 256; i++ {
			sum += hist[i]
			lut[i] = uint8(min(math.RoundToEven(float64(sum)*scale), 255))
		}
	}

	for y := 0; y < b.H; y++ {
		row := b.Row(y)
		for i, v := range row {
			row[i] = lut[v]
		}
	}
}
