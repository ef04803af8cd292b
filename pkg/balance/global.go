package balance

import "github.com/theia-vision/camreader/pkg/frame"

const (
	bits    = 5
	buckets = 1 << bits
)

// expand widens a 5-bit value to 8 bits by replicating its high bits.
func expand(v int) int { return (v << 3) | (v >> 2) }

// Global stretches every channel of a 3 or 4-channel frame between
// the darkest and the brightest color clusters and removes the cast
// of the channel means. Alpha is left alone. Gray frames are equalized.
func Global(b *frame.Buffer) error {
	if b.Empty() {
		return nil
	}
	switch b.Channels {
	case 1:
		Equalize(b)
		return nil
	case 3, 4:
	default:
		return ErrUnsupportedChannels
	}

	var hist [buckets * buckets * buckets]int64
	var sum [3]int64
	c := b.Channels
	for y := 0; y < b.H; y++ {
		row := b.Row(y)
		for i := 0; i < len(row); i += c {
			r, g, bb := row[i], row[i+1], row[i+2]
			hist[int(r>>3)<<(2*bits)|int(g>>3)<<bits|int(bb>>3)]++
			sum[0] += int64(r)
			sum[1] += int64(g)
			sum[2] += int64(bb)
		}
	}

	n := int64(b.W) * int64(b.H)
	var mean [3]int64
	for i := range sum {
		mean[i] = sum[i] / n
	}
	low := min(mean[0], mean[1], mean[2])

	// clusters of at least 1/4096 of the frame
	threshold := n >> 12
	darkest, brightest := 2048, -1
	var dark, bright [3]int
	found := false
	for r := 0; r < buckets; r++ {
		for g := 0; g < buckets; g++ {
			for bb := 0; bb < buckets; bb++ {
				if hist[r<<(2*bits)|g<<bits|bb] <= threshold {
					continue
				}
				found = true
				hi, lo := max(r, g, bb), min(r, g, bb)
				if v := r + g + bb + hi<<1 - lo; v < darkest {
					darkest, dark = v, [3]int{r, g, bb}
				}
				if v := r + g + bb + lo<<1 - hi; v > brightest {
					brightest, bright = v, [3]int{r, g, bb}
				}
			}
		}
	}
	if !found || dark[0] == bright[0] || dark[1] == bright[1] || dark[2] == bright[2] {
		return ErrDegenerateHistogram
	}

	var ratio [3]float32
	var bias [3]int
	for i := range ratio {
		d, w := expand(dark[i]), expand(bright[i])
		ratio[i] = 255 / float32(w-d)
		bias[i] = (int(mean[i]-low) + d<<3 - d) >> 3
	}

	var lut [3][256]uint8
	for i := range lut {
		for v := range lut[i] {
			lut[i][v] = stretch(v, bias[i], ratio[i])
		}
	}
	for y := 0; y < b.H; y++ {
		row := b.Row(y)
		for i := 0; i < len(row); i += c {
			row[i] = lut[0][row[i]]
			row[i+1] = lut[1][row[i+1]]
			row[i+2] = lut[2][row[i+2]]
		}
	}
	return nil
}

func stretch(v, bias int, ratio float32) uint8 {
	out := int(float32(max(v-bias, 0)) * ratio)
	if out > 255 {
		return 255
	}
	if out < 0 {
		return 0
	}
	return uint8(out)
}
