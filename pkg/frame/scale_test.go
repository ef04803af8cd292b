package frame

import (
	"reflect"
	"testing"
)

func TestResize(t *testing.T) {
	tests := []struct {
		name string
		src  *Buffer
		w, h int
		how  Interpolation
	}{
		{name: "gray down", src: random(64, 48, 1, 1), w: 32, h: 24},
		{name: "rgb up", src: random(10, 10, 3, 2), w: 25, h: 17, how: ScaleNearestNeighbour},
		{name: "rgba approx", src: random(40, 30, 4, 3), w: 20, h: 15, how: ScaleApproxBilinear},
		{name: "view", src: random(40, 30, 3, 4).Cols(5, 35), w: 15, h: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(tt.src, tt.w, tt.h, tt.how)
			if out.W != tt.w || out.H != tt.h || out.Channels != tt.src.Channels {
				t.Errorf("Resize() = %v", out)
			}
		})
	}
}

func TestResizeUniform(t *testing.T) {
	src := New(20, 10, 3)
	for i := 0; i < len(src.Pix); i += 3 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 200, 100, 50
	}
	out := Resize(src, 7, 3, ScaleBilinear)
	for i := 0; i < len(out.Pix); i += 3 {
		if out.Pix[i] != 200 || out.Pix[i+1] != 100 || out.Pix[i+2] != 50 {
			t.Fatalf("uniform color changed at %d: %v", i, out.Pix[i:i+3])
		}
	}
}

func TestResizeKeepsTransparentColor(t *testing.T) {
	tests := []struct {
		name string
		px   [4]uint8
		how  Interpolation
	}{
		{name: "zero alpha", px: [4]uint8{200, 100, 50, 0}},
		{name: "half alpha", px: [4]uint8{200, 100, 50, 128}},
		{name: "zero alpha nearest", px: [4]uint8{10, 220, 30, 0}, how: ScaleNearestNeighbour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := New(4, 4, 4)
			for i := 0; i < len(src.Pix); i += 4 {
				copy(src.Pix[i:i+4], tt.px[:])
			}
			out := Resize(src, 2, 2, tt.how)
			for i := 0; i < len(out.Pix); i += 4 {
				if got := out.Pix[i : i+4]; !reflect.DeepEqual(got, tt.px[:]) {
					t.Fatalf("pixel %d = %v, want %v", i/4, got, tt.px)
				}
			}
		})
	}
}

func TestResizeRGBAChannelsIndependent(t *testing.T) {
	// left half transparent red, right half opaque blue
	src := New(4, 2, 4)
	for y := 0; y < 2; y++ {
		row := src.Row(y)
		for x := 0; x < 4; x++ {
			if x < 2 {
				copy(row[x*4:], []uint8{255, 0, 0, 0})
			} else {
				copy(row[x*4:], []uint8{0, 0, 255, 255})
			}
		}
	}
	out := Resize(src, 2, 1, ScaleNearestNeighbour)
	if want := []uint8{255, 0, 0, 0, 0, 0, 255, 255}; !reflect.DeepEqual(out.Pix, want) {
		t.Errorf("Resize() = %v, want %v", out.Pix, want)
	}
}

func TestResizeSameSizeCopies(t *testing.T) {
	src := random(8, 8, 1, 9)
	out := Resize(src, 8, 8, ScaleBilinear)
	if !out.Equal(src) {
		t.Errorf("same size resize changed pixels")
	}
	out.Pix[0]++
	if out.Equal(src) {
		t.Errorf("same size resize must not alias")
	}
}

func TestFlip(t *testing.T) {
	// 3x2 gray
	// 1 2 3
	// 4 5 6
	src := &Buffer{Pix: []uint8{1, 2, 3, 4, 5, 6}, W: 3, H: 2, Stride: 3, Channels: 1}
	tests := []struct {
		mode int
		want []uint8
	}{
		{mode: 0, want: []uint8{4, 5, 6, 1, 2, 3}},
		{mode: 1, want: []uint8{3, 2, 1, 6, 5, 4}},
		{mode: -1, want: []uint8{6, 5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		if got := Flip(src, tt.mode); !reflect.DeepEqual(got.Pix, tt.want) {
			t.Errorf("Flip(%d) = %v, want %v", tt.mode, got.Pix, tt.want)
		}
	}
}

func TestFlipKeepsPixelsTogether(t *testing.T) {
	src := &Buffer{Pix: []uint8{1, 2, 3, 4, 5, 6}, W: 2, H: 1, Stride: 6, Channels: 3}
	got := Flip(src, 1)
	if want := []uint8{4, 5, 6, 1, 2, 3}; !reflect.DeepEqual(got.Pix, want) {
		t.Errorf("Flip() = %v, want %v", got.Pix, want)
	}
}

func TestParseInterpolation(t *testing.T) {
	tests := map[string]Interpolation{
		"":           ScaleBilinear,
		"bilinear":   ScaleBilinear,
		"nearest":    ScaleNearestNeighbour,
		"approx":     ScaleApproxBilinear,
		"catmullrom": ScaleCatmullRom,
		"lanczos":    ScaleBilinear,
	}
	for in, want := range tests {
		if got := ParseInterpolation(in); got != want {
			t.Errorf("ParseInterpolation(%q) = %v, want %v", in, got, want)
		}
	}
}

func BenchmarkResize(b *testing.B) {
	src := random(1280, 720, 3, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resize(src, 640, 360, ScaleBilinear)
	}
	b.ReportAllocs()
}
