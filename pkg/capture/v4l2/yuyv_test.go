package v4l2

import (
	"reflect"
	"testing"
)

func TestDecodeYUYV(t *testing.T) {
	// black and white pixel pair sharing neutral chroma, then a gray pair
	src := []byte{
		0, 128, 255, 128,
		128, 128, 128, 128,
	}
	b, err := decodeYUYV(src, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 0, 0, 255, 255, 255, 128, 128, 128, 128, 128, 128}
	if !reflect.DeepEqual(b.Pix, want) {
		t.Errorf("decodeYUYV() = %v, want %v", b.Pix, want)
	}
}

func TestDecodeYUYVShort(t *testing.T) {
	if _, err := decodeYUYV(make([]byte, 7), 2, 2); err == nil {
		t.Errorf("short frame must fail")
	}
	if _, err := decodeYUYV(make([]byte, 12), 3, 2); err == nil {
		t.Errorf("odd width must fail")
	}
}
