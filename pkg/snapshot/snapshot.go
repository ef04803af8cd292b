// Package snapshot saves frames as PNG files.
package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/os"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const DefaultName = "%device%-%date:20060102-150405%-%seq%"

var (
	reDate   = regexp.MustCompile(`%date:(.*?)%`)
	reSeq    = regexp.MustCompile(`%seq%`)
	reDevice = regexp.MustCompile(`%device%`)
)

type Options struct {
	Dir string
	// Name is the file name template without extension, it may use
	// %date:<go layout>%, %seq% and %device%.
	Name string
	// Label prints the device and time into the top left corner.
	Label bool
	// Compression is a png.CompressionLevel.
	Compression int
}

type Writer struct {
	opts Options
	enc  png.Encoder
	seq  atomic.Uint64
	log  *logger.Logger
}

func New(opts Options, log *logger.Logger) (*Writer, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if err := os.CheckCreateDir(opts.Dir); err != nil {
		return nil, fmt.Errorf("snapshot dir: %w", err)
	}
	return &Writer{
		opts: opts,
		enc:  png.Encoder{CompressionLevel: png.CompressionLevel(opts.Compression)},
		log:  logger.Or(log),
	}, nil
}

// Write saves b taken from device at the given time and returns the file path.
func (w *Writer) Write(b *frame.Buffer, device string, at time.Time) (string, error) {
	if b.Empty() {
		return "", fmt.Errorf("snapshot: empty frame")
	}
	seq := w.seq.Add(1)
	img := image.Image(b)
	if w.opts.Label {
		labeled := b.Clone()
		AddLabel(labeled, 2, 2, fmt.Sprintf("%s %s", device, at.Format("15:04:05.000")))
		img = labeled
	}

	var buf bytes.Buffer
	if err := w.enc.Encode(&buf, img); err != nil {
		return "", err
	}
	path := filepath.Join(w.opts.Dir, parseName(w.opts.Name, device, seq, at)+".png")
	if err := os.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	w.log.Debug().Str("path", path).Msg("snapshot saved")
	return path, nil
}

// AddLabel prints label on a dark box at x, y.
func AddLabel(img draw.Image, x, y int, label string) {
	draw.Draw(img, image.Rect(x, y, x+len(label)*7+3, y+14), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x+2, y+11),
	}).DrawString(label)
}

var unsafeChars = strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_")

func parseName(name, device string, seq uint64, at time.Time) (out string) {
	out = name
	if d := reDate.FindStringSubmatch(out); d != nil {
		out = reDate.ReplaceAllString(out, at.Format(d[1]))
	}
	out = reSeq.ReplaceAllString(out, fmt.Sprintf("%06d", seq))
	out = reDevice.ReplaceAllString(out, unsafeChars.Replace(device))
	return
}
