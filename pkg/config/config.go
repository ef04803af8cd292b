package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/theia-vision/camreader/pkg/config/monitoring"
)

type Config struct {
	Reader     Reader
	Retry      Retry
	Stream     Stream
	Output     Output
	Balance    Balance
	Snapshot   Snapshot
	Capture    Capture
	Monitoring monitoring.Config
	Debug      bool
}

type Reader struct {
	// Kind is usb, fake or stream.
	Kind string
	// Backend of local devices is opencv, v4l2 or pattern,
	// of streams it is rtsp or pattern.
	Backend   string
	Device    int
	MaxWidth  int `fig:"max_width"`
	MaxHeight int `fig:"max_height"`
}

type Retry struct {
	Warmup int
	Read   int
	Lock   struct {
		Initial  time.Duration
		Max      time.Duration
		Factor   float64
		Attempts int
		Dir      string
	}
	// StreamTimeout bounds the wait for a streamed frame, 0 waits forever.
	StreamTimeout time.Duration `fig:"stream_timeout"`
}

type Stream struct {
	Address  string
	Port     int
	User     string
	Password string
	Path     string
}

type Output struct {
	Width    int
	Height   int
	Channels int
	Crop     bool
	Flip     bool
	FlipMode int `fig:"flip_mode"`
	// Scale is bilinear, nearest, approx or catmullrom.
	Scale string
}

type Balance struct {
	Global bool
	Face   bool
}

type Snapshot struct {
	Dir         string
	Name        string
	Label       bool
	Every       int
	Compression int
}

type Capture struct {
	// Frames to read, 0 reads until interrupted.
	Frames   int
	Interval time.Duration
}

// Default is the configuration used for everything the file leaves out.
func Default() Config {
	var c Config
	c.Reader.Kind = "usb"
	c.Reader.Backend = "opencv"
	c.Reader.MaxWidth = 1980
	c.Reader.MaxHeight = 1080
	c.Retry.Warmup = 1000
	c.Retry.Read = 100
	c.Retry.Lock.Initial = time.Millisecond
	c.Retry.Lock.Max = 16 * time.Millisecond
	c.Retry.Lock.Factor = 2
	c.Stream.Port = 554
	c.Stream.Path = "/MPEG-4/ch1/main/av_stream"
	c.Output.Channels = 3
	c.Output.Crop = true
	c.Output.Scale = "bilinear"
	c.Snapshot.Every = 0
	c.Snapshot.Label = true
	c.Capture.Interval = 40 * time.Millisecond
	c.Monitoring.Port = 6601
	return c
}

// WithFlags binds command line flags over the loaded values.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringVar(&c.Reader.Kind, "kind", c.Reader.Kind, "Reader kind: usb, fake or stream")
	fs.StringVar(&c.Reader.Backend, "backend", c.Reader.Backend, "Capture backend: opencv, v4l2, rtsp or pattern")
	fs.IntVarP(&c.Reader.Device, "device", "d", c.Reader.Device, "Capture device index")
	fs.StringVar(&c.Stream.Address, "stream.address", c.Stream.Address, "Network camera address")
	fs.IntVar(&c.Stream.Port, "stream.port", c.Stream.Port, "Network camera port")
	fs.StringVar(&c.Stream.User, "stream.user", c.Stream.User, "Network camera user")
	fs.StringVar(&c.Stream.Password, "stream.password", c.Stream.Password, "Network camera password")
	fs.IntVar(&c.Output.Width, "width", c.Output.Width, "Output frame width")
	fs.IntVar(&c.Output.Height, "height", c.Output.Height, "Output frame height")
	fs.IntVar(&c.Output.Channels, "channels", c.Output.Channels, "Output channels: 1, 3 or 4")
	fs.BoolVar(&c.Output.Crop, "crop", c.Output.Crop, "Keep the aspect ratio when resizing")
	fs.BoolVar(&c.Balance.Global, "balance.global", c.Balance.Global, "Apply the global color balance")
	fs.BoolVar(&c.Balance.Face, "balance.face", c.Balance.Face, "Apply the skin tone balance")
	fs.StringVar(&c.Snapshot.Dir, "snapshot.dir", c.Snapshot.Dir, "Directory of saved frames")
	fs.IntVar(&c.Snapshot.Every, "snapshot.every", c.Snapshot.Every, "Save every n-th frame, 0 disables")
	fs.IntVarP(&c.Capture.Frames, "frames", "n", c.Capture.Frames, "Frames to capture, 0 runs until interrupted")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Debug logs")
	return c
}
