package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

const sample = `
reader:
  kind: stream
  backend: pattern
  max_width: 704
  max_height: 576
retry:
  read: 7
  lock:
    initial: 2ms
  stream_timeout: 3s
output:
  width: 320
  height: 240
  crop: false
  flip_mode: -1
balance:
  face: true
monitoring:
  port: 9000
  metric_enabled: true
`

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, sample)

	conf, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if conf.Reader.Kind != "stream" || conf.Reader.MaxWidth != 704 || conf.Reader.MaxHeight != 576 {
		t.Errorf("reader = %+v", conf.Reader)
	}
	if conf.Retry.Read != 7 || conf.Retry.Lock.Initial != 2*time.Millisecond || conf.Retry.StreamTimeout != 3*time.Second {
		t.Errorf("retry = %+v", conf.Retry)
	}
	if conf.Output.Crop || conf.Output.FlipMode != -1 || conf.Output.Width != 320 {
		t.Errorf("output = %+v", conf.Output)
	}
	if !conf.Monitoring.MetricEnabled || conf.Monitoring.Port != 9000 {
		t.Errorf("monitoring = %+v", conf.Monitoring)
	}
	// absent keys keep their defaults
	if conf.Retry.Warmup != 1000 || conf.Output.Channels != 3 || conf.Stream.Port != 554 || conf.Retry.Lock.Max != 16*time.Millisecond {
		t.Errorf("defaults lost: %+v", conf)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, FileName, sample)
	t.Setenv("CAMREADER_READER_DEVICE", "5")
	t.Setenv("CAMREADER_STREAM_PASSWORD", "secret")

	conf, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Reader.Device != 5 || conf.Stream.Password != "secret" {
		t.Errorf("env was not applied: %+v %+v", conf.Reader, conf.Stream)
	}
}

func TestLoadMissingFile(t *testing.T) {
	conf, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if *conf != Default() {
		t.Errorf("Load() without a file = %+v", conf)
	}
}

func TestLoadCustomFile(t *testing.T) {
	p := write(t, t.TempDir(), "lab.yaml", "reader:\n  device: 3\n")
	conf, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Reader.Device != 3 {
		t.Errorf("device = %d", conf.Reader.Device)
	}
	if Locate(p) != p {
		t.Errorf("Locate() = %q", Locate(p))
	}
	if Locate(t.TempDir()) != "" {
		t.Errorf("Locate() found a file in an empty dir")
	}
}

func TestWithFlags(t *testing.T) {
	conf := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	conf.WithFlags(fs)
	if err := fs.Parse([]string{"-d", "2", "--width", "640", "--balance.global", "--crop=false"}); err != nil {
		t.Fatal(err)
	}
	if conf.Reader.Device != 2 || conf.Output.Width != 640 || !conf.Balance.Global || conf.Output.Crop {
		t.Errorf("flags not applied: %+v", conf)
	}
	if conf.Output.Channels != 3 {
		t.Errorf("untouched flag changed the value")
	}
}

func TestPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"--conf", "/etc/camreader.yaml", "--width", "3"}, want: "/etc/camreader.yaml"},
		{args: []string{"-d", "1", "-c", "configs"}, want: "configs"},
		{args: []string{"--list"}, want: ""},
	}
	for _, tt := range tests {
		if got := PathFromArgs(tt.args); got != tt.want {
			t.Errorf("PathFromArgs(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestLoadEnvWithoutFile(t *testing.T) {
	t.Setenv("CAMREADER_OUTPUT_WIDTH", "160")
	conf, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if conf.Output.Width != 160 {
		t.Errorf("width = %d", conf.Output.Width)
	}
}
