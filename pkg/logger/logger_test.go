package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestDeviceField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf).Device("usb:5")
	log.Warn().Msg("no input")

	out := buf.String()
	if !strings.Contains(out, `"dev":"usb:5"`) || !strings.Contains(out, `"message":"no input"`) {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestOr(t *testing.T) {
	if Or(nil) == nil {
		t.Errorf("nil logger should fall back to the default one")
	}
	l := Nop()
	if Or(l) != l {
		t.Errorf("non-nil logger must be kept")
	}
}
