package monitoring

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theia-vision/camreader/pkg/config/monitoring"
	"github.com/theia-vision/camreader/pkg/logger"
)

func TestMetricsEndpoint(t *testing.T) {
	m := New(monitoring.Config{URLPrefix: "/cam", MetricEnabled: true}, logger.Nop())

	FrameFetched("usb", false)
	FrameFetched("usb", true)
	DeviceUsage(5, 2)
	BalanceAborted()
	FrameDropped()

	rec := httptest.NewRecorder()
	m.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/cam/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`camreader_frames_total{source="usb"} 1`,
		`camreader_empty_frames_total{source="usb"} 1`,
		`camreader_device_usage{device="5"} 2`,
		`camreader_balance_aborted_total 1`,
		`camreader_mailbox_dropped_total 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output has no %q", want)
		}
	}
}

func TestProfilingDisabled(t *testing.T) {
	m := New(monitoring.Config{MetricEnabled: true}, logger.Nop())
	rec := httptest.NewRecorder()
	m.server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/pprof/", nil))
	if rec.Code != 404 {
		t.Errorf("pprof should not be served, got %d", rec.Code)
	}
}
