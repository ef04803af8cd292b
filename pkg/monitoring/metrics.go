package monitoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	frames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camreader",
		Name:      "frames_total",
		Help:      "Number of non-empty frames fetched from a source.",
	}, []string{"source"})
	emptyFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camreader",
		Name:      "empty_frames_total",
		Help:      "Number of fetches that ended with an empty frame.",
	}, []string{"source"})
	balanceAborted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "camreader",
		Name:      "balance_aborted_total",
		Help:      "Number of global balance runs aborted on a degenerate histogram.",
	})
	deviceUsage = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camreader",
		Name:      "device_usage",
		Help:      "Number of readers sharing a capture device.",
	}, []string{"device"})
	mailboxDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "camreader",
		Name:      "mailbox_dropped_total",
		Help:      "Number of streamed frames overwritten before anyone claimed them.",
	})
)

func init() {
	prometheus.MustRegister(frames, emptyFrames, balanceAborted, deviceUsage, mailboxDropped)
}

// FrameFetched counts one fetch of the source kind.
func FrameFetched(source string, empty bool) {
	if empty {
		emptyFrames.WithLabelValues(source).Inc()
		return
	}
	frames.WithLabelValues(source).Inc()
}

func BalanceAborted() { balanceAborted.Inc() }

func DeviceUsage(index, usage int) {
	deviceUsage.WithLabelValues(strconv.Itoa(index)).Set(float64(usage))
}

func FrameDropped() { mailboxDropped.Inc() }
