package device

import (
	"context"

	"github.com/theia-vision/camreader/pkg/logger"
)

// Driver is a range of device indices served by one capture backend.
type Driver struct {
	Name    string
	Comment string
	Base    int
	Max     int
}

// DefaultDrivers follows the index domains of the OpenCV capture backends,
// each backend owning a hundred ids starting at its base.
var DefaultDrivers = []Driver{
	{Name: "MIL", Comment: "MIL proprietary drivers", Base: 100, Max: 100},
	{Name: "VFW", Comment: "platform native", Base: 200, Max: 10},
	{Name: "FIREWIRE", Comment: "IEEE 1394 drivers", Base: 300, Max: 100},
	{Name: "STEREO", Comment: "TYZX proprietary drivers", Base: 400, Max: 100},
	{Name: "QT", Comment: "QuickTime", Base: 500, Max: 100},
	{Name: "UNICAP", Comment: "Unicap drivers", Base: 600, Max: 100},
	{Name: "DSHOW", Comment: "DirectShow (via videoInput)", Base: 700, Max: 100},
	{Name: "MSMF", Comment: "Microsoft Media Foundation (via videoInput)", Base: 1400, Max: 100},
	{Name: "PVAPI", Comment: "PvAPI, Prosilica GigE SDK", Base: 800, Max: 100},
	{Name: "OPENNI", Comment: "OpenNI (for Kinect)", Base: 900, Max: 100},
	{Name: "OPENNI_ASUS", Comment: "OpenNI (for Asus Xtion)", Base: 910, Max: 100},
	// 98 and 99 are the front and back cameras
	{Name: "ANDROID", Comment: "Android", Base: 1000, Max: 98},
	{Name: "ANDROID_BACK", Comment: "Android back camera", Base: 1099, Max: 1},
	{Name: "ANDROID_FRONT", Comment: "Android front camera", Base: 1098, Max: 1},
	{Name: "XIAPI", Comment: "XIMEA Camera API", Base: 1100, Max: 100},
	{Name: "AVFOUNDATION", Comment: "AVFoundation framework for iOS", Base: 1200, Max: 100},
	{Name: "GIGANETIX", Comment: "Smartek Giganetix GigEVisionSDK", Base: 1300, Max: 100},
	{Name: "INTELPERC", Comment: "Intel Perceptual Computing SDK", Base: 1500, Max: 100},
}

// Enumerate tries every index of the drivers and returns the ones
// that both open and grab a frame.
func Enumerate(ctx context.Context, p Provider, drivers []Driver, log *logger.Logger) []int {
	log = logger.Or(log)
	var found []int
	for _, drv := range drivers {
		log.Debug().Str("driver", drv.Name).Msg("scanning")
		for i := 0; i < drv.Max; i++ {
			if ctx.Err() != nil {
				return found
			}
			index := drv.Base + i
			c, err := p.Open(index)
			if err != nil || c == nil {
				continue
			}
			f, err := c.Read()
			grabs := err == nil && !f.Empty()
			_ = c.Close()
			log.Info().Msgf("%s+%d\t opens: OK \t grabs: %v", drv.Name, i, okFail(grabs))
			if grabs {
				found = append(found, index)
			}
		}
	}
	return found
}

func okFail(v bool) string {
	if v {
		return "OK"
	}
	return "FAIL"
}
