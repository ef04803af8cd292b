package main

import (
	"context"
	"fmt"
	goos "os"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/theia-vision/camreader/pkg/capture"
	"github.com/theia-vision/camreader/pkg/capture/opencv"
	"github.com/theia-vision/camreader/pkg/capture/pattern"
	"github.com/theia-vision/camreader/pkg/capture/v4l2"
	"github.com/theia-vision/camreader/pkg/config"
	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/monitoring"
	"github.com/theia-vision/camreader/pkg/network"
	"github.com/theia-vision/camreader/pkg/os"
	"github.com/theia-vision/camreader/pkg/reader"
	"github.com/theia-vision/camreader/pkg/service"
	"github.com/theia-vision/camreader/pkg/snapshot"
)

var Version = "?"

func provider(conf *config.Config) (device.Provider, error) {
	switch conf.Reader.Backend {
	case "opencv", "":
		return opencv.Provider{}, nil
	case "v4l2":
		return &v4l2.Provider{}, nil
	case "pattern":
		return &pattern.Provider{Devices: 4}, nil
	}
	return nil, fmt.Errorf("unknown device backend %q", conf.Reader.Backend)
}

func client(conf *config.Config, log *logger.Logger) (network.Client, error) {
	switch conf.Reader.Backend {
	case "rtsp", "opencv", "":
		return &opencv.RTSPClient{Path: conf.Stream.Path, Log: log}, nil
	case "pattern":
		return &pattern.Client{}, nil
	}
	return nil, fmt.Errorf("unknown stream backend %q", conf.Reader.Backend)
}

func newReader(ctx context.Context, conf *config.Config, reg *device.Registry, log *logger.Logger) (*reader.Reader, error) {
	maxW, maxH := conf.Reader.MaxWidth, conf.Reader.MaxHeight
	switch conf.Reader.Kind {
	case "usb", "":
		return reader.NewUSB(ctx, reg, conf.Reader.Device, maxW, maxH, log)
	case "fake":
		return reader.NewFake(ctx, reg, conf.Reader.Device, maxW, maxH, log)
	case "stream":
		c, err := client(conf, log)
		if err != nil {
			return nil, err
		}
		r := reader.NewNetwork(c, maxW, maxH, conf.Retry.StreamTimeout, log)
		cred := network.Credentials{
			Address:  conf.Stream.Address,
			Port:     conf.Stream.Port,
			User:     conf.Stream.User,
			Password: conf.Stream.Password,
		}
		if err := r.Login(ctx, cred); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("login to %v: %w (%v)", cred, err, r.LastError())
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown reader kind %q", conf.Reader.Kind)
}

func list(ctx context.Context, p device.Provider, log *logger.Logger) {
	for _, index := range device.Enumerate(ctx, p, device.DefaultDrivers, log) {
		fmt.Println(index)
	}
}

func main() {
	path := config.PathFromArgs(goos.Args[1:])
	conf, err := config.Load(path)
	if err != nil {
		logger.Default().Fatal().Err(err).Msg("config")
	}
	flag.StringP("conf", "c", path, "Set custom configuration file path")
	listOnly := flag.Bool("list", false, "List the capture devices that deliver frames and exit")
	conf.WithFlags(flag.CommandLine)
	flag.Parse()

	log := logger.NewConsole(conf.Debug, "cam", false)
	log.Info().Msgf("version %s", Version)
	log.Debug().Msgf("config: %+v", conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := provider(conf)
	if err != nil && (conf.Reader.Kind != "stream" || *listOnly) {
		log.Fatal().Err(err).Msg("backend")
	}
	if *listOnly {
		list(ctx, p, log)
		return
	}

	reg := device.NewRegistry(p, capture.RegistryOptions(conf), log)
	defer func() {
		if err := reg.Close(); err != nil {
			log.Error().Err(err).Msg("device shutdown errors")
		}
	}()

	r, err := newReader(ctx, conf, reg, log)
	if err != nil {
		log.Error().Err(err).Msg("reader")
		return
	}
	defer func() { _ = r.Close() }()

	var snap *snapshot.Writer
	if conf.Snapshot.Every > 0 {
		if snap, err = snapshot.New(capture.SnapshotOptions(conf), log); err != nil {
			log.Error().Err(err).Msg("snapshot")
			return
		}
	}

	name := fmt.Sprintf("%v:%v", r.Kind(), conf.Reader.Device)
	loop := capture.NewLoop(r, name, snap, capture.OptionsFrom(conf), log)

	var services service.Group
	if conf.Monitoring.IsEnabled() {
		services.Add(monitoring.New(conf.Monitoring, log))
	}
	if w, err := config.NewWatcher(path, log, func(c *config.Config) { loop.Apply(capture.OptionsFrom(c)) }); err == nil {
		services.Add(w)
	} else {
		log.Debug().Err(err).Msg("config is not watched")
	}
	services.Add(loop)
	services.Start()

	select {
	case <-os.ExpectTermination():
	case <-loop.Done():
	}

	sctx, scancel := context.WithTimeout(ctx, 5*time.Second)
	defer scancel()
	if err := services.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("service shutdown errors")
	}
}
