// Package capture runs the read, balance and save cycle of one reader.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theia-vision/camreader/pkg/balance"
	"github.com/theia-vision/camreader/pkg/config"
	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/lock"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/reader"
	"github.com/theia-vision/camreader/pkg/snapshot"
	"github.com/theia-vision/camreader/pkg/source"
)

type Options struct {
	Output  reader.Options
	Balance balance.Mode
	// Frames to capture, 0 runs until shutdown.
	Frames int
	// Interval between two reads.
	Interval time.Duration
	// SnapshotEvery saves each n-th frame, 0 saves none.
	SnapshotEvery int
}

// OptionsFrom picks the loop options out of a configuration.
func OptionsFrom(conf *config.Config) Options {
	o := Options{
		Output: reader.Options{
			Width:    conf.Output.Width,
			Height:   conf.Output.Height,
			Channels: conf.Output.Channels,
			Crop:     conf.Output.Crop,
			Flip:     conf.Output.Flip,
			FlipMode: conf.Output.FlipMode,
			Scale:    frame.ParseInterpolation(conf.Output.Scale),
		},
		Frames:        conf.Capture.Frames,
		Interval:      conf.Capture.Interval,
		SnapshotEvery: conf.Snapshot.Every,
	}
	if conf.Balance.Global {
		o.Balance |= balance.ModeGlobal
	}
	if conf.Balance.Face {
		o.Balance |= balance.ModeFace
	}
	return o
}

// RegistryOptions picks the device registry options out of a configuration.
func RegistryOptions(conf *config.Config) device.Options {
	return device.Options{
		WarmupAttempts: conf.Retry.Warmup,
		ReadAttempts:   conf.Retry.Read,
		LockBackoff: lock.Backoff{
			Initial:  conf.Retry.Lock.Initial,
			Max:      conf.Retry.Lock.Max,
			Factor:   conf.Retry.Lock.Factor,
			Attempts: conf.Retry.Lock.Attempts,
		},
		LockDir: conf.Retry.Lock.Dir,
	}
}

// SnapshotOptions picks the snapshot writer options out of a configuration.
func SnapshotOptions(conf *config.Config) snapshot.Options {
	return snapshot.Options{
		Dir:         conf.Snapshot.Dir,
		Name:        conf.Snapshot.Name,
		Label:       conf.Snapshot.Label,
		Compression: conf.Snapshot.Compression,
	}
}

// Loop reads frames from a reader at a fixed pace.
type Loop struct {
	r    *reader.Reader
	name string
	snap *snapshot.Writer
	log  *logger.Logger

	opts   atomic.Pointer[Options]
	frames atomic.Uint64
	saved  atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewLoop makes a loop over r, snap may be nil.
func NewLoop(r *reader.Reader, name string, snap *snapshot.Writer, o Options, log *logger.Logger) *Loop {
	l := &Loop{
		r:    r,
		name: name,
		snap: snap,
		log:  logger.Or(log).Device(name),
		done: make(chan struct{}),
	}
	l.opts.Store(&o)
	return l
}

// Apply replaces the options from the next frame on.
func (l *Loop) Apply(o Options) {
	l.opts.Store(&o)
	l.log.Info().Msgf("capture options: %vx%v, %v channels, balance %v",
		o.Output.Width, o.Output.Height, o.Output.Channels, o.Balance)
}

// Frames returns the number of non-empty frames read so far.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Saved returns the number of frames written to disk.
func (l *Loop) Saved() uint64 { return l.saved.Load() }

// Done is closed when the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		defer close(l.done)
		l.run(ctx)
	}()
}

func (l *Loop) run(ctx context.Context) {
	l.log.Info().Msgf("capture started, default size %vx%v", l.r.DefaultWidth(), l.r.DefaultHeight())
	defer l.log.Info().Msgf("capture stopped after %v frames", l.frames.Load())

	for {
		o := l.opts.Load()
		if o.Frames > 0 && l.frames.Load() >= uint64(o.Frames) {
			return
		}
		start := time.Now()
		if err := l.step(ctx, o); err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, source.ErrClosed) || errors.Is(err, reader.ErrNotLoggedIn) {
				l.log.Error().Err(err).Msg("capture")
				return
			}
			l.log.Warn().Err(err).Msg("capture")
		}
		if wait := o.Interval - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

func (l *Loop) step(ctx context.Context, o *Options) error {
	img, err := l.r.Image(ctx, o.Output)
	if err != nil {
		return err
	}
	if img.Empty() {
		l.log.Trace().Msg("no frame")
		return nil
	}
	// degenerate frames are kept as read, Balance already reports them
	_ = balance.Balance(img, o.Balance, l.log)

	n := l.frames.Add(1)
	if l.snap == nil || o.SnapshotEvery <= 0 || n%uint64(o.SnapshotEvery) != 0 {
		return nil
	}
	path, err := l.snap.Write(img, l.name, time.Now())
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	l.saved.Add(1)
	l.log.Debug().Msgf("saved %v", path)
	return nil
}

func (l *Loop) Shutdown(ctx context.Context) error {
	l.once.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
	})
	if l.cancel == nil {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) String() string { return fmt.Sprintf("capture loop %v", l.name) }
