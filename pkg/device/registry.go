package device

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/lock"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/monitoring"
	"github.com/theia-vision/camreader/pkg/os"
)

type Options struct {
	// WarmupAttempts is the number of reads a freshly opened device
	// is given to produce its first non-empty frame.
	WarmupAttempts int
	// ReadAttempts is the number of reads per fetch until a non-empty frame.
	ReadAttempts int
	// LockBackoff paces the wait for a device another reader is using.
	LockBackoff lock.Backoff
	// LockDir, when set, keeps a lock file per opened device there,
	// so two processes never share one camera.
	LockDir string
}

var DefaultOptions = Options{
	WarmupAttempts: 1000,
	ReadAttempts:   100,
	LockBackoff:    lock.DefaultBackoff,
}

func (o Options) withDefaults() Options {
	if o.WarmupAttempts <= 0 {
		o.WarmupAttempts = DefaultOptions.WarmupAttempts
	}
	if o.ReadAttempts <= 0 {
		o.ReadAttempts = DefaultOptions.ReadAttempts
	}
	if o.LockBackoff.Initial <= 0 {
		o.LockBackoff = DefaultOptions.LockBackoff
	}
	return o
}

// Registry maps device indices to opened devices.
// A device stays open while at least one handle to it is not released.
type Registry struct {
	provider Provider
	opts     Options
	log      *logger.Logger

	mu      sync.Mutex
	devices map[int]*shared
	// gates serialize the opening of one index without blocking the others
	gates map[int]*sync.Mutex
}

type shared struct {
	index int
	cap   Capture
	w, h  int
	usage int
	mu    *lock.Mutex
	file  *os.Flock

	closed atomic.Bool
}

// Handle is one reader's reference to a shared device.
type Handle struct {
	r        *Registry
	d        *shared
	released atomic.Bool
}

func NewRegistry(provider Provider, opts Options, log *logger.Logger) *Registry {
	return &Registry{
		provider: provider,
		opts:     opts.withDefaults(),
		log:      logger.Or(log),
		devices:  make(map[int]*shared),
		gates:    make(map[int]*sync.Mutex),
	}
}

// Acquire returns a handle to the device index, opening it on first use.
// A new device is asked for maxW x maxH frames and has to produce a frame
// within the warm-up budget or ErrNoInput is returned.
func (r *Registry) Acquire(ctx context.Context, index, maxW, maxH int) (*Handle, error) {
	gate := r.gate(index)
	gate.Lock()
	defer gate.Unlock()

	if h := r.share(index); h != nil {
		return h, nil
	}
	d, err := r.open(ctx, index, maxW, maxH)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[index] = d
	return r.use(d), nil
}

func (r *Registry) gate(index int) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gates[index]
	if !ok {
		g = &sync.Mutex{}
		r.gates[index] = g
	}
	return g
}

// share returns a new handle of an already opened device or nil.
func (r *Registry) share(index int) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[index]; ok {
		return r.use(d)
	}
	return nil
}

func (r *Registry) use(d *shared) *Handle {
	d.usage++
	monitoring.DeviceUsage(d.index, d.usage)
	r.log.Debug().Int("device", d.index).Int("usage", d.usage).Msg("device acquired")
	return &Handle{r: r, d: d}
}

func (r *Registry) open(ctx context.Context, index, maxW, maxH int) (d *shared, err error) {
	log := r.log.Device(fmt.Sprintf("usb:%d", index))

	var file *os.Flock
	if r.opts.LockDir != "" {
		if file, err = os.NewFileLock(filepath.Join(r.opts.LockDir, fmt.Sprintf("video%d.lock", index))); err != nil {
			return nil, err
		}
		lctx, cancel := context.WithTimeout(ctx, r.opts.LockBackoff.Initial*10)
		err = file.TryLock(lctx, r.opts.LockBackoff.Initial)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: %d (%v)", ErrDeviceBusy, index, err)
		}
		defer func() {
			if err != nil {
				_ = file.Unlock()
			}
		}()
	}

	c, err := r.provider.Open(index)
	if err != nil || c == nil {
		log.Error().Err(err).Msg("device not found")
		return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, index)
	}
	if err := c.SetResolution(maxW, maxH); err != nil {
		log.Warn().Err(err).Msgf("could not request %vx%v", maxW, maxH)
	}

	attempt := 0
	for ; attempt < r.opts.WarmupAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			_ = c.Close()
			return nil, err
		}
		if f, rerr := c.Read(); rerr == nil && !f.Empty() {
			break
		}
	}
	if attempt == r.opts.WarmupAttempts {
		_ = c.Close()
		log.Error().Int("attempts", attempt).Msg("device has no input")
		return nil, fmt.Errorf("%w: %d", ErrNoInput, index)
	}

	w, h := c.Resolution()
	log.Info().Msgf("device opened %vx%v after %v reads", w, h, attempt+1)
	return &shared{index: index, cap: c, w: w, h: h, mu: lock.New(), file: file}, nil
}

// Release drops the handle. The last release of a device closes it.
func (r *Registry) Release(h *Handle) error {
	if h == nil || h.r != r {
		return nil
	}
	if !h.released.CompareAndSwap(false, true) {
		return ErrReleased
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := h.d
	if d.closed.Load() {
		// Close got there first
		return nil
	}
	d.usage--
	monitoring.DeviceUsage(d.index, d.usage)
	r.log.Debug().Int("device", d.index).Int("usage", d.usage).Msg("device released")
	if d.usage > 0 {
		return nil
	}
	if r.devices[d.index] == d {
		delete(r.devices, d.index)
	}
	return d.close()
}

// Usage returns the number of live handles of the device index.
func (r *Registry) Usage(index int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[index]; ok {
		return d.usage
	}
	return 0
}

// Close closes every device regardless of its usage.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result *multierror.Error
	for i, d := range r.devices {
		d.usage = 0
		if err := d.close(); err != nil {
			result = multierror.Append(result, err)
		}
		monitoring.DeviceUsage(i, 0)
		delete(r.devices, i)
	}
	return result.ErrorOrNil()
}

// close waits for a running read and closes the device once.
func (d *shared) close() error {
	if d.closed.Swap(true) {
		return nil
	}
	_ = d.mu.LockRetry(context.Background(), lock.DefaultBackoff)
	defer d.mu.Unlock()

	var result *multierror.Error
	if err := d.cap.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("device %d: %w", d.index, err))
	}
	if d.file != nil {
		if err := d.file.Unlock(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (h *Handle) Index() int { return h.d.index }

// Dimensions returns the resolution the device settled on when opened.
func (h *Handle) Dimensions() (int, int) { return h.d.w, h.d.h }

// Read fetches the next non-empty frame of the device or the last empty one
// when the read budget is exhausted. Reads of one device never overlap.
func (h *Handle) Read(ctx context.Context) (*frame.Buffer, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	if h.d.closed.Load() {
		return nil, ErrClosed
	}
	d, opts := h.d, h.r.opts
	if err := d.mu.LockRetry(ctx, opts.LockBackoff); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()
	if d.closed.Load() {
		return nil, ErrClosed
	}

	var f *frame.Buffer
	for i := 0; i < opts.ReadAttempts; i++ {
		var err error
		if f, err = d.cap.Read(); err == nil && !f.Empty() {
			return f, nil
		}
	}
	h.r.log.Debug().Int("device", d.index).Int("attempts", opts.ReadAttempts).Msg("no frame")
	if f == nil {
		f = &frame.Buffer{Channels: 3}
	}
	return f, nil
}

func (h *Handle) Release() error { return h.r.Release(h) }
