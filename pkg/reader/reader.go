// Package reader is the camera reader API: it polls a frame source and
// hands out normalized frames.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/theia-vision/camreader/pkg/device"
	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/network"
	"github.com/theia-vision/camreader/pkg/source"
)

const (
	DefaultMaxWidth  = 1980
	DefaultMaxHeight = 1080
)

var ErrNotLoggedIn = errors.New("reader: not logged in")

type Reader struct {
	id  uuid.UUID
	src source.Source
	log *logger.Logger

	mu   sync.Mutex
	last *frame.Buffer

	net *netState
}

// netState is the login state of readers that pretend to be network cameras.
type netState struct {
	mu      sync.Mutex
	client  network.Client
	stream  *source.Stream
	session network.Session
	online  bool
	code    int
}

func newReader(src source.Source, log *logger.Logger, name string) *Reader {
	id := uuid.Must(uuid.NewV4())
	log = logger.Or(log)
	log = log.Extend(log.With().Str("reader", id.String()[:8])).Device(name)
	return &Reader{id: id, src: src, log: log}
}

func maxSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return DefaultMaxWidth, DefaultMaxHeight
	}
	return w, h
}

// NewUSB makes a reader of the capture device index shared through reg.
// It fails with device.ErrDeviceNotFound or device.ErrNoInput.
func NewUSB(ctx context.Context, reg *device.Registry, index, maxW, maxH int, log *logger.Logger) (*Reader, error) {
	maxW, maxH = maxSize(maxW, maxH)
	usb, err := source.NewUSB(ctx, reg, index, maxW, maxH)
	if err != nil {
		return nil, err
	}
	return newReader(usb, log, fmt.Sprintf("usb:%d", index)), nil
}

// NewFake makes a network-like reader that reads the local device index.
// Its Login and Logout always succeed.
func NewFake(ctx context.Context, reg *device.Registry, index, maxW, maxH int, log *logger.Logger) (*Reader, error) {
	maxW, maxH = maxSize(maxW, maxH)
	usb, err := source.NewUSB(ctx, reg, index, maxW, maxH)
	if err != nil {
		return nil, err
	}
	r := newReader(source.NewFake(usb), log, fmt.Sprintf("fake:%d", index))
	r.net = &netState{}
	return r, nil
}

// NewNetwork makes a reader of network cameras reached through client.
// Frames flow after Login. A positive timeout bounds the wait for a frame.
func NewNetwork(client network.Client, maxW, maxH int, timeout time.Duration, log *logger.Logger) *Reader {
	maxW, maxH = maxSize(maxW, maxH)
	stream := source.NewStream(maxW, maxH, timeout, log)
	r := newReader(stream, log, "stream")
	r.net = &netState{client: client, stream: stream}
	return r
}

func (r *Reader) ID() string         { return r.id.String() }
func (r *Reader) Kind() source.Kind  { return r.src.Kind() }
func (r *Reader) DefaultWidth() int  { w, _ := r.src.Dimensions(); return w }
func (r *Reader) DefaultHeight() int { _, h := r.src.Dimensions(); return h }

// Image fetches a frame and normalizes it with o.
// An empty buffer means no frame was available.
func (r *Reader) Image(ctx context.Context, o Options) (*frame.Buffer, error) {
	raw, err := r.RawImage(ctx)
	if err != nil {
		return nil, err
	}
	w, h := r.src.Dimensions()
	if r.src.Kind() == source.KindStream {
		// stream frames carry their own size
		w, h = raw.W, raw.H
	}
	img := Normalize(raw, w, h, o)

	r.mu.Lock()
	r.last = img
	r.mu.Unlock()
	return img, nil
}

// RawImage fetches a frame as the source produced it.
// Stream frames are only valid until the next fetch.
func (r *Reader) RawImage(ctx context.Context) (*frame.Buffer, error) {
	if r.net != nil && r.net.stream != nil && !r.Online() {
		return nil, ErrNotLoggedIn
	}
	return r.src.Fetch(ctx)
}

// LastImage returns the last frame made by Image.
func (r *Reader) LastImage() *frame.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return frame.New(0, 0, 3)
	}
	return r.last
}

// Login opens a session with a network camera, a reader already online
// logs out first. Login failures are *network.LoginError values.
func (r *Reader) Login(ctx context.Context, cred network.Credentials) error {
	n := r.net
	if n == nil {
		return fmt.Errorf("reader: %v readers do not log in", r.Kind())
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client == nil {
		n.online = true
		return nil
	}
	if n.online {
		r.logout(n)
	}
	session, err := n.client.Login(ctx, cred, n.stream.Deliver)
	if err != nil {
		n.code = network.Code(err)
		r.log.Error().Err(err).Str("camera", cred.String()).Msg("login failed")
		return err
	}
	n.session, n.online, n.code = session, true, network.CodeOK
	r.log.Info().Str("camera", cred.String()).Msg("logged in")
	return nil
}

func (r *Reader) Logout() error {
	n := r.net
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return r.logout(n)
}

func (r *Reader) logout(n *netState) (err error) {
	if n.session != nil {
		err = n.session.Logout()
		n.session = nil
		r.log.Info().Msg("logged out")
	}
	n.online = false
	return err
}

func (r *Reader) Online() bool {
	if r.net == nil {
		return false
	}
	r.net.mu.Lock()
	defer r.net.mu.Unlock()
	return r.net.online
}

// LastError explains the result of the last Login.
func (r *Reader) LastError() string {
	n := r.net
	if n == nil || n.client == nil {
		return network.ErrorMessage(network.CodeOK)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.client.ErrorMessage(n.code)
}

// Close logs out and releases the source.
func (r *Reader) Close() error {
	err := r.Logout()
	if cerr := r.src.Close(); err == nil {
		err = cerr
	}
	return err
}
