package opencv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/network"
	"gocv.io/x/gocv"
)

var errNotOpened = errors.New("rtsp stream is not opened")

// DefaultPath is the main stream path of most DVRs.
const DefaultPath = "/MPEG-4/ch1/main/av_stream"

// RTSPClient logs into network cameras by opening their RTSP stream,
// for cameras without a vendor SDK.
type RTSPClient struct {
	Path string
	Log  *logger.Logger
}

func (c *RTSPClient) ErrorMessage(code int) string { return network.ErrorMessage(code) }

func (c *RTSPClient) Login(ctx context.Context, cred network.Credentials, sink network.Sink) (network.Session, error) {
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	log := logger.Or(c.Log)
	url := cred.URL("rtsp", path)

	vc, err := gocv.OpenVideoCapture(url)
	if err == nil && (ctx.Err() != nil || !vc.IsOpened()) {
		_ = vc.Close()
		err = errNotOpened
	}
	if err != nil {
		log.Debug().Err(err).Str("camera", cred.String()).Msg("rtsp open failed")
		return nil, &network.LoginError{Code: network.CodeOpenFailed, Message: c.ErrorMessage(network.CodeOpenFailed)}
	}

	s := &rtspSession{vc: vc, done: make(chan struct{})}
	s.wg.Add(1)
	go s.pump(sink, log)
	return s, nil
}

type rtspSession struct {
	vc   *gocv.VideoCapture
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// pump decodes the stream until Logout.
func (s *rtspSession) pump(sink network.Sink, log *logger.Logger) {
	defer s.wg.Done()
	mat := gocv.NewMat()
	defer mat.Close()
	for {
		select {
		case <-s.done:
			return
		default:
		}
		if !s.vc.Read(&mat) || mat.Empty() {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		b, err := toBuffer(mat, 4)
		if err != nil {
			log.Warn().Err(err).Msg("rtsp frame skipped")
			continue
		}
		sink(b.Pix, b.W, b.H)
	}
}

func (s *rtspSession) Logout() error {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return s.vc.Close()
}
