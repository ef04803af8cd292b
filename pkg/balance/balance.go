// Package balance corrects the colors of camera frames: a histogram
// stretch of the whole image and a skin tone shift for face crops.
package balance

import (
	"errors"
	"fmt"

	"github.com/theia-vision/camreader/pkg/frame"
	"github.com/theia-vision/camreader/pkg/logger"
	"github.com/theia-vision/camreader/pkg/monitoring"
)

var (
	ErrDegenerateHistogram = errors.New("balance: unable to balance, not enough color spread")
	ErrUnsupportedChannels = errors.New("balance: unsupported number of channels")
)

type Mode uint8

const (
	ModeGlobal Mode = 1 << iota
	ModeFace
)

func (m Mode) Has(o Mode) bool { return m&o != 0 }

func (m Mode) String() string {
	switch m {
	case 0:
		return "none"
	case ModeGlobal:
		return "global"
	case ModeFace:
		return "face"
	case ModeGlobal | ModeFace:
		return "global+face"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Balance corrects b in place. Gray frames are equalized whatever the mode.
// When the global stretch is impossible the frame is left as it was,
// the face correction is skipped too and ErrDegenerateHistogram is returned.
func Balance(b *frame.Buffer, mode Mode, log *logger.Logger) error {
	if mode == 0 || b.Empty() {
		return nil
	}
	if b.Channels == 1 {
		Equalize(b)
		return nil
	}
	if mode.Has(ModeGlobal) {
		if err := Global(b); err != nil {
			if errors.Is(err, ErrDegenerateHistogram) {
				monitoring.BalanceAborted()
				logger.Or(log).Warn().Str("frame", b.String()).Msg("Unable to balance!")
			}
			return err
		}
	}
	if mode.Has(ModeFace) {
		return Face(b)
	}
	return nil
}
