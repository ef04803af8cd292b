package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/theia-vision/camreader/pkg/logger"
)

var ErrNoFile = errors.New("no configuration file")

// Watcher reloads the configuration file each time it is written
// and hands the new values to onChange.
type Watcher struct {
	file     string
	onChange func(*Config)
	w        *fsnotify.Watcher
	log      *logger.Logger
	done     chan struct{}
	once     sync.Once
}

func NewWatcher(path string, log *logger.Logger, onChange func(*Config)) (*Watcher, error) {
	file := Locate(path)
	if file == "" {
		return nil, ErrNoFile
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so the directory is watched
	if err = w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Watcher{
		file:     filepath.Clean(file),
		onChange: onChange,
		w:        w,
		log:      logger.Or(log),
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Run() {
	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-w.w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.file {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					w.reload()
				}
			case err, ok := <-w.w.Errors:
				if !ok {
					return
				}
				w.log.Warn().Err(err).Msg("config watch")
			}
		}
	}()
	w.log.Info().Msgf("Watching %v", w.file)
}

func (w *Watcher) reload() {
	conf, err := Load(w.file)
	if err != nil {
		// likely a half written file, the next write event retries
		w.log.Warn().Err(err).Msgf("config reload of %v", w.file)
		return
	}
	w.log.Debug().Msg("config reloaded")
	if w.onChange != nil {
		w.onChange(conf)
	}
}

func (w *Watcher) Shutdown(ctx context.Context) (err error) {
	w.once.Do(func() { err = w.w.Close() })
	if err != nil {
		return err
	}
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (w *Watcher) String() string { return fmt.Sprintf("config watcher %v", w.file) }
