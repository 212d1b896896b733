package engine

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/piecetree/internal/logging"
)

// fileStamp identifies one version of a file on disk.
type fileStamp struct {
	size    int64
	modTime time.Time
}

func statStamp(path string) (fileStamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{size: fi.Size(), modTime: fi.ModTime()}, nil
}

// sourceWatcher watches the directory holding a file, so replacement by
// rename is seen as well as writes in place. A change is reported when
// the file's stamp no longer matches the last one the document read or
// wrote.
type sourceWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *logging.Logger

	mu      sync.Mutex
	known   fileStamp
	changed atomic.Bool
	notify  chan struct{}

	closeCh chan struct{}
	wg      sync.WaitGroup
}

func newSourceWatcher(path string, log *logging.Logger) (*sourceWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	stamp, err := statStamp(abs)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}

	w := &sourceWatcher{
		path:    abs,
		watcher: fsw,
		log:     log,
		known:   stamp,
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *sourceWatcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			w.check(ev.Op)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch %s: %v", w.path, err)
		}
	}
}

func (w *sourceWatcher) check(op fsnotify.Op) {
	stamp, err := statStamp(w.path)

	w.mu.Lock()
	same := err == nil && stamp == w.known
	w.mu.Unlock()
	if same {
		return
	}

	w.log.Debug("source %s changed (%s)", w.path, op)
	w.changed.Store(true)
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// accept records the file's current stamp as the document's own version
// and clears the changed flag.
func (w *sourceWatcher) accept() {
	stamp, err := statStamp(w.path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.known = stamp
	w.mu.Unlock()
	w.changed.Store(false)
	select {
	case <-w.notify:
	default:
	}
}

func (w *sourceWatcher) close() error {
	close(w.closeCh)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
