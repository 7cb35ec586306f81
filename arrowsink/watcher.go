package arrowsink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aristanetworks/fsnotify"
	"github.com/arrowtable/arrowtable/logger"
)

// TraceHandler is called once for every trace file that appears in a
// watched directory. The handler owns opening and closing the file.
type TraceHandler func(path string) error

// TraceFileWatcher watches a directory for new trace files and invokes
// a TraceHandler for each one as it is created.
type TraceFileWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}
	log     logger.Logger
	handle  TraceHandler
}

// NewTraceFileWatcher starts watching dir. Files already present when
// the watcher starts are not replayed; only subsequent Create events
// are handled, matching how a log-shipping directory is normally
// drained by a tailing consumer.
func NewTraceFileWatcher(dir string, log logger.Logger, handle TraceHandler) (*TraceFileWatcher, error) {
	if handle == nil {
		return nil, fmt.Errorf("arrowsink: nil TraceHandler")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	w := &TraceFileWatcher{
		dir:     dir,
		watcher: fsWatcher,
		done:    make(chan struct{}),
		log:     log,
		handle:  handle,
	}
	go w.watch()
	return w, nil
}

func (w *TraceFileWatcher) watch() {
	for {
		select {
		case <-w.done:
			go func() {
				// Drain pending events so Close doesn't block.
				for range w.watcher.Events {
				}
			}()
			w.watcher.Close()
			return
		case ev := <-w.watcher.Events:
			if ev.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
				continue
			}
			if err := w.handle(filepath.Clean(ev.Name)); err != nil {
				w.log.Errorf("arrowsink: handling trace file %s: %s", ev.Name, err)
			}
		case err := <-w.watcher.Errors:
			w.log.Infof("arrowsink: watcher error on %s: %s", w.dir, err)
		}
	}
}

// Close stops the watcher.
func (w *TraceFileWatcher) Close() {
	close(w.done)
}
