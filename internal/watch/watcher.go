// Package watch monitors an inbox directory and reports files once they have
// stopped changing. Editors and copy tools often write a file in several
// chunks, so each path is debounced on the trailing edge.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/brettadin/Anything-SpecApp/internal/logging"
)

// DefaultDebounce is the quiet period a file needs before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Suffixes of partial or editor files that never trigger a callback.
var ignoreSuffixes = []string{".tmp", ".part", ".crdownload", ".swp", "~"}

// Watcher reports files created or written in a single directory.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	log      logging.Logger

	mu      sync.Mutex
	pending map[string]*pendingFile
	running sync.WaitGroup
	done    chan struct{}
	stopped bool
}

type pendingFile struct {
	timer *time.Timer
}

// New creates a watcher. A debounce of 0 uses DefaultDebounce; a nil logger
// discards messages.
func New(debounce time.Duration, log logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		log:      logging.OrNoOp(log),
		pending:  make(map[string]*pendingFile),
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring dir. onReady is called with the absolute path of
// each file once no event has arrived for it during the debounce interval.
func (w *Watcher) Watch(dir string, onReady func(path string)) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := w.fw.Add(abs); err != nil {
		return err
	}
	w.log.Debug("watching directory", logging.Fields{"dir": abs, "debounce": w.debounce.String()})

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if shouldIgnore(event.Name) {
					continue
				}
				if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
					continue
				}
				w.schedule(event.Name, onReady)

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				w.log.Error(err, "watch error")

			case <-w.done:
				return
			}
		}
	}()
	return nil
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string, onReady func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if prev, ok := w.pending[path]; ok {
		prev.timer.Stop()
	}
	p := &pendingFile{}
	p.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.stopped || w.pending[path] != p {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.running.Add(1)
		w.mu.Unlock()
		defer w.running.Done()
		onReady(path)
	})
	w.pending[path] = p
}

// Stop ends monitoring, drops pending files and waits for callbacks already
// in progress to return. Safe to call multiple times; must not be called from
// inside onReady.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		w.running.Wait()
		return nil
	}
	w.stopped = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	err := w.fw.Close()
	w.mu.Unlock()

	w.running.Wait()
	return err
}

// shouldIgnore reports hidden files and partial downloads.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, s := range ignoreSuffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}
