package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/kiln/internal/logger"
)

// Watcher reports writes to a fixed set of files. Parent directories are
// watched rather than the files so editors that save by rename are seen.
type Watcher struct {
	fw    *fsnotify.Watcher
	files map[string]bool
	done  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	pending []string
}

// NewWatcher starts watching files.
func NewWatcher(files []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}

	w := &Watcher{
		fw:    fw,
		files: make(map[string]bool, len(files)),
		done:  make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		f = filepath.Clean(f)
		w.files[f] = true
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watcher: %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if !w.files[name] {
				continue
			}
			w.mu.Lock()
			w.pending = append(w.pending, name)
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Drain returns the files changed since the last call, each once, in the
// order they first changed. It never blocks.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	seen := make(map[string]bool, len(pending))
	out := pending[:0]
	for _, f := range pending {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
