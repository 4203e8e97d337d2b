package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Rules drives event classification by path suffix and location.
type Rules struct {
	SceneSuffix   string // finished scenes, rendered when they appear
	ModelSuffix   string // source model directories, converted on change
	ArchiveSuffix string // zipped sources
	StagingDir    string // directory whose archives are still being written
}

// Router classifies raw filesystem events into queue operations. It runs on
// the watcher's delivery goroutine and never blocks beyond a single queue
// lock. Once stopped it drops everything; events delivered before the stop
// flag was set are processed normally, with no retraction.
type Router struct {
	queues  *Queues
	rules   Rules
	log     *log.Logger
	stopped atomic.Bool
}

func NewRouter(queues *Queues, rules Rules, logger *log.Logger) *Router {
	return &Router{queues: queues, rules: rules, log: logger}
}

// Stop makes all subsequent events no-ops. Write-once, best effort.
func (r *Router) Stop() { r.stopped.Store(true) }

// OnEvent applies the routing rules to one raw event.
func (r *Router) OnEvent(path string, op fsnotify.Op) {
	if r.stopped.Load() {
		return
	}

	if op.Has(fsnotify.Remove) {
		if strings.HasSuffix(path, r.rules.SceneSuffix) {
			if r.queues.Deletes.Push(path) {
				r.log.Printf("delete queued: %s", path)
			}
		}
		return
	}

	if op.Has(fsnotify.Create) || op.Has(fsnotify.Write) {
		if !r.wantsPath(path) {
			return
		}
		if r.queues.Incoming.Push(path) {
			r.log.Printf("queued: %s", path)
		}
	}
}

// wantsPath keeps the original rule shape: the staging-dir suppression
// applies only to archives, not to model or scene paths.
func (r *Router) wantsPath(path string) bool {
	if strings.HasSuffix(path, r.rules.ModelSuffix) || strings.HasSuffix(path, r.rules.SceneSuffix) {
		return true
	}
	if strings.HasSuffix(path, r.rules.ArchiveSuffix) {
		return filepath.Base(filepath.Dir(path)) != r.rules.StagingDir
	}
	return false
}

// Watcher owns the fsnotify instance and forwards its events to a Router.
type Watcher struct {
	fsw    *fsnotify.Watcher
	router *Router
	log    *log.Logger
}

func NewWatcher(router *Router, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, router: router, log: logger}, nil
}

// AddRecursive watches root and every directory below it. Per-directory
// setup failures (permissions, OS watch limits) are logged and skipped; the
// rest of the tree is still watched.
func (w *Watcher) AddRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Printf("watch skip %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Printf("watch add %s: %v", path, err)
		}
		return nil
	})
}

// Run delivers events until ctx is cancelled. Newly created directories are
// added to the watch set so the tree stays covered.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						w.log.Printf("watch add %s: %v", ev.Name, err)
					}
				}
			}
			w.router.OnEvent(ev.Name, ev.Op)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Printf("watch error: %v", err)
		}
	}
}
