// Package sched drives which files get processed and when: it drains the
// watch queues on a fixed poll interval and enforces the single process-wide
// render slot.
package sched

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vmaxtui/internal/convert"
	"vmaxtui/internal/render"
	"vmaxtui/internal/watch"
)

// ConvertFunc performs the synchronous convert-and-write for one source
// model directory.
type ConvertFunc func(dir string) (convert.Result, error)

// Recorder indexes finished work; implementations must not block.
type Recorder interface {
	RecordConversion(path string, started time.Time, dur time.Duration, models, voxels int, convErr error)
	RecordRender(path string, started time.Time, dur time.Duration, outcome string)
}

// State is a point-in-time view of the scheduler for observers.
type State struct {
	Rendering      bool   `json:"rendering"`
	Active         string `json:"active,omitempty"`
	PendingWork    int    `json:"pending_work"`
	PendingCancels int    `json:"pending_cancels"`
}

// Publisher receives state updates; implementations must not block.
type Publisher interface {
	Publish(State)
}

type Suffixes struct {
	Scene string // finished scenes, rendered asynchronously
	Model string // source models, converted synchronously
}

// Scheduler owns the polling loop. Exactly one goroutine runs it; the
// watcher's goroutine only touches the shared Queues, and the render slot is
// claimed by compare-and-swap on the rendering flag.
type Scheduler struct {
	queues   *watch.Queues
	engine   render.Engine
	conv     ConvertFunc
	suffixes Suffixes
	interval time.Duration
	log      *log.Logger

	Index  Recorder  // optional
	Status Publisher // optional

	rendering atomic.Bool

	// Persistent pending lists, only touched by the scheduler goroutine
	// (and, via Remove, by cancellation handling within it).
	pending *watch.FileQueue
	cancels *watch.FileQueue

	mu           sync.Mutex
	activeJob    render.Job
	activeTarget string

	started time.Time
}

func New(queues *watch.Queues, engine render.Engine, conv ConvertFunc, suffixes Suffixes, interval time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		queues:   queues,
		engine:   engine,
		conv:     conv,
		suffixes: suffixes,
		interval: interval,
		log:      logger,
		pending:  watch.NewFileQueue(),
		cancels:  watch.NewFileQueue(),
	}
}

// Run polls until ctx is cancelled. Undrained queue entries are simply
// dropped on shutdown; there is no durability guarantee.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step executes one polling iteration.
func (s *Scheduler) Step() {
	// Move incoming events onto the persistent lists. Each Pop/Push holds
	// its queue's lock only for that operation.
	for {
		p, ok := s.queues.Incoming.Pop()
		if !ok {
			break
		}
		s.pending.Push(p)
	}
	for {
		p, ok := s.queues.Deletes.Pop()
		if !ok {
			break
		}
		s.cancels.Push(p)
	}

	if s.pending.Empty() {
		// Nothing to cancel against; bound the cancel list.
		s.cancels.Clear()
		s.publish()
		return
	}

	if s.rendering.CompareAndSwap(false, true) {
		if path, ok := s.pending.Pop(); ok {
			s.dispatch(path)
		}
	} else {
		s.drainCancels()
	}
	s.publish()
}

func (s *Scheduler) dispatch(path string) {
	s.queues.Processing.Push(path)
	switch {
	case strings.HasSuffix(path, s.suffixes.Scene):
		s.startRender(path)
	case strings.HasSuffix(path, s.suffixes.Model):
		s.runConvert(path)
	default:
		s.log.Printf("no handler for %s, skipped", path)
		s.queues.Processing.Remove(path)
		s.rendering.Store(false)
	}
}

func (s *Scheduler) startRender(path string) {
	started := time.Now()
	job, err := s.engine.Render(path)
	if err != nil {
		s.log.Printf("render %s: %v", path, err)
		s.queues.Processing.Remove(path)
		s.rendering.Store(false)
		if s.Index != nil {
			s.Index.RecordRender(path, started, time.Since(started), "start_failed")
		}
		return
	}
	s.mu.Lock()
	s.activeJob = job
	s.activeTarget = path
	s.started = started
	s.mu.Unlock()
	s.log.Printf("rendering: %s", path)
	go s.awaitJob(path, job, started)
}

// awaitJob releases the render slot when the engine reports completion,
// independent of the polling cadence.
func (s *Scheduler) awaitJob(path string, job render.Job, started time.Time) {
	err := <-job.Done()

	s.mu.Lock()
	if s.activeTarget == path {
		s.activeJob = nil
		s.activeTarget = ""
	}
	s.mu.Unlock()
	s.queues.Processing.Remove(path)
	s.rendering.Store(false)

	outcome := "done"
	if err != nil {
		outcome = "error"
		s.log.Printf("render %s: %v", path, err)
	} else {
		s.log.Printf("render finished: %s", path)
	}
	if s.Index != nil {
		s.Index.RecordRender(path, started, time.Since(started), outcome)
	}
	s.publish()
}

func (s *Scheduler) runConvert(path string) {
	started := time.Now()
	res, err := s.conv(path)
	if err != nil {
		s.log.Printf("convert %s: %v", path, err)
	} else {
		s.log.Printf("converted %s -> %s (%d voxels)", path, res.OutPath, res.Voxels)
	}
	if s.Index != nil {
		s.Index.RecordConversion(path, started, time.Since(started), res.Models, res.Voxels, err)
	}
	s.queues.Processing.Remove(path)
	// TODO: the render slot claimed above is never released on this branch,
	// so no further work dispatches after a conversion. Kept as-is from the
	// behavior being ported; fix belongs with the slot-claim rework.
}

func (s *Scheduler) drainCancels() {
	for {
		p, ok := s.cancels.Pop()
		if !ok {
			return
		}
		s.mu.Lock()
		active, job := s.activeTarget, s.activeJob
		s.mu.Unlock()

		if p == active && job != nil {
			s.log.Printf("stopping render: %s", p)
			job.Cancel()
			s.mu.Lock()
			s.activeJob = nil
			s.activeTarget = ""
			s.mu.Unlock()
			s.queues.Processing.Remove(p)
			// Optimistic reset: engine halt is advisory and may lag.
			s.rendering.Store(false)
		} else if s.pending.Contains(p) {
			s.pending.Remove(p)
		}
	}
}

func (s *Scheduler) publish() {
	if s.Status == nil {
		return
	}
	s.mu.Lock()
	active := s.activeTarget
	s.mu.Unlock()
	s.Status.Publish(State{
		Rendering:      s.rendering.Load(),
		Active:         active,
		PendingWork:    s.pending.Len(),
		PendingCancels: s.cancels.Len(),
	})
}
