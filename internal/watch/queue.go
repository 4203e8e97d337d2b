// Package watch feeds filesystem change events into the scheduler through a
// small set of locked FIFO queues.
package watch

import "sync"

// FileQueue is a thread-safe FIFO set of paths: FIFO order with uniqueness
// and arbitrary removal. Every operation holds the queue's single lock, so
// no caller ever observes a partial state.
type FileQueue struct {
	mu      sync.Mutex
	order   []string
	present map[string]struct{}
}

func NewFileQueue() *FileQueue {
	return &FileQueue{present: make(map[string]struct{})}
}

// Push appends path unless it is already enqueued. Reports whether the path
// was added.
func (q *FileQueue) Push(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.present[path]; ok {
		return false
	}
	q.order = append(q.order, path)
	q.present[path] = struct{}{}
	return true
}

// Pop removes and returns the oldest path.
func (q *FileQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return "", false
	}
	path := q.order[0]
	q.order = q.order[1:]
	delete(q.present, path)
	return path, true
}

// Probe returns the oldest path without removing it.
func (q *FileQueue) Probe() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return "", false
	}
	return q.order[0], true
}

// Remove deletes path from any position, preserving the relative order of
// the remaining entries.
func (q *FileQueue) Remove(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.present[path]; !ok {
		return false
	}
	for i, p := range q.order {
		if p == path {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	delete(q.present, path)
	return true
}

func (q *FileQueue) Contains(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.present[path]
	return ok
}

func (q *FileQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func (q *FileQueue) Empty() bool { return q.Len() == 0 }

func (q *FileQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = nil
	q.present = make(map[string]struct{})
}

// Queues is the shared context object between the watcher's delivery
// goroutine and the scheduler: incoming add/modify work, delete/cancel
// signals, and the scheduler's in-flight marker. No package-level state.
type Queues struct {
	Incoming   *FileQueue
	Deletes    *FileQueue
	Processing *FileQueue
}

func NewQueues() *Queues {
	return &Queues{
		Incoming:   NewFileQueue(),
		Deletes:    NewFileQueue(),
		Processing: NewFileQueue(),
	}
}
