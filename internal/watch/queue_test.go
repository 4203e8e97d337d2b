package watch

import (
	"fmt"
	"sync"
	"testing"
)

func TestQueuePushPop(t *testing.T) {
	q := NewFileQueue()
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop on empty queue succeeded")
	}
	if !q.Push("a.vmax") {
		t.Fatalf("push returned false")
	}
	got, ok := q.Pop()
	if !ok || got != "a.vmax" {
		t.Fatalf("pop = %q ok=%v", got, ok)
	}
	if !q.Empty() {
		t.Fatalf("queue not empty after pop")
	}
}

func TestQueueRejectsDuplicates(t *testing.T) {
	q := NewFileQueue()
	q.Push("a")
	if q.Push("a") {
		t.Fatalf("duplicate push returned true")
	}
	if q.Len() != 1 {
		t.Fatalf("len=%d want 1", q.Len())
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewFileQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("pop = %q ok=%v, want %q", got, ok, want)
		}
	}
}

func TestQueueRemoveMiddle(t *testing.T) {
	q := NewFileQueue()
	q.Push("a")
	q.Push("b")
	q.Push("c")
	if !q.Remove("b") {
		t.Fatalf("remove returned false")
	}
	if q.Remove("b") {
		t.Fatalf("second remove returned true")
	}
	for _, want := range []string{"a", "c"} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("pop = %q ok=%v, want %q", got, ok, want)
		}
	}
}

func TestQueueProbeKeepsHead(t *testing.T) {
	q := NewFileQueue()
	q.Push("a")
	q.Push("b")
	head, ok := q.Probe()
	if !ok || head != "a" {
		t.Fatalf("probe = %q ok=%v", head, ok)
	}
	if q.Len() != 2 {
		t.Fatalf("probe removed an entry: len=%d", q.Len())
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 200

	q := NewFileQueue()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(fmt.Sprintf("p%d/file%d.vmax", p, i))
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	for {
		path, ok := q.Pop()
		if !ok {
			break
		}
		if _, dup := seen[path]; dup {
			t.Fatalf("duplicate path popped: %s", path)
		}
		seen[path] = struct{}{}
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("popped %d distinct paths, want %d", len(seen), producers*perProducer)
	}
}
