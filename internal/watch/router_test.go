package watch

import (
	"io"
	"log"
	"testing"

	"github.com/fsnotify/fsnotify"
)

func testRules() Rules {
	return Rules{
		SceneSuffix:   ".bsz",
		ModelSuffix:   ".vmax",
		ArchiveSuffix: ".zip",
		StagingDir:    "download",
	}
}

func newTestRouter() (*Router, *Queues) {
	q := NewQueues()
	r := NewRouter(q, testRules(), log.New(io.Discard, "", 0))
	return r, q
}

func TestRouterDeleteOfScene(t *testing.T) {
	r, q := newTestRouter()
	r.OnEvent("/w/house.bsz", fsnotify.Remove)
	if got, ok := q.Deletes.Pop(); !ok || got != "/w/house.bsz" {
		t.Fatalf("deletes head = %q ok=%v", got, ok)
	}
	if !q.Incoming.Empty() {
		t.Fatalf("delete event leaked into incoming queue")
	}
}

func TestRouterDeleteOfOtherSuffixIgnored(t *testing.T) {
	r, q := newTestRouter()
	r.OnEvent("/w/house.vmax", fsnotify.Remove)
	if !q.Deletes.Empty() {
		t.Fatalf("non-scene delete was queued")
	}
}

func TestRouterCreateAndWrite(t *testing.T) {
	r, q := newTestRouter()
	r.OnEvent("/w/house.vmax", fsnotify.Create)
	r.OnEvent("/w/house.bsz", fsnotify.Write)
	r.OnEvent("/w/pack.zip", fsnotify.Create)
	r.OnEvent("/w/readme.txt", fsnotify.Write)
	if q.Incoming.Len() != 3 {
		t.Fatalf("incoming len=%d want 3", q.Incoming.Len())
	}
	for _, want := range []string{"/w/house.vmax", "/w/house.bsz", "/w/pack.zip"} {
		got, _ := q.Incoming.Pop()
		if got != want {
			t.Fatalf("pop = %q want %q", got, want)
		}
	}
}

func TestRouterStagingDirSuppressesArchivesOnly(t *testing.T) {
	r, q := newTestRouter()
	r.OnEvent("/w/download/pack.zip", fsnotify.Create)
	if !q.Incoming.Empty() {
		t.Fatalf("staged archive was queued")
	}
	// The suppression is specific to archives; staged models still queue.
	r.OnEvent("/w/download/house.vmax", fsnotify.Create)
	if got, ok := q.Incoming.Pop(); !ok || got != "/w/download/house.vmax" {
		t.Fatalf("staged model pop = %q ok=%v", got, ok)
	}
}

func TestRouterDeduplicates(t *testing.T) {
	r, q := newTestRouter()
	r.OnEvent("/w/house.vmax", fsnotify.Write)
	r.OnEvent("/w/house.vmax", fsnotify.Write)
	if q.Incoming.Len() != 1 {
		t.Fatalf("incoming len=%d want 1", q.Incoming.Len())
	}
}

func TestRouterStopDropsEvents(t *testing.T) {
	r, q := newTestRouter()
	r.Stop()
	r.OnEvent("/w/house.vmax", fsnotify.Create)
	r.OnEvent("/w/house.bsz", fsnotify.Remove)
	if !q.Incoming.Empty() || !q.Deletes.Empty() {
		t.Fatalf("events enqueued after stop")
	}
}
