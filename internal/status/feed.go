// Package status pushes scheduler state to websocket subscribers so an
// external UI can show what is queued and what is rendering.
package status

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vmaxtui/internal/sched"
)

type Feed struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan []byte]struct{}
	last []byte
	seq  uint64
}

type frame struct {
	Seq   uint64      `json:"seq"`
	Time  string      `json:"time"`
	State sched.State `json:"state"`
}

func NewFeed(logger *log.Logger) *Feed {
	return &Feed{
		log:  logger,
		subs: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local tool
		},
	}
}

// Publish implements sched.Publisher. Slow subscribers are skipped, not
// waited for; each gets the next frame instead.
func (f *Feed) Publish(st sched.State) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	b, err := json.Marshal(frame{
		Seq:   f.seq,
		Time:  time.Now().UTC().Format(time.RFC3339Nano),
		State: st,
	})
	if err != nil {
		return
	}
	f.last = b
	for out := range f.subs {
		select {
		case out <- b:
		default:
		}
	}
}

func (f *Feed) subscribe() chan []byte {
	out := make(chan []byte, 16)
	f.mu.Lock()
	if f.last != nil {
		out <- f.last
	}
	f.subs[out] = struct{}{}
	f.mu.Unlock()
	return out
}

func (f *Feed) unsubscribe(out chan []byte) {
	f.mu.Lock()
	delete(f.subs, out)
	f.mu.Unlock()
}

func (f *Feed) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out := f.subscribe()
		defer f.unsubscribe(out)

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		// Reader loop: the feed is one-way, reads only detect disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(done)
	}
}

// SubscriberCount reports how many connections are attached.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
