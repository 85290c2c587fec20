package service

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jsphweid/fingerbot/model"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans playback status changes out to websocket subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
	last []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Publish is safe to hand to Scheduler.OnChange. Slow subscribers miss
// updates rather than block playback.
func (h *Hub) Publish(st model.PlaybackStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Errorw("encoding status", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
		}
	}
}

// Subscribe returns a channel primed with the latest status, if any, and a
// func that unsubscribes.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.last != nil {
		ch <- h.last
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case data := <-updates:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
