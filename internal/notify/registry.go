// Package notify owns the push-channel connection registry and the
// update fan-out. Delivery is fire-and-forget, at most once: players
// without a live connection are skipped and nothing is queued or retried.
package notify

import (
	"log"
	"sync"

	"rps/internal/game"
)

// Registry maps nicknames to the outbound channel of their live
// connection. It is shared across handler goroutines and safe for
// concurrent use. A reconnect replaces the previous entry.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]chan []byte)}
}

// Add registers send as nickname's live connection, replacing any
// previous one.
func (r *Registry) Add(nickname string, send chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[nickname] = send
}

// Remove drops nickname's entry, but only if send is still the
// registered channel. A stale connection closing after a reconnect must
// not evict the new one.
func (r *Registry) Remove(nickname string, send chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[nickname] == send {
		delete(r.clients, nickname)
	}
}

// Get returns nickname's outbound channel.
func (r *Registry) Get(nickname string) (chan []byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	send, ok := r.clients[nickname]
	return send, ok
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// NotifyUpdate sends the update signal to each player with a live
// connection. Sends never block; a full buffer drops the signal, which is
// fine since any later update means the same thing.
func (r *Registry) NotifyUpdate(players []game.Player) {
	msg := UpdateSignal()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range players {
		send, ok := r.clients[p.Nickname]
		if !ok {
			continue
		}
		select {
		case send <- msg:
			log.Printf("[ws] sent update to %s", p.Nickname)
		default:
		}
	}
}
