// Package realtime routes best-effort push messages to live client
// connections. The registry is process-local and rebuilt empty on restart;
// clients re-register after reconnecting.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is one live client connection, used only for routing.
type Conn interface {
	Send(event string, payload any) error
}

// Registry maps a user to their most recently registered connection.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]Conn)}
}

// Register stores the connection for the user. A prior connection for the
// same user is overwritten: last write wins.
func (r *Registry) Register(userID uuid.UUID, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[userID] = c
}

// Unregister removes the entry holding this exact connection, if any. A stale
// handle that was already displaced by a newer registration is left alone.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, conn := range r.conns {
		if conn == c {
			delete(r.conns, userID)
			return
		}
	}
}

func (r *Registry) Lookup(userID uuid.UUID) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[userID]

	return c, ok
}

// Size reports the number of live registrations.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
