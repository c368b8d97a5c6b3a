package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Socket wraps a websocket connection behind the Conn interface. Writes are
// serialized; gorilla connections support only one concurrent writer.
type Socket struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewSocket(ws *websocket.Conn) *Socket {
	return &Socket{ws: ws}
}

func (s *Socket) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))

	return s.ws.WriteJSON(envelope{Event: event, Data: payload})
}

func (s *Socket) Close() error {
	return s.ws.Close()
}

// WaitClosed blocks until the peer closes the connection or a read fails.
// Inbound frames are discarded; the socket exists only for server pushes.
func (s *Socket) WaitClosed() {
	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			return
		}
	}
}
