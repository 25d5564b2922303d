package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Transport carries encoded message frames to the server.
type Transport interface {
	Send(frame []byte) error
	Close() error
}

// WebsocketTransport sends frames over a websocket connection.
type WebsocketTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWebsocket connects to a server endpoint. Each dial carries a fresh
// client nonce so the server can correlate reconnects.
func DialWebsocket(url string) (*WebsocketTransport, error) {
	header := http.Header{}
	header.Set("X-Client-Nonce", uuid.NewString())

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("server: dial %s: %w", url, err)
	}
	return &WebsocketTransport{conn: conn}, nil
}

// Send implements Transport. Writes are serialized; the websocket connection
// allows only one concurrent writer.
func (t *WebsocketTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close implements Transport.
func (t *WebsocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Close()
}

// MemoryTransport records frames instead of sending them. It backs tests and
// the offline demo host.
type MemoryTransport struct {
	mu     sync.Mutex
	frames [][]byte
}

// NewMemoryTransport creates an empty recording transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{}
}

// Send implements Transport.
func (t *MemoryTransport) Send(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, frame)
	return nil
}

// Close implements Transport.
func (t *MemoryTransport) Close() error { return nil }

// Frames returns a copy of everything sent so far.
func (t *MemoryTransport) Frames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.frames))
	copy(out, t.frames)
	return out
}
