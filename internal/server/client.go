package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Conn wraps a websocket carrying JSON messages. Reads happen on one
// goroutine; writes may come from several.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
	ip string
}

// NewConn wraps ws. Incoming messages larger than maxMessage bytes close the
// connection.
func NewConn(ws *websocket.Conn, ip string, maxMessage int64) *Conn {
	if maxMessage > 0 {
		ws.SetReadLimit(maxMessage)
	}
	return &Conn{ws: ws, ip: ip}
}

// Read blocks for the next client message. A zero timeout waits forever.
func (c *Conn) Read(timeout time.Duration) (ClientMessage, error) {
	var msg ClientMessage
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return msg, err
	}
	err := c.ws.ReadJSON(&msg)
	return msg, err
}

// Send writes one message.
func (c *Conn) Send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(msg)
}

// SendError writes an error message, ignoring write failures.
func (c *Conn) SendError(text string) {
	_ = c.Send(errorMessage(text))
}

// Close sends a normal close frame and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.ws.Close()
}

// IP is the client address the connection was accepted from.
func (c *Conn) IP() string { return c.ip }
