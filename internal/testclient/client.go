// Package testclient drives the game server over its websocket protocol for
// integration tests.
package testclient

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
)

// TestClient is one websocket connection to the game server. A background
// goroutine collects everything the server sends.
type TestClient struct {
	Name string

	ws  *websocket.Conn
	wmu sync.Mutex

	mu       sync.Mutex
	messages []server.ServerMessage
	cursor   int           // Messages before cursor were consumed by WaitFor
	notify   chan struct{} // Closed and replaced on every new message
	done     chan struct{}
	readErr  error
}

// Credentials holds login information. An empty password plays an
// unclaimed profile.
type Credentials struct {
	Profile  string
	Password string
}

// URL turns "host:port" into the server's websocket endpoint. Full ws://
// URLs pass through.
func URL(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "ws://" + address + "/ws"
}

// Dial connects without logging in.
func Dial(address string) (*TestClient, error) {
	ws, _, err := websocket.DefaultDialer.Dial(URL(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c := &TestClient{
		ws:     ws,
		notify: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.readMessages()
	return c, nil
}

// NewTestClient connects and logs in as an unclaimed profile called name.
func NewTestClient(name, address string) (*TestClient, error) {
	return NewTestClientWithLogin(Credentials{Profile: name}, address)
}

// NewTestClientWithLogin connects, logs in and waits for the shop.
func NewTestClientWithLogin(creds Credentials, address string) (*TestClient, error) {
	c, err := Dial(address)
	if err != nil {
		return nil, err
	}
	c.Name = creds.Profile
	if err := c.Login(creds); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Login sends the login message and waits for the shop or an error.
func (c *TestClient) Login(creds Credentials) error {
	if err := c.Send(server.ClientMessage{Type: server.MsgLogin, Profile: creds.Profile, Password: creds.Password}); err != nil {
		return err
	}
	msg, ok := c.WaitForAny([]string{server.MsgShop, server.MsgError}, 5*time.Second)
	if !ok {
		return fmt.Errorf("no reply to login")
	}
	if msg.Type == server.MsgError {
		return fmt.Errorf("login rejected: %s", msg.Message)
	}
	return nil
}

func (c *TestClient) readMessages() {
	defer close(c.done)
	for {
		var msg server.ServerMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		c.messages = append(c.messages, msg)
		close(c.notify)
		c.notify = make(chan struct{})
		c.mu.Unlock()
	}
}

// Send writes one message.
func (c *TestClient) Send(msg server.ClientMessage) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteJSON(msg)
}

// Action sends a play action such as "next_attack" or "pause".
func (c *TestClient) Action(action string) error {
	return c.Send(server.ClientMessage{Type: server.MsgAction, Action: action})
}

// Move sends a move action in dir ("north", "east", ...).
func (c *TestClient) Move(dir string) error {
	return c.Send(server.ClientMessage{Type: server.MsgAction, Action: "move", Dir: dir})
}

// WaitFor returns the next unconsumed message of type typ. Messages skipped
// on the way are consumed too.
func (c *TestClient) WaitFor(typ string, timeout time.Duration) (server.ServerMessage, bool) {
	return c.WaitForAny([]string{typ}, timeout)
}

// WaitForAny is WaitFor over several types.
func (c *TestClient) WaitForAny(types []string, timeout time.Duration) (server.ServerMessage, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		for i := c.cursor; i < len(c.messages); i++ {
			for _, typ := range types {
				if c.messages[i].Type == typ {
					c.cursor = i + 1
					msg := c.messages[i]
					c.mu.Unlock()
					return msg, true
				}
			}
		}
		c.cursor = len(c.messages)
		notify := c.notify
		c.mu.Unlock()

		select {
		case <-notify:
		case <-c.done:
			// Drain anything that arrived before the close.
			c.mu.Lock()
			more := c.cursor < len(c.messages)
			c.mu.Unlock()
			if !more {
				return server.ServerMessage{}, false
			}
		case <-deadline.C:
			return server.ServerMessage{}, false
		}
	}
}

// WaitForError waits for an error message containing text.
func (c *TestClient) WaitForError(text string, timeout time.Duration) bool {
	end := time.Now().Add(timeout)
	for {
		left := time.Until(end)
		if left <= 0 {
			return false
		}
		msg, ok := c.WaitFor(server.MsgError, left)
		if !ok {
			return false
		}
		if strings.Contains(msg.Message, text) {
			return true
		}
	}
}

// Messages returns a copy of everything received so far.
func (c *TestClient) Messages() []server.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]server.ServerMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// ClearMessages forgets everything received so far.
func (c *TestClient) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = c.messages[:0]
	c.cursor = 0
}

// Closed reports whether the server has closed the connection.
func (c *TestClient) Closed(timeout time.Duration) bool {
	select {
	case <-c.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Err returns the error that stopped the reader, nil while connected.
func (c *TestClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close closes the connection and waits for the reader to stop.
func (c *TestClient) Close() error {
	c.wmu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	err := c.ws.Close()
	<-c.done
	return err
}
