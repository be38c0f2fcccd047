package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

const (
	// closeWriteFailed is sent when the write loop gives up. 1006 is reserved and never sent.
	closeWriteFailed = websocket.CloseInternalServerErr

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferExceeded   = errors.New("connection buffer exceeded")
)

// Connection is one authenticated websocket. Outbound frames go through a bounded
// queue drained by a single writer. Identity never changes after construction.
type Connection struct {
	ID         string
	Identity   chat.Identity
	RemoteAddr string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

// NewConnection constructs a Connection for the given identity.
func NewConnection(who chat.Identity, remoteAddr string, ws *websocket.Conn) *Connection {
	return &Connection{
		ID:         uuid.NewString(),
		Identity:   who,
		RemoteAddr: remoteAddr,
		ws:         ws,
		send:       make(chan []byte, sendBuffer),
		close:      make(chan struct{}),
	}
}

// UserID is shorthand for Identity.ID.
func (c *Connection) UserID() string {
	return c.Identity.ID
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.close
}

// Send enqueues payload for delivery. If the client is slow and the buffer is full,
// the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrBufferExceeded
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

// writeLoop is the only goroutine writing to ws; frames and pings share it.
func (c *Connection) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-c.close:
			return
		case payload := <-c.send:
			err = c.write(websocket.TextMessage, payload)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.Close(closeWriteFailed, "write failed")
			return
		}
	}
}

func (c *Connection) write(kind int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(kind, payload)
}
