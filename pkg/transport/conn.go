// Package transport carries text frames to and from the session peer over a
// websocket.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientHeader names the request header carrying the local client id.
const ClientHeader = "X-Syncedit-Client"

// Conn is a message-oriented connection. ReadMessage blocks until a frame
// arrives. WriteMessage is safe to call from one writer while another
// goroutine reads.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Error reports a failed transport operation.
type Error struct {
	Op  string // dial, read, write
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsClosed reports whether err means the peer or the local side ended the
// connection in an orderly way.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return errors.Is(err, net.ErrClosed)
}

// Dialer opens websocket connections to one URL.
type Dialer struct {
	URL              string
	ClientID         string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// Dial connects once.
func (d *Dialer) Dial(ctx context.Context) (Conn, error) {
	header := http.Header{}
	if d.ClientID != "" {
		header.Set(ClientHeader, d.ClientID)
	}
	dialer := *websocket.DefaultDialer
	if d.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = d.HandshakeTimeout
	}
	ws, _, err := dialer.DialContext(ctx, d.URL, header)
	if err != nil {
		return nil, &Error{Op: "dial", URL: d.URL, Err: err}
	}
	return &wsConn{ws: ws, url: d.URL, writeTimeout: d.WriteTimeout}, nil
}

type wsConn struct {
	ws           *websocket.Conn
	url          string
	writeTimeout time.Duration

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, &Error{Op: "read", URL: c.url, Err: err}
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return &Error{Op: "write", URL: c.url, Err: err}
	}
	return nil
}

// Close sends a close frame when possible and releases the socket.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		// A writer stuck on a dead peer holds wmu; skip the close frame then.
		if c.wmu.TryLock() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			c.wmu.Unlock()
		}
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
