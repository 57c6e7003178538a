package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

// Conn is a Link over a stream connection. Frames are JSON objects, one
// after another.
type Conn struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	sendMu sync.Mutex
	recvMu sync.Mutex
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		enc:  json.NewEncoder(c),
		dec:  json.NewDecoder(c),
	}
}

// Dial connects to a dispatcher listening on addr.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return NewConn(c), nil
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) Send(ctx context.Context, msg protocol.Message) error {
	if !msg.Valid() {
		return fmt.Errorf("%w: kind %q", ErrMalformed, msg.Kind)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := c.enc.Encode(msg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("send %s: %w", msg.Kind, err)
	}

	return nil
}

func (c *Conn) Receive(ctx context.Context) (protocol.Message, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()

	_ = c.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var msg protocol.Message
	if err := c.dec.Decode(&msg); err != nil {
		if ctx.Err() != nil {
			return protocol.Message{}, ctx.Err()
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return protocol.Message{}, fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return protocol.Message{}, fmt.Errorf("receive: %w", err)
	}

	if !msg.Valid() {
		return protocol.Message{}, fmt.Errorf("%w: kind %q", ErrMalformed, msg.Kind)
	}

	return msg, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// Listener accepts worker connections.
type Listener struct {
	ln net.Listener
}

// Listen starts listening on a TCP address.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	return &Listener{ln: ln}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Accept waits for the next connection. Cancelling ctx closes the listener.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = l.ln.Close()
	})
	defer stop()

	c, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept: %w", err)
	}

	return NewConn(c), nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}
