package transport

import (
	"context"
	"fmt"
	"sync"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

type pipeEnd struct {
	in     <-chan protocol.Message
	out    chan<- protocol.Message
	done   chan struct{}
	closer *sync.Once
}

// Pipe returns two connected in-memory links. Each direction buffers up
// to buffer messages. Closing either end closes both.
func Pipe(buffer int) (Link, Link) {
	ab := make(chan protocol.Message, buffer)
	ba := make(chan protocol.Message, buffer)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &pipeEnd{in: ba, out: ab, done: done, closer: once}
	b := &pipeEnd{in: ab, out: ba, done: done, closer: once}

	return a, b
}

func (p *pipeEnd) Send(ctx context.Context, msg protocol.Message) error {
	if !msg.Valid() {
		return fmt.Errorf("%w: kind %q", ErrMalformed, msg.Kind)
	}

	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	select {
	case p.out <- msg:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) (protocol.Message, error) {
	// Drain what was sent before a close.
	select {
	case msg := <-p.in:
		return msg, nil
	default:
	}

	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.done:
		return protocol.Message{}, ErrClosed
	case <-ctx.Done():
		return protocol.Message{}, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.closer.Do(func() { close(p.done) })
	return nil
}
