// Package transport carries protocol messages between the dispatcher and
// its workers. A Link is one bidirectional, ordered connection to a peer.
package transport

import (
	"context"
	"errors"

	"pkg.jsn.cam/wordstream/pkg/wordstream/protocol"
)

var (
	ErrClosed    = errors.New("link closed")
	ErrMalformed = errors.New("malformed message")
)

// Link is an ordered, bidirectional message channel to a single peer.
// Send and Receive block until the message is handed over, the link is
// closed or ctx is done. One goroutine may send while another receives.
type Link interface {
	Send(ctx context.Context, msg protocol.Message) error
	Receive(ctx context.Context) (protocol.Message, error)
	Close() error
}
