package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrIncompatibleVersion = errors.New("incompatible version")
	ErrUnexpectedMessage   = errors.New("unexpected message")
	ErrRejected            = errors.New("rejected by dispatcher")
)

// Expect returns an error wrapping ErrUnexpectedMessage unless msg is of kind want.
func Expect(msg Message, want MessageKind) error {
	if msg.Kind != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, want, msg.Kind)
	}

	return nil
}
