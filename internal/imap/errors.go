package imap

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an operation requires an established
// session before Connect succeeded.
var ErrNotConnected = errors.New("imap: not connected")

// ErrNotSelected is returned when a sequence-addressed operation is issued
// before a mailbox was selected.
var ErrNotSelected = errors.New("imap: no mailbox selected")

// ConnectionError reports a network or authentication failure while opening
// the session. It is fatal for the invocation; the core never retries.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("imap: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotFoundError reports that an addressed sequence number is absent from the
// selected mailbox. Mutations addressed through a range containing an absent
// member are not applied at all.
type NotFoundError struct {
	Seq     uint32
	Mailbox string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("imap: message %d not found in %q", e.Seq, e.Mailbox)
}
