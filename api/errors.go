// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy for the dispatch core. Every failure carries the phase it
// happened in so callers can tell setup, loop and per-connection faults apart.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrExecutorClosed = errors.New("executor is closed")
	ErrNotSupported   = errors.New("operation not supported")
)

// ErrorKind identifies the phase a failure originated from.
type ErrorKind int

const (
	// Setup-fatal.
	KindInvalidConfig ErrorKind = iota + 1
	KindEpollCreation
	KindSocketCreation
	KindSocketBinding
	KindSocketListening
	KindEpollAdd

	// Loop-fatal.
	KindEpollWait

	// Per-connection, recoverable.
	KindAccept
	KindRegistration
	KindPeerAddress
	KindRead
	KindWrite

	// KindClosed reports a server stopped on request.
	KindClosed
)

var kindNames = map[ErrorKind]string{
	KindInvalidConfig:   "InvalidConfig",
	KindEpollCreation:   "EpollCreation",
	KindSocketCreation:  "SocketCreation",
	KindSocketBinding:   "SocketBinding",
	KindSocketListening: "SocketListening",
	KindEpollAdd:        "EpollAdd",
	KindEpollWait:       "EpollWait",
	KindAccept:          "Accept",
	KindRegistration:    "Registration",
	KindPeerAddress:     "PeerAddress",
	KindRead:            "Read",
	KindWrite:           "Write",
	KindClosed:          "Closed",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Fatal reports whether a failure of this kind must stop the server.
func (k ErrorKind) Fatal() bool {
	return k >= KindInvalidConfig && k <= KindEpollWait
}

// Error represents a structured error with kind, message and cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes the underlying cause, usually a syscall.Errno.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new structured error.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
