package chain

import (
	"errors"
	"fmt"

	"github.com/lightgodwoken/unlock-workers/entities"
)

// ErrorKind classifies unlock failures at the chain client boundary.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	// KindInsufficientCapacity means the layer 1 account cannot pay the
	// unlock transaction fee.
	KindInsufficientCapacity
	// KindUnrecognized is a failure that did not arrive as an error value.
	KindUnrecognized
)

func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindInsufficientCapacity:
		return "insufficient_capacity"
	case KindUnrecognized:
		return "unrecognized"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErrCodeNotEnoughCapacity is the backend error code for a layer 1 account
// that lacks capacity for fees.
const ErrCodeNotEnoughCapacity = -32010

type UnlockError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *UnlockError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("unlock failed (%v, code %d): %v", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("unlock failed (%v): %v", e.Kind, e.Message)
}

func (e *UnlockError) Unwrap() error {
	return e.Err
}

func newRPCUnlockError(rpcErr *entities.RPCError) *UnlockError {
	kind := KindGeneric
	if rpcErr.Code == ErrCodeNotEnoughCapacity {
		kind = KindInsufficientCapacity
	}
	return &UnlockError{Kind: kind, Code: rpcErr.Code, Message: rpcErr.Message}
}

func NewInsufficientCapacityError(msg string) *UnlockError {
	return &UnlockError{Kind: KindInsufficientCapacity, Code: ErrCodeNotEnoughCapacity, Message: msg}
}

// FromRecovered turns a value recovered from a panicking client into an error.
func FromRecovered(v interface{}) error {
	if err, ok := v.(error); ok {
		return &UnlockError{Kind: KindOf(err), Message: err.Error(), Err: err}
	}
	return &UnlockError{Kind: KindUnrecognized, Message: fmt.Sprint(v)}
}

// KindOf returns the kind carried by err, KindGeneric for any other error.
func KindOf(err error) ErrorKind {
	var unlockErr *UnlockError
	if errors.As(err, &unlockErr) {
		return unlockErr.Kind
	}
	return KindGeneric
}
