package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by the query side before the store has been created.
	ErrNotReady = errors.New("service not ready")
	// ErrBind is returned when no candidate ingestion port could be bound.
	ErrBind = errors.New("bind failed")
	// ErrDecode marks a malformed inbound frame.
	ErrDecode = errors.New("decode failed")
	// ErrConnection marks a read failure on a device connection.
	ErrConnection = errors.New("connection failed")
	// ErrTooManyConnections is returned when the active connection set is full.
	ErrTooManyConnections = errors.New("too many active connections")
)

// BindError reports the address tried last and how many attempts were made.
type BindError struct {
	Address  string
	Attempts int
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s after %d attempts: %v", e.Address, e.Attempts, e.Err)
}

func (e *BindError) Unwrap() []error {
	return []error{ErrBind, e.Err}
}

// DecodeError describes why a frame was rejected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}
