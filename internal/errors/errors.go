package errors

import (
	"errors"
	"fmt"
)

// Application errors surfaced by the web layer
var (
	// Request errors
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMissingClientJSON = errors.New("no OAuth client configuration supplied")
	ErrRequestTooLarge   = errors.New("request too large")

	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrSessionMismatch   = errors.New("authorization was started by another browser session")
	ErrStateNotFound     = errors.New("authorization state not found")
	ErrNoChannelSelected = errors.New("no channel selected")
	ErrUnknownChannel    = errors.New("channel does not belong to the signed-in account")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrShuttingDown = errors.New("server is shutting down")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
