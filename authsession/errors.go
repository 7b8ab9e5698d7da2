package authsession

import (
	"errors"
	"fmt"
)

var (
	ErrConfig           = errors.New("invalid client configuration")
	ErrCallbackParse    = errors.New("malformed callback input")
	ErrNoPendingFlow    = errors.New("no pending authorization flow")
	ErrStateMismatch    = errors.New("state parameter does not match the pending authorization")
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrNetwork          = errors.New("network error")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// TokenExchangeError is returned when the provider rejects the authorization code
// or the exchange request. Code and Description carry the provider's
// "error" and "error_description" fields when it sent them.
type TokenExchangeError struct {
	Code        string
	Description string
	StatusCode  int
	Err         error
}

func (e *TokenExchangeError) Error() string {
	msg := ErrTokenExchange.Error()
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Code)
		if e.Description != "" {
			msg = fmt.Sprintf("%s (%s)", msg, e.Description)
		}
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// Is lets callers match any TokenExchangeError with errors.Is(err, ErrTokenExchange).
func (e *TokenExchangeError) Is(target error) bool {
	return target == ErrTokenExchange
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func callbackErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCallbackParse, fmt.Sprintf(format, args...))
}
