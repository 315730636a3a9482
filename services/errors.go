package services

import (
	"errors"

	"menu-telegram/menuapi"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuthRequired
	KindRequestFailed
	KindSessionInvalid
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthRequired:
		return "auth_required"
	case KindRequestFailed:
		return "request_failed"
	case KindSessionInvalid:
		return "session_invalid"
	default:
		return "unknown"
	}
}

// Error is a client-side failure raised before any network call
// (validation, missing token) or a discarded session.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewAuthRequired(message string) *Error {
	return &Error{Kind: KindAuthRequired, Message: message}
}

// NewSessionInvalid wraps the profile-fetch failure that invalidated a stored token.
func NewSessionInvalid(err error) *Error {
	return &Error{Kind: KindSessionInvalid, Err: err}
}

// KindOf classifies err. API failures map to KindRequestFailed.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var reqErr *menuapi.RequestError
	if errors.As(err, &reqErr) {
		return KindRequestFailed
	}
	return KindUnknown
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	var reqErr *menuapi.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return err.Error()
}
