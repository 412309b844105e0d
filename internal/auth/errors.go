package auth

import (
	"errors"
	"fmt"
)

// Code is a stable, client-facing auth error code.
type Code string

const (
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeEmailAlreadyInUse Code = "auth/email-already-in-use"
	CodeUserNotFound      Code = "auth/user-not-found"
	CodeWeakPassword      Code = "auth/weak-password"
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeTooManyRequests   Code = "auth/too-many-requests"
	CodeWrongPassword     Code = "auth/wrong-password"
	CodeNetworkFailed     Code = "auth/network-request-failed"
	CodeInvalidActionCode Code = "auth/invalid-action-code"
	CodeUnauthenticated   Code = "auth/unauthenticated"
)

// Error carries a Code alongside the underlying cause.
type Error struct {
	Code Code
	Err  error
}

func NewError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf reports the auth code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}
