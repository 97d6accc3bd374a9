// Package httperror carries the error taxonomy shared by services and handlers.
// Every error a service returns to a caller is either an *Error with an HTTP
// status attached, or an unexpected failure that handlers report as 500.
package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code int, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{Code: code, Message: msg}
}

// NewBadRequest reports malformed or missing input.
func NewBadRequest(format string, args ...interface{}) *Error {
	return newError(http.StatusBadRequest, format, args...)
}

func NewUnauthorized(format string, args ...interface{}) *Error {
	return newError(http.StatusUnauthorized, format, args...)
}

// NewForbidden reports a caller that is known but not allowed, including a
// wrong verification code and an inactive driver account.
func NewForbidden(format string, args ...interface{}) *Error {
	return newError(http.StatusForbidden, format, args...)
}

func NewNotFound(format string, args ...interface{}) *Error {
	return newError(http.StatusNotFound, format, args...)
}

// NewConflict reports a violated state precondition.
func NewConflict(format string, args ...interface{}) *Error {
	return newError(http.StatusConflict, format, args...)
}

func NewTooManyRequests(format string, args ...interface{}) *Error {
	return newError(http.StatusTooManyRequests, format, args...)
}

func NewInternalServerError(format string, args ...interface{}) *Error {
	return newError(http.StatusInternalServerError, format, args...)
}

// As unwraps err into an *Error when one is present in its chain.
func As(err error) (*Error, bool) {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for anything untyped.
func StatusOf(err error) int {
	if httpErr, ok := As(err); ok {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
