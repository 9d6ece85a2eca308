// Package service holds the business rules: who may do what to which
// entity, and what happens as a side effect.  Every rule violation is
// returned as an *Error so the transport layer can map it to a status code
// without inspecting messages.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a rule violation.
type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
)

// Error is a rule violation with a short human readable detail.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

func newError(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error   { return newError(KindBadRequest, format, args...) }
func Unauthorized(format string, args ...any) *Error { return newError(KindUnauthorized, format, args...) }
func Forbidden(format string, args ...any) *Error    { return newError(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error     { return newError(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error     { return newError(KindConflict, format, args...) }

// KindOf returns the kind of err, or "" when err is not a rule violation.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
