// Package apperr defines the error taxonomy shared by the message
// pipeline, the group membership service, and the HTTP boundary.
package apperr

import "errors"

// Kind classifies a failure so the boundary can map it to a status code
// without string matching.
type Kind int

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown Kind = iota
	// KindValidation: malformed input or a business-rule violation.
	KindValidation
	// KindForbidden: the actor lacks the required relationship or role.
	KindForbidden
	// KindNotFound: a referenced entity is absent.
	KindNotFound
	// KindConflict: the requested state already exists.
	KindConflict
	// KindKeyNotFound: confidentiality peer material is missing.
	KindKeyNotFound
)

// Error carries a Kind alongside a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func Validation(msg string) error  { return &Error{Kind: KindValidation, Msg: msg} }
func Forbidden(msg string) error   { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error    { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error    { return &Error{Kind: KindConflict, Msg: msg} }
func KeyNotFound(msg string) error { return &Error{Kind: KindKeyNotFound, Msg: msg} }

// KindOf extracts the Kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsForbidden(err error) bool   { return KindOf(err) == KindForbidden }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsKeyNotFound(err error) bool { return KindOf(err) == KindKeyNotFound }
