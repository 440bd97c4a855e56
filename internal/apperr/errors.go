// Package apperr defines the typed error taxonomy shared by every layer.
// Errors are produced where the condition is detected (the blob store types
// disk-full, the transfer engine types timeouts) and matched with KindOf /
// IsKind, never by inspecting message text.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyFiles
	KindFileTooLarge
	KindBlockedFileType
	KindTimeout
	KindStorageExhausted
	KindRateLimited
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap : attaches a kind and message to an underlying cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error       { return New(KindValidation, message) }
func Auth(message string) *Error             { return New(KindAuth, message) }
func Forbidden(message string) *Error        { return New(KindForbidden, message) }
func NotFound(message string) *Error         { return New(KindNotFound, message) }
func Conflict(message string) *Error         { return New(KindConflict, message) }
func TooManyFiles(message string) *Error     { return New(KindTooManyFiles, message) }
func FileTooLarge(message string) *Error     { return New(KindFileTooLarge, message) }
func BlockedFileType(message string) *Error  { return New(KindBlockedFileType, message) }
func Timeout(message string) *Error          { return New(KindTimeout, message) }
func StorageExhausted(message string) *Error { return New(KindStorageExhausted, message) }
func RateLimited(message string) *Error      { return New(KindRateLimited, message) }
func Internal(message string) *Error         { return New(KindInternal, message) }

// KindOf : returns the kind of err, KindInternal when err carries none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus : maps a kind to the response status from the API contract
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindTooManyFiles, KindFileTooLarge, KindBlockedFileType:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindStorageExhausted:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
