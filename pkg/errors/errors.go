// Package errors defines the coded errors classgraph returns at its I/O
// boundaries: record files, configuration, caches, snapshot stores and the
// HTTP API.
//
// The graph core (build, validate) never returns them. Anomalies in the
// declaration data end up in build statistics and the validation report
// instead.
//
// An [*Error] carries a [Code] next to its message. The CLI prints the code
// in brackets after the message and the server sends it as the "code" field
// of an error response, with the HTTP status chosen by [HTTPStatus]:
//
//	err := errors.Wrap(errors.ErrCodeStorage, cause, "save snapshot %s", id)
//	if errors.Is(err, errors.ErrCodeStorage) {
//		// retry, report, ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

// Caller mistakes: bad records, flags, paths or request bodies.
const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidDeclaration Code = "INVALID_DECLARATION"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeDuplicate          Code = "DUPLICATE_DECLARATION"
	ErrCodeInvalidGraph       Code = "INVALID_GRAPH"
)

// Lookups that found nothing.
const (
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"
)

// Failures of the environment or of classgraph itself.
const (
	ErrCodeConfig      Code = "CONFIG_ERROR"
	ErrCodeStorage     Code = "STORAGE_ERROR"
	ErrCodeCache       Code = "CACHE_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidDeclaration: http.StatusBadRequest,
	ErrCodeInvalidFormat:      http.StatusBadRequest,
	ErrCodeInvalidPath:        http.StatusBadRequest,
	ErrCodeDuplicate:          http.StatusBadRequest,
	ErrCodeInvalidGraph:       http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeFileNotFound:       http.StatusNotFound,
	ErrCodeSnapshotNotFound:   http.StatusNotFound,
	ErrCodeUnsupported:        http.StatusNotImplemented,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error returns the message followed by the cause, if any. The code is not
// part of the text.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] but keeps cause for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its
// cause, or err.Error() for uncoded errors. Server responses use it so
// internal paths and driver errors stay out of the body.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err's code to a response status. Uncoded errors and
// infrastructure failures are 500.
func HTTPStatus(err error) int {
	if s, ok := statusByCode[GetCode(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
