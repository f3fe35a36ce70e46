// File: error.go
// Title: Application Error
// Description: Error type carrying a message, an optional cause, a code, a
//              severity and free-form details. Compatible with errors.Is and
//              errors.As through Unwrap.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package apperror

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

// Error is a coded application error
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	explicit  bool
	operation string
	details   map[string]interface{}
}

// New creates an error with the given message
func New(message string) *Error {
	return &Error{
		message:  message,
		code:     CodeUnknown,
		severity: SeverityMedium,
		details:  make(map[string]interface{}),
	}
}

// Newf creates an error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps err with a message. The code of a wrapped *Error is inherited.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(message)
	e.cause = err
	var inner *Error
	if errors.As(err, &inner) {
		e.code = inner.code
		e.severity = inner.severity
	}
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the code. The severity follows the code unless it was set
// explicitly.
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	if !e.explicit {
		e.severity = severityOf(code)
	}
	return e
}

// WithSeverity sets the severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	e.explicit = true
	return e
}

// WithDetail adds a detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithOperation names the operation that failed
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Severity returns the severity
func (e *Error) Severity() Severity { return e.severity }

func (e *Error) Operation() string { return e.operation }

func (e *Error) Message() string { return e.message }

// GRPCStatus lets grpc-go translate the error into a status with the
// matching code
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.code.GRPCCode(), e.Error())
}

// Details returns a copy of the details
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler for structured logging and
// transport error payloads
func (e *Error) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{
		"message":  e.message,
		"code":     e.code,
		"severity": e.severity.String(),
	}
	if len(e.details) > 0 {
		data["details"] = e.details
	}
	if e.operation != "" {
		data["operation"] = e.operation
	}
	if e.cause != nil {
		data["cause"] = e.cause.Error()
	}
	return json.Marshal(data)
}

// HasCode reports whether any *Error in err's chain carries code
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the outermost *Error, or CodeUnknown
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the outermost *Error, or SeverityMedium
func GetSeverity(err error) Severity {
	var e *Error
	if errors.As(err, &e) {
		return e.severity
	}
	return SeverityMedium
}
