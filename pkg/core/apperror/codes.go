// File: codes.go
// Title: Error Codes and Severity
// Description: Defines the error codes and severity levels used by the
//              host-side packages (service, store, servers, config).
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package apperror

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code classifies an error
type Code string

const (
	CodeUnknown       Code = "UNKNOWN"
	CodeInternal      Code = "INTERNAL"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeRallySyntax   Code = "RALLY_SYNTAX"
	CodeMatchFinished Code = "MATCH_FINISHED"
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the code text
func (c Code) String() string {
	return string(c)
}

// HTTPStatus maps the code to an HTTP status
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeRallySyntax:
		return http.StatusBadRequest
	case CodeMatchFinished:
		return http.StatusConflict
	case CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps the code to a gRPC status code
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeNotFound:
		return codes.NotFound
	case CodeInvalidInput, CodeRallySyntax:
		return codes.InvalidArgument
	case CodeMatchFinished:
		return codes.FailedPrecondition
	case CodeDatabaseError:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// Severity ranks errors for logging
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the severity name
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// severityOf returns the default severity for a code
func severityOf(code Code) Severity {
	switch code {
	case CodeInvalidInput, CodeRallySyntax, CodeMatchFinished, CodeNotFound:
		return SeverityLow
	case CodeDatabaseError, CodeInternal:
		return SeverityHigh
	case CodeConfigError, CodeInvalidConfig:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
