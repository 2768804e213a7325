package errors

import (
	"fmt"
)

type AppError struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   string   `json:"details,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Colliding []string `json:"colliding,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
	Status    int      `json:"status"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

// Common error codes
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeDenied           = "VERIFICATION_DENIED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
)

// Denial reason codes. A denial is an expected outcome of arbitration or an
// eligibility check, not an exceptional condition.
const (
	ReasonOutOfRange      = "out-of-range"
	ReasonNetworkMismatch = "network-mismatch"
	ReasonTokenInvalid    = "token-invalid-or-expired"
	ReasonMalformedInput  = "malformed-input"
	ReasonModeRestricted  = "mode-restricted"
	ReasonNotEnabled      = "not-enabled"
	ReasonQuotaExceeded   = "quota-exceeded"
)

// Error constructors
func Validation(message string, details string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
		Reason:  ReasonMalformedInput,
		Status:  400,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  404,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  401,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  403,
	}
}

// Denied builds a verification or eligibility denial with a reason code.
func Denied(reason string, message string) *AppError {
	return &AppError{
		Code:    CodeDenied,
		Message: message,
		Reason:  reason,
		Status:  403,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  409,
	}
}

// BookingConflict carries the identifiers of the colliding reservations so the
// caller can suggest alternatives.
func BookingConflict(message string, colliding []string) *AppError {
	return &AppError{
		Code:      CodeConflict,
		Message:   message,
		Colliding: colliding,
		Status:    409,
	}
}

// StoreUnavailable marks a transient persistence failure. Distinct from a
// business-rule denial so the caller can tell "try again" from "not allowed".
func StoreUnavailable(message string, details string) *AppError {
	return &AppError{
		Code:      CodeStoreUnavailable,
		Message:   message,
		Details:   details,
		Retryable: true,
		Status:    503,
	}
}

func Internal(message string, details string) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Details: details,
		Status:  500,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// IsDenial reports whether err is a denial (expected negative outcome).
func IsDenial(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == CodeDenied
}

// IsRetryable reports whether err is a transient store failure worth retrying.
func IsRetryable(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Retryable
}
