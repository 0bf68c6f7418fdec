package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode classifies an application error.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Giveaway lifecycle
	ErrCodeInvalidDuration  ErrorCode = "INVALID_DURATION"
	ErrCodeInvalidQuota     ErrorCode = "INVALID_QUOTA"
	ErrCodeGiveawayNotFound ErrorCode = "GIVEAWAY_NOT_FOUND"
	ErrCodeNoParticipants   ErrorCode = "NO_PARTICIPANTS"

	// Gateways
	ErrCodePersistence ErrorCode = "PERSISTENCE_FAILURE"
	ErrCodeTransport   ErrorCode = "TRANSPORT_FAILURE"
)

// AppError is a typed application error.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by code so errors.Is works against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsNotFound reports whether the error is an expected "missing target" outcome.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeGiveawayNotFound
}

// IsValidation reports whether the error was raised before any state mutation.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeInvalidDuration ||
		e.Code == ErrCodeInvalidQuota ||
		e.Code == ErrCodeBadRequest
}

// IsGateway reports whether the error came from an external collaborator.
func (e *AppError) IsGateway() bool {
	return e.Code == ErrCodePersistence || e.Code == ErrCodeTransport
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrInvalidDuration = &AppError{Code: ErrCodeInvalidDuration, Message: "invalid duration"}
	ErrInvalidQuota    = &AppError{Code: ErrCodeInvalidQuota, Message: "invalid winners count"}
	ErrNotFound        = &AppError{Code: ErrCodeGiveawayNotFound, Message: "giveaway not found"}
	ErrNoParticipants  = &AppError{Code: ErrCodeNoParticipants, Message: "no participants"}
	ErrPersistence     = &AppError{Code: ErrCodePersistence, Message: "persistence failure"}
	ErrTransport       = &AppError{Code: ErrCodeTransport, Message: "transport failure"}
)

// NewInvalidDurationError is returned when a duration text parses to zero.
func NewInvalidDurationError(text string) *AppError {
	return New(ErrCodeInvalidDuration, "Invalid time! Use 1h, 30m, 1d").
		WithDetail("input", text)
}

// NewInvalidQuotaError is returned for a non-positive winners count.
func NewInvalidQuotaError(quota int) *AppError {
	return New(ErrCodeInvalidQuota, "Winners count must be > 0").
		WithDetail("winners_count", quota)
}

func NewGiveawayNotFoundError(ref string) *AppError {
	return New(ErrCodeGiveawayNotFound, fmt.Sprintf("Giveaway not found: %s", ref)).
		WithDetail("giveaway", ref)
}

func NewNoParticipantsError(ref string) *AppError {
	return New(ErrCodeNoParticipants, "No participants to reroll").
		WithDetail("giveaway", ref)
}

func NewPersistenceError(operation string, err error) *AppError {
	return Wrap(err, ErrCodePersistence, fmt.Sprintf("Persistence operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewTransportError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeTransport, fmt.Sprintf("Messaging operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any AppError in the chain carries code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
