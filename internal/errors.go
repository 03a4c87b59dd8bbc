package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTitle     ErrorCode = "INVALID_TITLE"
	ErrCodeInvalidUnit      ErrorCode = "INVALID_UNIT"
	ErrCodeReasonRequired   ErrorCode = "REASON_REQUIRED"

	ErrCodeReportNotFound      ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeInvalidReportStatus ErrorCode = "INVALID_REPORT_STATUS"
	ErrCodeForbiddenDepartment ErrorCode = "FORBIDDEN_DEPARTMENT"
	ErrCodeUnauthorizedAccess  ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeForbiddenRole       ErrorCode = "FORBIDDEN_ROLE"

	ErrCodeDepartmentNotFound     ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeEquipmentNotFound      ErrorCode = "EQUIPMENT_NOT_FOUND"
	ErrCodeInvalidEquipmentStatus ErrorCode = "INVALID_EQUIPMENT_STATUS"
	ErrCodeStatusUnchanged        ErrorCode = "STATUS_UNCHANGED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if v, ok := e.Details.(ValidationErrors); ok && len(v.Errors) > 0 {
		return v.Errors[0].Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins every field message of a validation error.
func (e *AppError) GetDetailedMessage() string {
	v, ok := e.Details.(ValidationErrors)
	if !ok || len(v.Errors) == 0 {
		return e.Message
	}
	messages := make([]string, len(v.Errors))
	for i, fe := range v.Errors {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(t ErrorType, code ErrorCode, message string, status int) *AppError {
	return &AppError{Type: t, Code: code, Message: message, StatusCode: status}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, message, http.StatusBadRequest)
}

// NewValidationFieldError reports a single invalid field; code is the
// field-level code, the envelope code stays VALIDATION_FAILED.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError("Validation failed", ErrCodeValidationFailed).WithDetails(ValidationErrors{
		Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}},
	})
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, http.StatusNotFound)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, code, message, http.StatusForbidden)
}

// NewInternalError keeps cause for logs; it is never serialised.
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError).WithCause(cause)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, message, http.StatusConflict)
}

func NewTooManyRequestsError(message string) *AppError {
	return newAppError(ErrorTypeRateLimited, ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

var (
	ErrReportNotFound      = NewNotFoundError("Report not found", ErrCodeReportNotFound)
	ErrInvalidReportStatus = NewValidationError("invalid report status for this operation", ErrCodeInvalidReportStatus)
	ErrForbiddenDepartment = NewForbiddenError("reports can only be submitted for your own department", ErrCodeForbiddenDepartment)
	ErrUnauthorizedAccess  = NewForbiddenError("unauthorized access", ErrCodeUnauthorizedAccess)
	ErrForbiddenRole       = NewForbiddenError("your role is not allowed to perform this action", ErrCodeForbiddenRole)

	ErrDepartmentNotFound     = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
	ErrEquipmentNotFound      = NewNotFoundError("Equipment not found", ErrCodeEquipmentNotFound)
	ErrInvalidEquipmentStatus = NewValidationError("unknown equipment status", ErrCodeInvalidEquipmentStatus)
	ErrStatusUnchanged        = NewConflictError("equipment already has this status", ErrCodeStatusUnchanged)
	ErrInvalidCategory        = NewValidationError("unknown or inactive data category", ErrCodeInvalidCategory)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
