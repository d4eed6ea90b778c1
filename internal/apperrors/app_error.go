package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 业务错误，Code 为 HTTP 状态码，Key 为 i18n 消息 ID
type AppError struct {
	Code    int
	Key     string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 按状态码与消息 ID 比较，便于 errors.Is(err, apperrors.ErrCodeTaken)
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Key == t.Key
}

// WithCause 返回附带底层错误的副本
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// New 创建通用业务错误
func New(code int, key, message string) *AppError {
	return &AppError{Code: code, Key: key, Message: message}
}

var (
	ErrInvalidRequest      = New(http.StatusBadRequest, "error.invalid_request", "Invalid request data")
	ErrInvalidID           = New(http.StatusBadRequest, "error.invalid_id", "Invalid link id")
	ErrInvalidURL          = New(http.StatusBadRequest, "error.invalid_url", "URL must start with http:// or https:// and be well-formed")
	ErrInvalidCode         = New(http.StatusBadRequest, "error.invalid_code", "Custom code must be 1-32 characters long and contain only letters, numbers, underscores, and hyphens")
	ErrReservedCode        = New(http.StatusBadRequest, "error.reserved_code", "This code is reserved and cannot be used")
	ErrInvalidEmail        = New(http.StatusBadRequest, "error.invalid_email", "Invalid email address")
	ErrWeakPassword        = New(http.StatusBadRequest, "error.weak_password", "Password must be at least 6 characters long")
	ErrCodeTaken           = New(http.StatusConflict, "error.code_taken", "Custom code already taken")
	ErrAllocationExhausted = New(http.StatusConflict, "error.allocation_exhausted", "Could not allocate a short code, please retry")
	ErrEmailTaken          = New(http.StatusConflict, "error.email_taken", "Email already registered")
	ErrLinkNotFound        = New(http.StatusNotFound, "error.link_not_found", "Not found")
	ErrUnauthorized        = New(http.StatusUnauthorized, "error.unauthorized", "Unauthorized")
	ErrInvalidCredentials  = New(http.StatusUnauthorized, "error.invalid_credentials", "Invalid email or password")
	ErrForbidden           = New(http.StatusForbidden, "error.forbidden", "Forbidden")
	ErrAdminTokenRequired  = New(http.StatusForbidden, "error.admin_token_required", "A valid admin token is required to register new users")
	ErrTooManyRequests     = New(http.StatusTooManyRequests, "error.too_many_requests", "Too many requests, please try again later")
	ErrInternal            = New(http.StatusInternalServerError, "error.internal", "Internal server error")
)

// SystemError 包装基础设施错误
func SystemError(cause error) *AppError {
	return ErrInternal.WithCause(cause)
}

// From 将任意错误转换为 AppError，未知错误视为系统错误
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return SystemError(err)
}
