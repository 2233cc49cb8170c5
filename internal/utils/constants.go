package utils

// Pagination
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1
)

// Import / export
const (
	MaxImportFileSize = 10 * 1024 * 1024 // 10MB
	DateLayout        = "2006-01-02"
	ExportTimeLayout  = "20060102T150405Z"
)

// Context keys set by middleware
const (
	ContextUserID    = "user_id"
	ContextUserType  = "user_type"
	ContextRequestID = "request_id"
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error messages
const (
	ErrValidationFailed = "validation failed"
	ErrResourceNotFound = "resource not found"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized access"
	ErrForbidden        = "admin access required"
	ErrTooManyRequests  = "too many requests"
)
