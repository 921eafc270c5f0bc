package dto

import "github.com/makkenzo/gdb-api/internal/ierr"

const (
	MessageInvalidDataFormat = "Invalid data format"
	MessageUnauthorized      = "Unauthorized"
	MessageForbidden         = "Forbidden"
)

// ErrorResponse is the envelope returned for every failed request.
type ErrorResponse[T any] struct {
	Code    string `json:"code" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"Invalid data format"`
	Data    T      `json:"data,omitempty"`
}

func NewErrorResponse[T any](code, message string, data T) ErrorResponse[T] {
	return ErrorResponse[T]{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func ValidationErrorResponse(fields map[string][]string) ErrorResponse[map[string][]string] {
	return NewErrorResponse(ierr.CodeValidation, MessageInvalidDataFormat, fields)
}

func UnauthorizedErrorResponse() ErrorResponse[string] {
	return NewErrorResponse(ierr.CodeUnauthorized, MessageUnauthorized, "")
}

func ApplicationErrorResponse(message string) ErrorResponse[string] {
	return NewErrorResponse(ierr.CodeApplication, message, "")
}
