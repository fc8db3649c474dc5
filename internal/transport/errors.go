package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"coin-detector/internal/domain/entity"
)

// ErrorType категория ошибки HTTP API
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeInvalidImage ErrorType = "invalid_image"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeTooLarge     ErrorType = "too_large"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError ошибка с HTTP-статусом для ответа клиенту
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, StatusCode: status, Cause: cause}
}

// NewValidationError ошибка входных данных запроса
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewInternalError непредвиденная ошибка сервера
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// classify переводит ошибку домена в AppError
func classify(err error) *AppError {
	var appErr *AppError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &tooLarge):
		return newAppError(ErrorTypeTooLarge, http.StatusRequestEntityTooLarge, "upload is too large", err)
	case errors.Is(err, entity.ErrInvalidParams):
		return NewValidationError("invalid detection parameters", err)
	case errors.Is(err, entity.ErrInvalidImage):
		return newAppError(ErrorTypeInvalidImage, http.StatusUnprocessableEntity, "image cannot be decoded", err)
	case errors.Is(err, entity.ErrMissingResource):
		return newAppError(ErrorTypeNotFound, http.StatusNotFound, "example image is not available", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, "detection timed out", err)
	default:
		return NewInternalError("detection failed", err)
	}
}
