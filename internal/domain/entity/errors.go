package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage изображение нельзя интерпретировать как RGB-растр.
	ErrInvalidImage = errors.New("invalid image")
	// ErrMissingResource встроенный ресурс (пример изображения) не найден.
	ErrMissingResource = errors.New("missing resource")
	// ErrInvalidParams параметры детекции нарушают ограничения.
	ErrInvalidParams = errors.New("invalid detection params")
	// ErrNoImageSelected в сессии пользователя нет текущего изображения.
	ErrNoImageSelected = errors.New("no image selected")
)

// InvalidImageError ошибка некорректного входного изображения.
type InvalidImageError struct {
	Reason string
	Cause  error
}

// NewInvalidImageError создаёт InvalidImageError.
func NewInvalidImageError(reason string, cause error) *InvalidImageError {
	return &InvalidImageError{Reason: reason, Cause: cause}
}

func (e *InvalidImageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid image: %s: %v", e.Reason, e.Cause)
	}
	return "invalid image: " + e.Reason
}

func (e *InvalidImageError) Unwrap() error { return e.Cause }

// Is позволяет проверять ошибку через errors.Is(err, ErrInvalidImage).
func (e *InvalidImageError) Is(target error) bool { return target == ErrInvalidImage }

// MissingResourceError ресурс по пути Path не найден.
type MissingResourceError struct {
	Path  string
	Cause error
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing resource %q", e.Path)
}

func (e *MissingResourceError) Unwrap() error { return e.Cause }

func (e *MissingResourceError) Is(target error) bool { return target == ErrMissingResource }
