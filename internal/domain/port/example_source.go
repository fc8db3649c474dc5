package port

import (
	"context"

	"coin-detector/internal/domain/entity"
)

// ExampleSource источник встроенного примера изображения
type ExampleSource interface {
	// Load возвращает пример или MissingResourceError, если файла нет
	Load(ctx context.Context) (*entity.RasterImage, error)
}
