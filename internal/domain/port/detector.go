package port

import (
	"context"

	"coin-detector/internal/domain/entity"
)

// BlobDetector интерфейс детектора округлых объектов (монет)
type BlobDetector interface {
	// Detect находит монеты на изображении и возвращает результат с аннотированной копией.
	// Входное изображение не изменяется.
	Detect(ctx context.Context, img *entity.RasterImage, params entity.DetectionParams) (*entity.DetectionResult, error)
}
