//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
	"coin-detector/internal/logger"
)

// Backend имя реализации детектора в этой сборке.
const Backend = "pure-go"

// Detector детектор монет на чистом Go (сборка без тега gocv).
// Повторяет конвейер OpenCV: яркость → гауссово сглаживание → адаптивный
// порог (инверсный) → внешние контуры → фильтр по округлости и площади.
type Detector struct{}

// NewDetector создаёт детектор.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect находит монеты и рисует их обводку на копии изображения.
func (d *Detector) Detect(ctx context.Context, img *entity.RasterImage, params entity.DetectionParams) (*entity.DetectionResult, error) {
	if err := checkInput(img, params); err != nil {
		return nil, err
	}

	gray := toGray(img)
	blurred := gaussianSmooth(gray, params.BlurKernelSize)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := adaptiveThresholdInv(blurred, params.AdaptiveBlockSize, params.AdaptiveBias)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contours := findExternalContours(mask)
	blobs, degenerate := scoreContours(contours, params)

	// Рисуем на рабочей копии, исходное изображение не трогаем.
	canvas := img.ToImage()
	for _, b := range blobs {
		x, y, r := b.Circle()
		drawCircle(canvas, x, y, r, params.OutlineColor, params.OutlineThickness)
	}

	annotated, err := entity.RasterImageFromImage(canvas)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"backend":    Backend,
		"width":      img.Width(),
		"height":     img.Height(),
		"contours":   len(contours),
		"degenerate": degenerate,
		"coins":      len(blobs),
	}).Debug("Coin detection finished")

	return entity.NewDetectionResult(img.Width(), img.Height(), blobs, annotated), nil
}

// Проверка реализации интерфейса
var _ port.BlobDetector = (*Detector)(nil)
