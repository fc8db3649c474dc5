package entity

import (
	"fmt"
	"image/color"
	"math"
)

// DetectionParams настраиваемые параметры детектора монет.
// Значения по умолчанию подобраны эмпирически и не откалиброваны под размеры реальных монет.
type DetectionParams struct {
	BlurKernelSize       int        // окно гауссова сглаживания, нечётное
	AdaptiveBlockSize    int        // окно локального среднего, нечётное, > 1
	AdaptiveBias         float64    // смещение от локального среднего
	CircularityThreshold float64    // минимальная округлость, [0, 1]
	MinArea              float64    // минимальная площадь в пикселях
	OutlineColor         color.RGBA // цвет обводки найденных монет
	OutlineThickness     int        // толщина обводки в пикселях
}

// DefaultDetectionParams возвращает параметры по умолчанию.
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		BlurKernelSize:       5,
		AdaptiveBlockSize:    11,
		AdaptiveBias:         2,
		CircularityThreshold: 0.7,
		MinArea:              80,
		OutlineColor:         color.RGBA{G: 255, A: 255},
		OutlineThickness:     2,
	}
}

// Validate проверяет ограничения параметров.
func (p DetectionParams) Validate() error {
	if p.BlurKernelSize <= 0 || p.BlurKernelSize%2 == 0 {
		return fmt.Errorf("%w: blur kernel size must be odd and positive (got %d)", ErrInvalidParams, p.BlurKernelSize)
	}
	if p.AdaptiveBlockSize <= 1 || p.AdaptiveBlockSize%2 == 0 {
		return fmt.Errorf("%w: adaptive block size must be odd and greater than 1 (got %d)", ErrInvalidParams, p.AdaptiveBlockSize)
	}
	if math.IsNaN(p.AdaptiveBias) || math.IsInf(p.AdaptiveBias, 0) {
		return fmt.Errorf("%w: adaptive bias must be finite", ErrInvalidParams)
	}
	if !(p.CircularityThreshold >= 0 && p.CircularityThreshold <= 1) {
		return fmt.Errorf("%w: circularity threshold must be in [0, 1] (got %v)", ErrInvalidParams, p.CircularityThreshold)
	}
	if !(p.MinArea >= 0) || math.IsInf(p.MinArea, 0) {
		return fmt.Errorf("%w: min area must be non-negative (got %v)", ErrInvalidParams, p.MinArea)
	}
	if p.OutlineThickness <= 0 {
		return fmt.Errorf("%w: outline thickness must be positive (got %d)", ErrInvalidParams, p.OutlineThickness)
	}
	return nil
}

// Accepts решает, считается ли контур монетой. Оба сравнения строгие:
// значения, равные порогам, отбрасываются.
func (p DetectionParams) Accepts(circularity, area float64) bool {
	return circularity > p.CircularityThreshold && area > p.MinArea
}

// Circularity считает 4π·area/perimeter². Второе значение false, если периметр
// вырожден и округлость не определена.
func Circularity(area, perimeter float64) (float64, bool) {
	if !(perimeter > MinPerimeter) {
		return 0, false
	}
	return 4 * math.Pi * area / (perimeter * perimeter), true
}

// MinPerimeter периметр, ниже которого контур считается вырожденным (точка).
const MinPerimeter = 1e-9

// DetectionResult итог детекции по одному изображению.
type DetectionResult struct {
	ImageWidth  int          // ширина исходного изображения
	ImageHeight int          // высота исходного изображения
	Count       int          // количество найденных монет, всегда len(Blobs)
	Blobs       []Blob       // найденные монеты в порядке обхода контуров
	Annotated   *RasterImage // копия исходного изображения с обводкой
}

// NewDetectionResult собирает результат, Count вычисляется из blobs.
func NewDetectionResult(width, height int, blobs []Blob, annotated *RasterImage) *DetectionResult {
	if blobs == nil {
		blobs = []Blob{}
	}
	return &DetectionResult{
		ImageWidth:  width,
		ImageHeight: height,
		Count:       len(blobs),
		Blobs:       blobs,
		Annotated:   annotated,
	}
}

// HasCoins true, если найдена хотя бы одна монета.
func (r *DetectionResult) HasCoins() bool {
	return r.Count > 0
}
