package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"coin-detector/internal/domain/entity"
)

const (
	// DefaultJPEGQuality качество JPEG для отправки результата
	DefaultJPEGQuality = 90
	// DefaultMaxPixels предел размера изображения по умолчанию (примерно 24 Мп)
	DefaultMaxPixels = 6000 * 4000
)

// Decode декодирует байты изображения в RGB-растр с учётом EXIF-ориентации.
// Пустой буфер, неизвестный формат и изображение больше maxPixels пикселей
// дают InvalidImageError. maxPixels <= 0 снимает ограничение.
func Decode(data []byte, maxPixels int64) (*entity.RasterImage, error) {
	if len(data) == 0 {
		return nil, entity.NewInvalidImageError("empty buffer", nil)
	}

	// Размер читается из заголовка до выделения памяти под пиксели.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, entity.NewInvalidImageError("decode header", err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, entity.NewInvalidImageError(
			fmt.Sprintf("image is %dx%d, more than %d pixels", cfg.Width, cfg.Height, maxPixels), nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.NewInvalidImageError("decode", err)
	}

	return entity.RasterImageFromImage(img)
}

// EncodeJPEG кодирует растр в JPEG
func EncodeJPEG(img *entity.RasterImage, quality int) ([]byte, error) {
	return encode(img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// EncodePNG кодирует растр в PNG без потерь
func EncodePNG(img *entity.RasterImage) ([]byte, error) {
	return encode(img, imaging.PNG)
}

func encode(img *entity.RasterImage, format imaging.Format, opts ...imaging.EncodeOption) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.ToImage(), format, opts...); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
