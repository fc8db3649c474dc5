package entity

import (
	"image"
	"image/color"
)

// RasterChannels количество каналов в RasterImage (R, G, B).
const RasterChannels = 3

// RasterImage неизменяемое RGB-изображение 8 бит на канал.
// Создаётся только через NewRasterImage или RasterImageFromImage, поэтому
// ширина, высота и длина буфера всегда согласованы.
type RasterImage struct {
	width  int
	height int
	pix    []uint8 // R, G, B построчно
}

// NewRasterImage создаёт изображение из RGB-буфера, буфер копируется.
func NewRasterImage(width, height int, pix []uint8) (*RasterImage, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInvalidImageError("non-positive dimensions", nil)
	}
	if len(pix) != width*height*RasterChannels {
		return nil, NewInvalidImageError("pixel buffer does not match dimensions", nil)
	}

	buf := make([]uint8, len(pix))
	copy(buf, pix)

	return &RasterImage{width: width, height: height, pix: buf}, nil
}

// RasterImageFromImage приводит любое image.Image к RGB.
// Альфа-канал отбрасывается без смешивания с фоном.
func RasterImageFromImage(img image.Image) (*RasterImage, error) {
	if img == nil {
		return nil, NewInvalidImageError("nil image", nil)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, NewInvalidImageError("empty image bounds", nil)
	}

	pix := make([]uint8, width*height*RasterChannels)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
			i += RasterChannels
		}
	}

	return &RasterImage{width: width, height: height, pix: pix}, nil
}

// Width ширина в пикселях.
func (r *RasterImage) Width() int { return r.width }

// Height высота в пикселях.
func (r *RasterImage) Height() int { return r.height }

// Channels всегда RasterChannels.
func (r *RasterImage) Channels() int { return RasterChannels }

// RGB возвращает цвет пикселя. Координаты должны быть внутри изображения.
func (r *RasterImage) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*r.width + x) * RasterChannels
	return r.pix[i], r.pix[i+1], r.pix[i+2]
}

// Pix возвращает копию RGB-буфера.
func (r *RasterImage) Pix() []uint8 {
	buf := make([]uint8, len(r.pix))
	copy(buf, r.pix)
	return buf
}

// Validate проверяет инварианты изображения. Нужен для значений,
// собранных в обход конструкторов (например, нулевой RasterImage{}).
func (r *RasterImage) Validate() error {
	if r == nil {
		return NewInvalidImageError("nil image", nil)
	}
	if r.width <= 0 || r.height <= 0 {
		return NewInvalidImageError("non-positive dimensions", nil)
	}
	if len(r.pix) != r.width*r.height*RasterChannels {
		return NewInvalidImageError("pixel buffer does not match dimensions", nil)
	}
	return nil
}

// Equal сравнивает изображения попиксельно.
func (r *RasterImage) Equal(other *RasterImage) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.width != other.width || r.height != other.height || len(r.pix) != len(other.pix) {
		return false
	}
	for i := range r.pix {
		if r.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// ToImage возвращает новую *image.NRGBA копию с непрозрачным альфа-каналом.
func (r *RasterImage) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for i, j := 0, 0; i < len(r.pix); i, j = i+RasterChannels, j+4 {
		out.Pix[j] = r.pix[i]
		out.Pix[j+1] = r.pix[i+1]
		out.Pix[j+2] = r.pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}
