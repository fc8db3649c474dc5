package vision

import (
	"image"

	"coin-detector/internal/domain/entity"
)

// scoreContours считает периметр, площадь и округлость каждого контура и
// оставляет те, что проходят фильтр params.Accepts. Контуры с вырожденным
// периметром пропускаются и учитываются в degenerate.
func scoreContours(contours [][]image.Point, params entity.DetectionParams) (blobs []entity.Blob, degenerate int) {
	blobs = make([]entity.Blob, 0)
	for _, c := range contours {
		perimeter := arcLength(c)
		area := contourArea(c)

		circularity, ok := entity.Circularity(area, perimeter)
		if !ok {
			degenerate++
			continue
		}
		if !params.Accepts(circularity, area) {
			continue
		}

		x, y, r := minEnclosingCircle(c)
		blobs = append(blobs, entity.Blob{
			CenterX:     x,
			CenterY:     y,
			Radius:      r,
			Area:        area,
			Perimeter:   perimeter,
			Circularity: circularity,
		})
	}
	return blobs, degenerate
}

// checkInput проверяет изображение и параметры до запуска конвейера.
func checkInput(img *entity.RasterImage, params entity.DetectionParams) error {
	if err := img.Validate(); err != nil {
		return err
	}
	return params.Validate()
}
