package vision

import (
	"image"
	"image/color"
	"math"
)

// drawCircle рисует окружность толщиной thickness на canvas. Закрашиваются пиксели,
// центр которых отстоит от окружности не дальше thickness/2. Пиксели вне холста
// пропускаются.
func drawCircle(canvas *image.NRGBA, cx, cy, radius int, c color.RGBA, thickness int) {
	half := float64(thickness) / 2
	outer := int(math.Ceil(float64(radius) + half))
	b := canvas.Bounds()
	col := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}

	for y := cy - outer; y <= cy+outer; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := cx - outer; x <= cx+outer; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if math.Abs(d-float64(radius)) <= half {
				canvas.SetNRGBA(x, y, col)
			}
		}
	}
}
