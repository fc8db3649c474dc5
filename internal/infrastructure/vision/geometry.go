package vision

import (
	"image"
	"math"
	"math/rand/v2"
)

// arcLength длина замкнутого контура, включая отрезок от последней точки к первой.
func arcLength(points []image.Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		length += math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
	}
	return length
}

// contourArea площадь многоугольника по формуле шнурования, без знака.
func contourArea(points []image.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		sum += float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
	}
	return math.Abs(sum) / 2
}

type circle struct {
	x, y, r float64
}

const circleEps = 1e-7

func (c circle) contains(p image.Point) bool {
	return math.Hypot(float64(p.X)-c.x, float64(p.Y)-c.y) <= c.r+circleEps
}

// minEnclosingCircle наименьшая окружность, содержащая все точки (алгоритм Велцля
// в итеративной форме). Порядок точек перемешивается генератором с фиксированным
// зерном, поэтому результат детерминирован.
func minEnclosingCircle(points []image.Point) (x, y, radius float64) {
	switch len(points) {
	case 0:
		return 0, 0, 0
	case 1:
		return float64(points[0].X), float64(points[0].Y), 0
	}

	pts := make([]image.Point, len(points))
	copy(pts, points)
	rng := rand.New(rand.NewPCG(0x636f696e, 0x636972636c65))
	rng.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	c := circle{x: float64(pts[0].X), y: float64(pts[0].Y)}
	for i := 1; i < len(pts); i++ {
		if c.contains(pts[i]) {
			continue
		}
		c = circle{x: float64(pts[i].X), y: float64(pts[i].Y)}
		for j := 0; j < i; j++ {
			if c.contains(pts[j]) {
				continue
			}
			c = circleFrom2(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if c.contains(pts[k]) {
					continue
				}
				c = circleFrom3(pts[i], pts[j], pts[k])
			}
		}
	}

	return c.x, c.y, c.r
}

func circleFrom2(a, b image.Point) circle {
	cx := float64(a.X+b.X) / 2
	cy := float64(a.Y+b.Y) / 2
	return circle{x: cx, y: cy, r: math.Hypot(float64(a.X)-cx, float64(a.Y)-cy)}
}

// circleFrom3 описанная окружность треугольника; для вырожденного
// (коллинеарного) треугольника берётся окружность на самой длинной стороне.
func circleFrom3(a, b, c image.Point) circle {
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	cx, cy := float64(c.X), float64(c.Y)

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < circleEps {
		best := circleFrom2(a, b)
		for _, cand := range []circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if cand.r > best.r {
				best = cand
			}
		}
		return best
	}

	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return circle{x: ux, y: uy, r: math.Hypot(ax-ux, ay-uy)}
}
