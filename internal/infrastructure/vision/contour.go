package vision

import "image"

// Соседи по часовой стрелке на экране (ось Y вниз), начиная с востока.
var neighbours = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
}

const (
	dirWest = 4

	cellBackground int32 = 0
	cellForeground int32 = -1
	cellOutside    int32 = -2 // фон, 4-связный с рамкой
)

// labelGrid маска с рамкой в один пиксель: координата (x, y) изображения
// хранится в ячейке (x+1, y+1), рамка всегда фон.
type labelGrid struct {
	width  int // ширина с рамкой
	height int // высота с рамкой
	labels []int32
}

func (g *labelGrid) at(x, y int) int32 {
	return g.labels[(y+1)*g.width+(x+1)]
}

func (g *labelGrid) set(x, y int, v int32) {
	g.labels[(y+1)*g.width+(x+1)] = v
}

// findExternalContours возвращает внешние границы 8-связных областей переднего плана.
// Дыры не возвращаются, области внутри дыр других областей тоже пропускаются.
// Порядок контуров совпадает с порядком первых пикселей областей при построчном обходе.
// Точки каждого контура сжаты: оставлены только вершины, где меняется направление.
func findExternalContours(mask *image.Gray) [][]image.Point {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	grid := &labelGrid{width: w + 2, height: h + 2, labels: make([]int32, (w+2)*(h+2))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] != 0 {
				grid.set(x, y, cellForeground)
			}
		}
	}

	// Внешний фон: заливка от угла рамки по 4-связности.
	stack := []image.Point{{X: -1, Y: -1}}
	grid.set(-1, -1, cellOutside)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < -1 || ny < -1 || nx > w || ny > h {
				continue
			}
			if grid.at(nx, ny) == cellBackground {
				grid.set(nx, ny, cellOutside)
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	contours := make([][]image.Point, 0)
	var label int32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if grid.at(x, y) != cellForeground {
				continue
			}

			label++
			labelComponent(grid, x, y, label)

			// Первый пиксель области при построчном обходе внешний, только если
			// над ним внешний фон; иначе область лежит внутри чужой дыры.
			if grid.at(x, y-1) != cellOutside {
				continue
			}

			contours = append(contours, approxSimple(traceBorder(grid, x, y, label)))
		}
	}

	return contours
}

// labelComponent помечает 8-связную область, начиная с (x, y).
func labelComponent(grid *labelGrid, x, y int, label int32) {
	stack := []image.Point{{X: x, Y: y}}
	grid.set(x, y, label)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range neighbours {
			nx, ny := p.X+d.X, p.Y+d.Y
			if grid.at(nx, ny) == cellForeground {
				grid.set(nx, ny, label)
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}
}

// traceBorder обходит внешнюю границу области label, начиная с её первого пикселя
// (слева от него фон). Обход Suzuki–Abe: сначала поиск предыдущей точки по часовой
// стрелке, затем следование против часовой.
func traceBorder(grid *labelGrid, sx, sy int, label int32) []image.Point {
	start := image.Point{X: sx, Y: sy}

	first, ok := findNeighbour(grid, start, dirWest, label, 1)
	if !ok {
		return []image.Point{start}
	}

	points := make([]image.Point, 0, 64)
	prev := first
	cur := start
	for {
		next, _ := findNeighbour(grid, cur, directionTo(cur, prev), label, -1)
		points = append(points, cur)
		if next == start && cur == first {
			break
		}
		prev, cur = cur, next
	}
	return points
}

// findNeighbour ищет первого соседа с меткой label вокруг center.
// При step = 1 обход идёт по часовой стрелке с from включительно. При step = -1
// обход идёт против часовой, начиная с соседа перед from, и from проверяется последним.
func findNeighbour(grid *labelGrid, center image.Point, from int, label int32, step int) (image.Point, bool) {
	for i := 0; i < 8; i++ {
		var dir int
		if step > 0 {
			dir = (from + i) % 8
		} else {
			dir = ((from-1-i)%8 + 8) % 8
		}
		p := center.Add(neighbours[dir])
		if grid.at(p.X, p.Y) == label {
			return p, true
		}
	}
	return image.Point{}, false
}

// directionTo индекс соседа to относительно from.
func directionTo(from, to image.Point) int {
	d := to.Sub(from)
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// approxSimple убирает промежуточные точки горизонтальных, вертикальных
// и диагональных отрезков замкнутого контура.
func approxSimple(points []image.Point) []image.Point {
	n := len(points)
	if n <= 2 {
		return points
	}

	out := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := points[(i-1+n)%n]
		next := points[(i+1)%n]
		if points[i].Sub(prev) != next.Sub(points[i]) {
			out = append(out, points[i])
		}
	}
	if len(out) == 0 {
		return points[:1]
	}
	return out
}
