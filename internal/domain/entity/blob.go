package entity

// Blob округлая область, прошедшая фильтр детектора
type Blob struct {
	CenterX     float64 // центр минимальной описанной окружности, X
	CenterY     float64 // центр минимальной описанной окружности, Y
	Radius      float64 // радиус минимальной описанной окружности
	Area        float64 // площадь, ограниченная контуром
	Perimeter   float64 // длина замкнутого контура
	Circularity float64 // 4π·Area/Perimeter²
}

// Circle возвращает целочисленные центр и радиус для отрисовки (с отбрасыванием дробной части)
func (b Blob) Circle() (x, y, radius int) {
	return int(b.CenterX), int(b.CenterY), int(b.Radius)
}
