package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"coin-detector/internal/domain/entity"
)

// sceneBuilder рисует синтетические сцены: чёрные фигуры на белом фоне.
type sceneBuilder struct {
	width, height int
	pix           []uint8
}

func newScene(width, height int) *sceneBuilder {
	pix := make([]uint8, width*height*entity.RasterChannels)
	for i := range pix {
		pix[i] = 255
	}
	return &sceneBuilder{width: width, height: height, pix: pix}
}

func (s *sceneBuilder) set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	i := (y*s.width + x) * entity.RasterChannels
	s.pix[i], s.pix[i+1], s.pix[i+2] = v, v, v
}

func (s *sceneBuilder) disc(cx, cy, r int) *sceneBuilder {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				s.set(x, y, 0)
			}
		}
	}
	return s
}

func (s *sceneBuilder) rect(x0, y0, w, h int) *sceneBuilder {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			s.set(x, y, 0)
		}
	}
	return s
}

func (s *sceneBuilder) raster(t *testing.T) *entity.RasterImage {
	t.Helper()
	img, err := entity.NewRasterImage(s.width, s.height, s.pix)
	require.NoError(t, err)
	return img
}

// grayFromRows строит маску из строк: '#' означает передний план.
func grayFromRows(rows ...string) *image.Gray {
	h := len(rows)
	w := len(rows[0])
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
	return g
}
