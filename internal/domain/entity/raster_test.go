package entity

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRasterImage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		pix    []uint8
	}{
		{"zero width", 0, 2, nil},
		{"zero height", 2, 0, nil},
		{"negative", -1, 1, nil},
		{"short buffer", 2, 2, make([]uint8, 11)},
		{"long buffer", 1, 1, make([]uint8, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewRasterImage(tt.width, tt.height, tt.pix)
			require.Nil(t, img)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidImage))

			var invalid *InvalidImageError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNewRasterImage_CopiesBuffer(t *testing.T) {
	pix := []uint8{10, 20, 30, 40, 50, 60}
	img, err := NewRasterImage(2, 1, pix)
	require.NoError(t, err)

	pix[0] = 99
	r, g, b := img.RGB(0, 0)
	require.Equal(t, uint8(10), r)
	require.Equal(t, uint8(20), g)
	require.Equal(t, uint8(30), b)

	out := img.Pix()
	out[3] = 0
	r, _, _ = img.RGB(1, 0)
	require.Equal(t, uint8(40), r)
}

func TestRasterImageFromImage_DropsAlphaAndOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 10})
	src.SetNRGBA(6, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	img, err := RasterImageFromImage(src)
	require.NoError(t, err)
	require.Equal(t, 2, img.Width())
	require.Equal(t, 1, img.Height())
	require.Equal(t, RasterChannels, img.Channels())

	r, g, b := img.RGB(0, 0)
	require.Equal(t, []uint8{200, 100, 50}, []uint8{r, g, b})
	r, g, b = img.RGB(1, 0)
	require.Equal(t, []uint8{1, 2, 3}, []uint8{r, g, b})
}

func TestRasterImageFromImage_Empty(t *testing.T) {
	_, err := RasterImageFromImage(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	require.ErrorIs(t, err, ErrInvalidImage)

	_, err = RasterImageFromImage(nil)
	require.ErrorIs(t, err, ErrInvalidImage)
}

func TestRasterImage_ValidateZeroValue(t *testing.T) {
	require.ErrorIs(t, (&RasterImage{}).Validate(), ErrInvalidImage)

	var nilImg *RasterImage
	require.ErrorIs(t, nilImg.Validate(), ErrInvalidImage)
}

func TestRasterImage_ToImageAndEqual(t *testing.T) {
	img, err := NewRasterImage(1, 2, []uint8{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	nrgba := img.ToImage()
	require.Equal(t, []uint8{1, 2, 3, 255, 4, 5, 6, 255}, nrgba.Pix)

	back, err := RasterImageFromImage(nrgba)
	require.NoError(t, err)
	require.True(t, img.Equal(back))

	other, err := NewRasterImage(1, 2, []uint8{1, 2, 3, 4, 5, 7})
	require.NoError(t, err)
	require.False(t, img.Equal(other))
}
