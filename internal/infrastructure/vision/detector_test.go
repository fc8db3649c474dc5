package vision

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"coin-detector/internal/domain/entity"
)

func TestDetector_AllWhiteImage(t *testing.T) {
	img := newScene(120, 80).raster(t)

	res, err := NewDetector().Detect(context.Background(), img, entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 0, res.Count)
	require.Empty(t, res.Blobs)
	require.True(t, img.Equal(res.Annotated))
}

func TestDetector_ThreeDiscs(t *testing.T) {
	centers := [][2]float64{{50, 50}, {120, 50}, {190, 50}}
	scene := newScene(240, 100)
	for _, c := range centers {
		scene.disc(int(c[0]), int(c[1]), 20)
	}

	res, err := NewDetector().Detect(context.Background(), scene.raster(t), entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	require.Len(t, res.Blobs, res.Count)
	require.Equal(t, 240, res.ImageWidth)
	require.Equal(t, 100, res.ImageHeight)

	for _, c := range centers {
		found := false
		for _, b := range res.Blobs {
			if math.Abs(b.CenterX-c[0]) <= 2 && math.Abs(b.CenterY-c[1]) <= 2 {
				require.InDelta(t, 20, b.Radius, 2)
				require.Greater(t, b.Circularity, 0.7)
				require.Greater(t, b.Area, 80.0)
				found = true
			}
		}
		require.True(t, found, "no blob near %v", c)
	}
}

func TestDetector_SquareRejectedByCircularity(t *testing.T) {
	// Квадрат всегда даёт π/4 ≈ 0.785, цифровой круг r=15 около 0.85.
	scene := newScene(130, 70).rect(15, 25, 20, 20).disc(90, 35, 15)

	params := entity.DefaultDetectionParams()
	params.CircularityThreshold = 0.82

	res, err := NewDetector().Detect(context.Background(), scene.raster(t), params)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.InDelta(t, 90, res.Blobs[0].CenterX, 2)
	require.InDelta(t, 35, res.Blobs[0].CenterY, 2)
	require.InDelta(t, 15, res.Blobs[0].Radius, 2)
}

func TestDetector_DefaultThresholdKeepsSquare(t *testing.T) {
	scene := newScene(130, 70).rect(15, 25, 20, 20).disc(90, 35, 15)

	res, err := NewDetector().Detect(context.Background(), scene.raster(t), entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	for _, b := range res.Blobs {
		if b.CenterX < 50 {
			require.InDelta(t, math.Pi/4, b.Circularity, 0.01)
		}
	}
}

func TestDetector_MinAreaFiltersSmallDiscs(t *testing.T) {
	scene := newScene(100, 60).disc(25, 30, 3).disc(70, 30, 12)

	res, err := NewDetector().Detect(context.Background(), scene.raster(t), entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	require.InDelta(t, 70, res.Blobs[0].CenterX, 2)
}

func TestDetector_Deterministic(t *testing.T) {
	img := newScene(240, 100).disc(50, 50, 20).disc(120, 45, 18).rect(170, 30, 30, 30).raster(t)
	d := NewDetector()
	params := entity.DefaultDetectionParams()

	first, err := d.Detect(context.Background(), img, params)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), img, params)
	require.NoError(t, err)

	require.Equal(t, first.Count, second.Count)
	require.Equal(t, first.Blobs, second.Blobs)
	require.True(t, first.Annotated.Equal(second.Annotated))
}

func TestDetector_DoesNotMutateInput(t *testing.T) {
	img := newScene(240, 100).disc(50, 50, 20).disc(190, 50, 20).raster(t)
	before := img.Pix()

	res, err := NewDetector().Detect(context.Background(), img, entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)
	require.Equal(t, before, img.Pix())
	require.False(t, img.Equal(res.Annotated))
}

func TestDetector_AnnotationOnlyOnOutlines(t *testing.T) {
	img := newScene(240, 100).disc(50, 50, 20).disc(120, 50, 20).raster(t)
	params := entity.DefaultDetectionParams()

	res, err := NewDetector().Detect(context.Background(), img, params)
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)

	changed := 0
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			r0, g0, b0 := img.RGB(x, y)
			r1, g1, b1 := res.Annotated.RGB(x, y)
			if r0 == r1 && g0 == g1 && b0 == b1 {
				continue
			}
			changed++
			require.Equal(t, []uint8{params.OutlineColor.R, params.OutlineColor.G, params.OutlineColor.B}, []uint8{r1, g1, b1})

			onOutline := false
			for _, b := range res.Blobs {
				cx, cy, r := b.Circle()
				d := math.Hypot(float64(x-cx), float64(y-cy))
				if math.Abs(d-float64(r)) <= float64(params.OutlineThickness)/2+1 {
					onOutline = true
				}
			}
			require.True(t, onOutline, "pixel (%d,%d) changed away from outlines", x, y)
		}
	}
	require.Positive(t, changed)
}

func TestDetector_InvalidImage(t *testing.T) {
	d := NewDetector()
	params := entity.DefaultDetectionParams()

	_, err := d.Detect(context.Background(), nil, params)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = d.Detect(context.Background(), &entity.RasterImage{}, params)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	var invalid *entity.InvalidImageError
	require.ErrorAs(t, err, &invalid)
}

func TestDetector_ZeroSizedImagesRejectedAtConstruction(t *testing.T) {
	_, err := entity.NewRasterImage(0, 10, nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = entity.NewRasterImage(10, 0, nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestDetector_InvalidParams(t *testing.T) {
	params := entity.DefaultDetectionParams()
	params.AdaptiveBlockSize = 4

	_, err := NewDetector().Detect(context.Background(), newScene(10, 10).raster(t), params)
	require.ErrorIs(t, err, entity.ErrInvalidParams)
}

func TestDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector().Detect(ctx, newScene(40, 40).disc(20, 20, 10).raster(t), entity.DefaultDetectionParams())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetector_SinglePixelImage(t *testing.T) {
	scene := newScene(1, 1)
	scene.set(0, 0, 0)

	res, err := NewDetector().Detect(context.Background(), scene.raster(t), entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Equal(t, 0, res.Count)
}
