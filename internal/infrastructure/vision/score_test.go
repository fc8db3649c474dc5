package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"coin-detector/internal/domain/entity"
)

var square10 = []image.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}

func TestScoreContours_CircularityThresholdIsStrict(t *testing.T) {
	exact, ok := entity.Circularity(contourArea(square10), arcLength(square10))
	require.True(t, ok)

	params := entity.DefaultDetectionParams()
	params.MinArea = 0

	params.CircularityThreshold = exact
	blobs, _ := scoreContours([][]image.Point{square10}, params)
	require.Empty(t, blobs, "circularity equal to threshold must be rejected")

	params.CircularityThreshold = exact - 1e-9
	blobs, _ = scoreContours([][]image.Point{square10}, params)
	require.Len(t, blobs, 1)
	require.InDelta(t, exact, blobs[0].Circularity, 1e-12)
}

func TestScoreContours_AreaThresholdIsStrict(t *testing.T) {
	params := entity.DefaultDetectionParams()
	params.CircularityThreshold = 0

	params.MinArea = 100
	blobs, _ := scoreContours([][]image.Point{square10}, params)
	require.Empty(t, blobs, "area equal to threshold must be rejected")

	params.MinArea = 99.999
	blobs, _ = scoreContours([][]image.Point{square10}, params)
	require.Len(t, blobs, 1)
	require.InDelta(t, 100, blobs[0].Area, 1e-12)
	require.InDelta(t, 40, blobs[0].Perimeter, 1e-12)
	require.InDelta(t, 5, blobs[0].CenterX, 1e-9)
	require.InDelta(t, 5, blobs[0].CenterY, 1e-9)
}

func TestScoreContours_DegenerateContoursSkipped(t *testing.T) {
	params := entity.DefaultDetectionParams()
	params.CircularityThreshold = 0
	params.MinArea = 0

	contours := [][]image.Point{
		{{X: 4, Y: 4}},
		{{X: 7, Y: 7}, {X: 7, Y: 7}},
		{},
		{{X: 0, Y: 0}, {X: 9, Y: 0}}, // отрезок: периметр есть, площади нет
	}

	blobs, degenerate := scoreContours(contours, params)
	require.Empty(t, blobs)
	require.Equal(t, 3, degenerate)
}
