//go:build gocv
// +build gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"coin-detector/internal/domain/entity"
)

func TestThresholdMask_MatchesPureStagesAtEdges(t *testing.T) {
	// Диски срезаны краями изображения, поэтому обработка границы видна в маске.
	img := newScene(90, 60).disc(0, 30, 14).disc(89, 10, 12).disc(45, 59, 10).raster(t)
	params := entity.DefaultDetectionParams()

	mat, err := rasterToMat(img)
	require.NoError(t, err)
	defer mat.Close()

	mask, err := thresholdMask(context.Background(), mat, params)
	require.NoError(t, err)
	defer mask.Close()

	want := adaptiveThresholdInv(gaussianSmooth(toGray(img), params.BlurKernelSize), params.AdaptiveBlockSize, params.AdaptiveBias)
	got := mask.ToBytes()
	require.Len(t, got, len(want.Pix))

	// Допускаем единичные расхождения округления между float и fixed-point ядрами OpenCV.
	diff := 0
	for i := range got {
		if got[i] != want.Pix[i] {
			diff++
		}
	}
	require.LessOrEqual(t, diff, len(got)/200)
}
