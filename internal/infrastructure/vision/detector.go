//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
	"coin-detector/internal/logger"
)

// Backend имя реализации детектора в этой сборке.
const Backend = "opencv"

// Detector детектор монет на OpenCV (сборка с тегом gocv).
type Detector struct{}

// NewDetector создаёт детектор.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect запускает конвейер OpenCV и рисует обводку найденных монет на копии изображения.
func (d *Detector) Detect(ctx context.Context, img *entity.RasterImage, params entity.DetectionParams) (*entity.DetectionResult, error) {
	if err := checkInput(img, params); err != nil {
		return nil, err
	}

	mat, err := rasterToMat(img)
	if err != nil {
		return nil, entity.NewInvalidImageError("convert to mat", err)
	}
	defer mat.Close()

	mask, err := thresholdMask(ctx, mat, params)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	blobs := make([]entity.Blob, 0, contours.Size())
	degenerate := 0
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		perimeter := gocv.ArcLength(c, true)
		area := gocv.ContourArea(c)

		circularity, ok := entity.Circularity(area, perimeter)
		if !ok {
			degenerate++
			continue
		}
		if !params.Accepts(circularity, area) {
			continue
		}

		x, y, r := gocv.MinEnclosingCircle(c)
		blob := entity.Blob{
			CenterX:     float64(x),
			CenterY:     float64(y),
			Radius:      float64(r),
			Area:        area,
			Perimeter:   perimeter,
			Circularity: circularity,
		}
		blobs = append(blobs, blob)

		cx, cy, cr := blob.Circle()
		gocv.Circle(&mat, image.Pt(cx, cy), cr, params.OutlineColor, params.OutlineThickness)
	}

	annotated, err := matToRaster(mat)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"backend":    Backend,
		"width":      img.Width(),
		"height":     img.Height(),
		"contours":   contours.Size(),
		"degenerate": degenerate,
		"coins":      len(blobs),
	}).Debug("Coin detection finished")

	return entity.NewDetectionResult(img.Width(), img.Height(), blobs, annotated), nil
}

// thresholdMask строит бинарную маску: яркость, сглаживание, инверсный адаптивный порог.
// Края сглаживаются повтором крайних пикселей, как и в сборке без gocv.
func thresholdMask(ctx context.Context, mat gocv.Mat, params entity.DetectionParams) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	// Подавляем шум сенсора и сжатия перед порогом.
	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(params.BlurKernelSize, params.BlurKernelSize), 0, 0, gocv.BorderReplicate)

	if err := ctx.Err(); err != nil {
		return gocv.NewMat(), err
	}

	// Локальный порог выдерживает неравномерное освещение.
	mask := gocv.NewMat()
	gocv.AdaptiveThreshold(blur, &mask, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv,
		params.AdaptiveBlockSize, float32(params.AdaptiveBias))

	if err := ctx.Err(); err != nil {
		mask.Close()
		return gocv.NewMat(), err
	}
	return mask, nil
}

// rasterToMat копирует RGB-растр в BGR gocv.Mat.
func rasterToMat(img *entity.RasterImage) (gocv.Mat, error) {
	pix := img.Pix()
	for i := 0; i+2 < len(pix); i += entity.RasterChannels {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}

	view, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC3, pix)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer view.Close()
	if view.Empty() {
		return gocv.NewMat(), errors.New("empty mat")
	}

	// NewMatFromBytes не копирует буфер, отдаём независимую копию.
	return view.Clone(), nil
}

// matToRaster переводит BGR gocv.Mat обратно в RGB-растр.
func matToRaster(mat gocv.Mat) (*entity.RasterImage, error) {
	if mat.Empty() || mat.Channels() != entity.RasterChannels {
		return nil, entity.NewInvalidImageError("unexpected mat layout", nil)
	}

	pix := mat.ToBytes()
	for i := 0; i+2 < len(pix); i += entity.RasterChannels {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
	return entity.NewRasterImage(mat.Cols(), mat.Rows(), pix)
}

// Проверка реализации интерфейса
var _ port.BlobDetector = (*Detector)(nil)
