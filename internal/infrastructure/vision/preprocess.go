package vision

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"

	"coin-detector/internal/domain/entity"
)

// Фиксированные ядра OpenCV для sigma <= 0 и размера окна до 7.
var smallGaussianKernels = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// gaussianWeights возвращает нормированное одномерное гауссово ядро размера ksize.
// Sigma выводится из размера окна так же, как в OpenCV: 0.3·((ksize−1)/2 − 1) + 0.8.
func gaussianWeights(ksize int) []float64 {
	if fixed, ok := smallGaussianKernels[ksize]; ok {
		out := make([]float64, len(fixed))
		copy(out, fixed)
		return out
	}

	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	weights := make([]float64, ksize)
	center := float64(ksize-1) / 2
	var sum float64
	for i := range weights {
		x := float64(i) - center
		weights[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// toGray переводит RGB в яркость с целочисленными весами BT.601, как cv::cvtColor.
func toGray(img *entity.RasterImage) *image.Gray {
	w, h := img.Width(), img.Height()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := img.RGB(x, y)
			gray.Pix[y*gray.Stride+x] = uint8((uint32(r)*4899 + uint32(g)*9617 + uint32(b)*1868 + 1<<13) >> 14)
		}
	}
	return gray
}

// gaussianSmooth сглаживает изображение сепарабельным гауссовым ядром.
// bild без Wrap продолжает края повтором крайних пикселей.
func gaussianSmooth(src *image.Gray, ksize int) *image.Gray {
	if ksize <= 1 {
		return cloneGray(src)
	}

	weights := gaussianWeights(ksize)
	k := convolution.NewKernel(len(weights), 1)
	copy(k.Matrix, weights)

	// Bias 0.5 превращает отбрасывание дробной части в округление.
	opts := &convolution.Options{Bias: 0.5, Wrap: false, KeepAlpha: true}
	out := convolution.Convolve(src, k, opts)
	out = convolution.Convolve(out, k.Transposed(), opts)

	return redToGray(out)
}

// adaptiveThresholdInv бинаризует по локальному гауссову среднему в окне blockSize.
// Передний план (255) там, где pixel − mean <= −⌊bias⌋, то есть пиксель темнее окрестности.
func adaptiveThresholdInv(src *image.Gray, blockSize int, bias float64) *image.Gray {
	mean := gaussianSmooth(src, blockSize)
	delta := int(math.Floor(bias))

	b := src.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			s := int(src.Pix[y*src.Stride+x])
			m := int(mean.Pix[y*mean.Stride+x])
			if s-m <= -delta {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

func redToGray(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[y*gray.Stride+x] = img.Pix[y*img.Stride+x*4]
		}
	}
	return gray
}

func cloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src.Pix[y*src.Stride:y*src.Stride+b.Dx()])
	}
	return out
}
