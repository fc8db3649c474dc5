package transport

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "coin-detector/internal/application"
	"coin-detector/internal/domain/entity"
	"coin-detector/internal/infrastructure/imageio"
	"coin-detector/internal/logger"
)

// Options настройки HTTP API
type Options struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// ParamsForm необязательные переопределения параметров детекции
type ParamsForm struct {
	BlurKernelSize       *int     `form:"blur_kernel_size"`
	AdaptiveBlockSize    *int     `form:"adaptive_block_size"`
	AdaptiveBias         *float64 `form:"adaptive_bias"`
	CircularityThreshold *float64 `form:"circularity_threshold"`
	MinArea              *float64 `form:"min_area"`
}

// Apply накладывает заданные поля на base
func (f ParamsForm) Apply(base entity.DetectionParams) entity.DetectionParams {
	if f.BlurKernelSize != nil {
		base.BlurKernelSize = *f.BlurKernelSize
	}
	if f.AdaptiveBlockSize != nil {
		base.AdaptiveBlockSize = *f.AdaptiveBlockSize
	}
	if f.AdaptiveBias != nil {
		base.AdaptiveBias = *f.AdaptiveBias
	}
	if f.CircularityThreshold != nil {
		base.CircularityThreshold = *f.CircularityThreshold
	}
	if f.MinArea != nil {
		base.MinArea = *f.MinArea
	}
	return base
}

// BlobResponse одна найденная монета
type BlobResponse struct {
	CenterX     float64 `json:"center_x"`
	CenterY     float64 `json:"center_y"`
	Radius      float64 `json:"radius"`
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	Circularity float64 `json:"circularity"`
}

// DetectResponse ответ на запрос детекции
type DetectResponse struct {
	Count          int            `json:"count"`
	Blobs          []BlobResponse `json:"blobs"`
	Message        string         `json:"message"`
	Success        bool           `json:"success"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	AnnotatedImage string         `json:"annotated_image"`
	MimeType       string         `json:"mime_type"`
}

type ErrorResponse struct {
	Error   string    `json:"error"`
	Type    ErrorType `json:"type"`
	Message string    `json:"message,omitempty"`
}

// NewHandler собирает gin-роутер HTTP API
func NewHandler(svc *app.DetectionService, opts Options) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", healthCheck)

	api := r.Group("/api/v1")
	api.Use(requestSizeLimiter(opts.MaxUploadBytes))
	api.POST("/detect", detectUpload(svc, opts))
	api.POST("/detect/example", detectExample(svc, opts))

	return r
}

func detectUpload(svc *app.DetectionService, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c.Request.Context(), opts.RequestTimeout)
		defer cancel()

		fileHeader, err := c.FormFile("image")
		if err != nil {
			if appErr := classify(err); appErr.Type == ErrorTypeTooLarge {
				respondError(c, appErr)
				return
			}
			respondError(c, NewValidationError("multipart field \"image\" is required", err))
			return
		}

		params, ok := bindParams(c, svc.Params())
		if !ok {
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, NewInternalError("cannot open upload", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, classify(err))
			return
		}

		img, err := svc.DecodeUpload(data)
		if err != nil {
			respondError(c, classify(err))
			return
		}

		runDetection(c, ctx, svc, img, params)
	}
}

func detectExample(svc *app.DetectionService, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c.Request.Context(), opts.RequestTimeout)
		defer cancel()

		params, ok := bindParams(c, svc.Params())
		if !ok {
			return
		}

		img, err := svc.LoadExample(ctx)
		if err != nil {
			respondError(c, classify(err))
			return
		}

		runDetection(c, ctx, svc, img, params)
	}
}

func bindParams(c *gin.Context, base entity.DetectionParams) (entity.DetectionParams, bool) {
	var form ParamsForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, NewValidationError("invalid detection parameters", err))
		return base, false
	}

	params := form.Apply(base)
	if err := params.Validate(); err != nil {
		respondError(c, classify(err))
		return base, false
	}
	return params, true
}

func runDetection(c *gin.Context, ctx context.Context, svc *app.DetectionService, img *entity.RasterImage, params entity.DetectionParams) {
	startTime := time.Now()

	out, err := svc.DetectImage(ctx, img, params)
	if err != nil {
		respondError(c, classify(err))
		return
	}

	encoded, err := imageio.EncodePNG(out.Result.Annotated)
	if err != nil {
		respondError(c, NewInternalError("cannot encode annotated image", err))
		return
	}

	logger.WithFields(logrus.Fields{
		"path":               c.Request.URL.Path,
		"coins":              out.Result.Count,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Coin detection request completed")

	c.JSON(http.StatusOK, newDetectResponse(out, encoded))
}

func newDetectResponse(out *app.DetectionOutput, png []byte) DetectResponse {
	blobs := make([]BlobResponse, 0, len(out.Result.Blobs))
	for _, b := range out.Result.Blobs {
		blobs = append(blobs, BlobResponse{
			CenterX:     b.CenterX,
			CenterY:     b.CenterY,
			Radius:      b.Radius,
			Area:        b.Area,
			Perimeter:   b.Perimeter,
			Circularity: b.Circularity,
		})
	}

	return DetectResponse{
		Count:          out.Result.Count,
		Blobs:          blobs,
		Message:        out.Message,
		Success:        out.Success,
		Width:          out.Result.ImageWidth,
		Height:         out.Result.ImageHeight,
		AnnotatedImage: base64.StdEncoding.EncodeToString(png),
		MimeType:       "image/png",
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"ip":          c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("HTTP request")
	}
}

func respondError(c *gin.Context, appErr *AppError) {
	logger.WithError(appErr).WithFields(logrus.Fields{
		"status_code": appErr.StatusCode,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Warn("Request failed")

	c.AbortWithStatusJSON(appErr.StatusCode, ErrorResponse{
		Error:   http.StatusText(appErr.StatusCode),
		Type:    appErr.Type,
		Message: appErr.Error(),
	})
}
