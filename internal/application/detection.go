package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
	"coin-detector/internal/infrastructure/imageio"
	"coin-detector/internal/logger"
)

const (
	msgCoinsFound   = "✅ Найдено монет: %d"
	msgCoinsMissing = "⚠️ Монеты не найдены. Попробуйте другое фото: однотонный фон, ровный свет, монеты не касаются друг друга."
)

// DetectionOutput результат детекции для оболочек
type DetectionOutput struct {
	Result  *entity.DetectionResult
	Message string
	Success bool // хотя бы одна монета найдена
}

// SummaryMessage текст итога по результату детекции
func SummaryMessage(result *entity.DetectionResult) string {
	if result.HasCoins() {
		return fmt.Sprintf(msgCoinsFound, result.Count)
	}
	return msgCoinsMissing
}

// DetectionService выбор изображения и запуск детекции
type DetectionService struct {
	users    *UserService
	detector port.BlobDetector
	examples port.ExampleSource
	params   entity.DetectionParams

	maxPixels int64
}

// NewDetectionService создаёт сервис. maxPixels ограничивает размер
// загружаемых изображений, 0 снимает ограничение.
func NewDetectionService(users *UserService, detector port.BlobDetector, examples port.ExampleSource, params entity.DetectionParams, maxPixels int64) *DetectionService {
	return &DetectionService{
		users:     users,
		detector:  detector,
		examples:  examples,
		params:    params,
		maxPixels: maxPixels,
	}
}

// Params параметры детекции по умолчанию для этого сервиса
func (s *DetectionService) Params() entity.DetectionParams {
	return s.params
}

// DecodeUpload декодирует загруженное изображение с учётом предела размера
func (s *DetectionService) DecodeUpload(data []byte) (*entity.RasterImage, error) {
	return imageio.Decode(data, s.maxPixels)
}

// SelectUpload декодирует загруженное изображение и делает его текущим
func (s *DetectionService) SelectUpload(ctx context.Context, userID, chatID int64, data []byte) (*entity.User, error) {
	img, err := s.DecodeUpload(data)
	if err != nil {
		return nil, err
	}

	return s.selectImage(ctx, userID, chatID, img, entity.ImageSourceUpload)
}

// SelectExample делает текущим встроенный пример. Если примера нет,
// текущее изображение сбрасывается и возвращается MissingResourceError.
func (s *DetectionService) SelectExample(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	img, err := s.LoadExample(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrMissingResource) {
			if _, resetErr := s.users.Reset(ctx, userID, chatID); resetErr != nil {
				return nil, resetErr
			}
		}
		return nil, err
	}

	return s.selectImage(ctx, userID, chatID, img, entity.ImageSourceExample)
}

// LoadExample загружает встроенный пример
func (s *DetectionService) LoadExample(ctx context.Context) (*entity.RasterImage, error) {
	if s.examples == nil {
		return nil, &entity.MissingResourceError{Path: "example"}
	}
	return s.examples.Load(ctx)
}

func (s *DetectionService) selectImage(ctx context.Context, userID, chatID int64, img *entity.RasterImage, source entity.ImageSource) (*entity.User, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SelectImage(img, source)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"user_id": userID,
		"source":  source,
		"width":   img.Width(),
		"height":  img.Height(),
	}).Info("Image selected")

	return user, nil
}

// Detect запускает детекцию по текущему изображению пользователя
func (s *DetectionService) Detect(ctx context.Context, userID, chatID int64) (*DetectionOutput, error) {
	user, err := s.users.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if !user.HasImage() {
		return nil, entity.ErrNoImageSelected
	}

	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}

	out, detectErr := s.DetectImage(ctx, user.Image, s.params)

	// Изображение остаётся текущим, детекцию можно повторить.
	// Состояние возвращается и после отмены ctx.
	if err := s.users.UpdateState(context.WithoutCancel(ctx), userID, entity.StateImageReady); err != nil && detectErr == nil {
		return nil, err
	}

	if detectErr != nil {
		return nil, detectErr
	}
	return out, nil
}

// DetectImage детекция без сессии
func (s *DetectionService) DetectImage(ctx context.Context, img *entity.RasterImage, params entity.DetectionParams) (*DetectionOutput, error) {
	result, err := s.detector.Detect(ctx, img, params)
	if err != nil {
		logger.WithError(err).Warn("Detection failed")
		return nil, fmt.Errorf("detect coins: %w", err)
	}

	logger.WithField("coins", result.Count).Info("Detection completed")

	return &DetectionOutput{
		Result:  result,
		Message: SummaryMessage(result),
		Success: result.HasCoins(),
	}, nil
}
