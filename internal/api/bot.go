package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"coin-detector/internal/container"
	"coin-detector/internal/domain/entity"
	"coin-detector/internal/infrastructure/imageio"
	"coin-detector/internal/logger"
)

const (
	msgStart = `👋 Привет! Я считаю монеты на фотографиях.

📸 Отправьте фото монет на однотонном фоне или возьмите пример командой /example, затем запустите /detect.

📋 Команды:
/example — взять встроенный пример
/detect — найти монеты на текущем изображении
/help — справка
/cancel — сбросить текущее изображение`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото (или файл-изображение) либо команду /example
2️⃣ Отправьте /detect
3️⃣ Вы получите фото с обведёнными монетами и их количество

💡 Рекомендации:
• Снимайте при хорошем освещении
• Используйте однотонный светлый фон
• Монеты не должны касаться друг друга

📋 Команды:
/example — встроенный пример
/detect — запустить поиск
/cancel — сбросить изображение`

	msgImageSelected   = "🖼 Изображение выбрано (%d×%d). Отправьте /detect, чтобы найти монеты."
	msgExampleSelected = "🖼 Выбран встроенный пример (%d×%d). Отправьте /detect, чтобы найти монеты."
	msgExampleMissing  = "⚠️ Встроенный пример не найден. Загрузите своё фото."
	msgNoImage         = "📸 Сначала отправьте фото или выберите пример командой /example."
	msgCancelled       = "❌ Изображение сброшено. Отправьте новое фото или /example."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото монет или команду /example."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Ищу монеты..."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Попробуйте другое фото."
	msgUnsupportedFile = "⚠️ Этот файл не похож на изображение. Поддерживаются JPEG, PNG, GIF, BMP и WebP."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте ещё раз."
)

// downloadTimeout ограничение на скачивание файла из Telegram
const downloadTimeout = 30 * time.Second

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	app        *container.Container
	httpClient *http.Client
	maxBytes   int64
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container, maxBytes int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.WithField("account", api.Self.UserName).Info("Telegram bot authorized")

	return &Bot{
		api:        api,
		app:        app,
		httpClient: &http.Client{Timeout: downloadTimeout},
		maxBytes:   maxBytes,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				logger.Warn("Telegram updates channel closed")
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		logger.Debug("Skipping message without sender")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, photo.FileID)
		return
	}

	// Изображение, отправленное файлом
	if msg.Document != nil {
		if !isImageDocument(msg.Document) {
			b.sendMessage(msg.Chat.ID, msgUnsupportedFile)
			return
		}
		b.handleImage(ctx, msg, msg.Document.FileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.app.UserService.Reset(ctx, userID, chatID); err != nil {
			logger.WithError(err).Error("Failed to reset user")
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "example":
		b.handleExample(ctx, userID, chatID)

	case "detect":
		b.handleDetect(ctx, userID, chatID)

	case "cancel":
		if _, err := b.app.UserService.Reset(ctx, userID, chatID); err != nil {
			logger.WithError(err).Error("Failed to reset user")
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleExample выбирает встроенный пример
func (b *Bot) handleExample(ctx context.Context, userID, chatID int64) {
	user, err := b.app.DetectionService.SelectExample(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, entity.ErrMissingResource) {
			logger.WithError(err).Warn("Example image is missing")
			b.sendMessage(chatID, msgExampleMissing)
			return
		}
		logger.WithError(err).Error("Failed to load example image")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(msgExampleSelected, user.Image.Width(), user.Image.Height()))
}

// handleImage скачивает изображение и делает его текущим
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		logger.WithError(err).Error("Error downloading image")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	user, err := b.app.DetectionService.SelectUpload(ctx, msg.From.ID, chatID, imageData)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidImage) {
			logger.WithError(err).Warn("Uploaded image rejected")
			b.sendMessage(chatID, msgInvalidImage)
			return
		}
		logger.WithError(err).Error("Failed to store uploaded image")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf(msgImageSelected, user.Image.Width(), user.Image.Height()))
}

// handleDetect запускает детекцию и отправляет размеченное фото
func (b *Bot) handleDetect(ctx context.Context, userID, chatID int64) {
	b.sendMessage(chatID, msgProcessing)

	out, err := b.app.DetectionService.Detect(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, entity.ErrNoImageSelected) {
			b.sendMessage(chatID, msgNoImage)
			return
		}
		logger.WithError(err).Error("Detection failed")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	data, err := imageio.EncodeJPEG(out.Result.Annotated, imageio.DefaultJPEGQuality)
	if err != nil {
		logger.WithError(err).Error("Failed to encode annotated image")
		b.sendMessage(chatID, out.Message)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "coins.jpg", Bytes: data})
	photo.Caption = out.Message
	if _, err := b.api.Send(photo); err != nil {
		logger.WithError(err).Error("Error sending photo")
		b.sendMessage(chatID, out.Message)
		return
	}

	logger.WithFields(logrus.Fields{
		"user_id": userID,
		"coins":   out.Result.Count,
	}).Info("Detection result sent")
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if b.maxBytes > 0 && int64(file.FileSize) > b.maxBytes {
		return nil, fmt.Errorf("file too large: %d bytes", file.FileSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if b.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, b.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if b.maxBytes > 0 && int64(len(data)) > b.maxBytes {
		return nil, fmt.Errorf("file too large: more than %d bytes", b.maxBytes)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.WithError(err).Error("Error sending message")
	}
}

// isImageDocument true для документов с MIME-типом изображения
func isImageDocument(doc *tgbotapi.Document) bool {
	if strings.HasPrefix(doc.MimeType, "image/") {
		return true
	}
	name := strings.ToLower(doc.FileName)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
