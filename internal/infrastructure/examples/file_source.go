package examples

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
	"coin-detector/internal/infrastructure/imageio"
	"coin-detector/internal/logger"
)

// FileSource загружает встроенный пример изображения с диска.
// После первой успешной загрузки изображение кешируется; RasterImage
// неизменяем, поэтому кешированный экземпляр можно отдавать всем.
type FileSource struct {
	path string

	mu     sync.RWMutex
	cached *entity.RasterImage
}

// NewFileSource создаёт источник для файла path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path путь к файлу примера.
func (s *FileSource) Path() string {
	return s.path
}

// Load возвращает пример. Отсутствующий файл даёт MissingResourceError,
// файл, который не декодируется, даёт InvalidImageError.
func (s *FileSource) Load(ctx context.Context) (*entity.RasterImage, error) {
	s.mu.RLock()
	img := s.cached
	s.mu.RUnlock()
	if img != nil {
		return img, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &entity.MissingResourceError{Path: s.path, Cause: err}
		}
		return nil, fmt.Errorf("read example %s: %w", s.path, err)
	}

	img, err = imageio.Decode(data, 0)
	if err != nil {
		return nil, fmt.Errorf("example %s: %w", s.path, err)
	}

	s.mu.Lock()
	if s.cached == nil {
		s.cached = img
	}
	img = s.cached
	s.mu.Unlock()

	logger.WithField("path", s.path).Info("Example image loaded")
	return img, nil
}

// Проверка реализации интерфейса
var _ port.ExampleSource = (*FileSource)(nil)
