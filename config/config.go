package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"coin-detector/internal/domain/entity"
)

const (
	DefaultHTTPAddr         = ":8080"
	DefaultExampleImagePath = "assets/coins.png"
	DefaultLogLevel         = "info"
	DefaultMaxUploadBytes   = 10 << 20
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxImagePixels   = 6000 * 4000
)

type Config struct {
	TelegramToken    string
	HTTPAddr         string
	ExampleImagePath string
	LogLevel         string
	MaxUploadBytes   int64
	MaxImagePixels   int64
	RequestTimeout   time.Duration
	Detection        entity.DetectionParams
}

// DetectionFile формат YAML-файла с параметрами детекции.
// Отсутствующие поля берутся из значений по умолчанию.
type DetectionFile struct {
	BlurKernelSize       *int     `yaml:"blur_kernel_size"`
	AdaptiveBlockSize    *int     `yaml:"adaptive_block_size"`
	AdaptiveBias         *float64 `yaml:"adaptive_bias"`
	CircularityThreshold *float64 `yaml:"circularity_threshold"`
	MinArea              *float64 `yaml:"min_area"`
	OutlineColor         string   `yaml:"outline_color"` // hex, например "#00ff00"
	OutlineThickness     *int     `yaml:"outline_thickness"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:         envOr("HTTP_ADDR", DefaultHTTPAddr),
		ExampleImagePath: envOr("EXAMPLE_IMAGE_PATH", DefaultExampleImagePath),
		LogLevel:         envOr("LOG_LEVEL", DefaultLogLevel),
		MaxUploadBytes:   DefaultMaxUploadBytes,
		MaxImagePixels:   DefaultMaxImagePixels,
		RequestTimeout:   DefaultRequestTimeout,
		Detection:        entity.DefaultDetectionParams(),
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	if v := os.Getenv("MAX_IMAGE_PIXELS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_IMAGE_PIXELS must be a positive integer, got %q", v)
		}
		cfg.MaxImagePixels = n
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration, got %q", v)
		}
		cfg.RequestTimeout = d
	}

	if path := os.Getenv("DETECTION_CONFIG"); path != "" {
		params, err := LoadDetectionFile(path, cfg.Detection)
		if err != nil {
			return nil, err
		}
		cfg.Detection = params
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет, что включена хотя бы одна оболочка и параметры корректны
func (c *Config) Validate() error {
	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return errors.New("nothing to run: set TELEGRAM_TOKEN and/or HTTP_ADDR")
	}
	return c.Detection.Validate()
}

// LoadDetectionFile читает YAML-файл и накладывает его поля на base
func LoadDetectionFile(path string, base entity.DetectionParams) (entity.DetectionParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read detection config: %w", err)
	}

	var file DetectionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse detection config %s: %w", path, err)
	}

	params, err := file.Apply(base)
	if err != nil {
		return base, fmt.Errorf("detection config %s: %w", path, err)
	}
	return params, nil
}

// Apply накладывает заданные поля файла на base
func (f DetectionFile) Apply(base entity.DetectionParams) (entity.DetectionParams, error) {
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
	if f.OutlineThickness != nil {
		base.OutlineThickness = *f.OutlineThickness
	}
	if f.OutlineColor != "" {
		c, err := colorful.Hex(f.OutlineColor)
		if err != nil {
			return base, fmt.Errorf("%w: outline color %q: %v", entity.ErrInvalidParams, f.OutlineColor, err)
		}
		r, g, b := c.RGB255()
		base.OutlineColor.R, base.OutlineColor.G, base.OutlineColor.B, base.OutlineColor.A = r, g, b, 0xff
	}
	return base, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
