package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"coin-detector/config"
	telegram "coin-detector/internal/api"
	"coin-detector/internal/container"
	"coin-detector/internal/infrastructure/examples"
	"coin-detector/internal/infrastructure/storage"
	"coin-detector/internal/infrastructure/vision"
	"coin-detector/internal/logger"
	"coin-detector/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	exampleSource := examples.NewFileSource(cfg.ExampleImagePath)

	// Собираем сервисы приложения
	appContainer := container.New(
		userRepo,
		vision.NewDetector(),
		exampleSource,
		cfg.Detection,
		cfg.MaxImagePixels,
	)

	logger.WithFields(logrus.Fields{
		"backend":  vision.Backend,
		"telegram": cfg.TelegramToken != "",
		"http":     cfg.HTTPAddr,
		"example":  exampleSource.Path(),
		"max_px":   cfg.MaxImagePixels,
	}).Info("Coin detector starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		// Создаём бота
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, cfg.MaxUploadBytes)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create bot")
		}

		g.Go(func() error {
			logger.Info("Bot is running...")
			return bot.Run(gctx)
		})
	}

	if cfg.HTTPAddr != "" {
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           transport.NewHandler(appContainer.DetectionService, transport.Options{MaxUploadBytes: cfg.MaxUploadBytes, RequestTimeout: cfg.RequestTimeout}),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.RequestTimeout,
			WriteTimeout:      cfg.RequestTimeout,
		}

		g.Go(func() error {
			logger.WithField("address", cfg.HTTPAddr).Info("Starting HTTP server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down HTTP server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Coin detector stopped with error")
	}

	logger.Info("Coin detector exited")
}
