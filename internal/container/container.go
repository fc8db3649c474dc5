package container

import (
	app "coin-detector/internal/application"
	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
)

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService
}

func New(userRepo port.UserRepository, detector port.BlobDetector, examples port.ExampleSource, params entity.DetectionParams, maxPixels int64) *Container {
	userService := app.NewUserService(userRepo)
	detectionService := app.NewDetectionService(userService, detector, examples, params, maxPixels)

	return &Container{
		UserService:      userService,
		DetectionService: detectionService,
	}
}
