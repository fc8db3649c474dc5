package app

import (
	"context"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) Save(ctx context.Context, user *entity.User) error {
	return s.repo.Save(ctx, user)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateState меняет только состояние уже известного пользователя
func (s *UserService) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	return s.repo.UpdateState(ctx, userID, state)
}

// Reset забывает текущее изображение и возвращает пользователя в главное меню
func (s *UserService) Reset(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.ClearImage()
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
