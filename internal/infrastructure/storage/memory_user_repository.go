package storage

import (
	"context"
	"sync"

	"coin-detector/internal/domain/entity"
	"coin-detector/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользовательских сессий.
// Сессии живут до перезапуска процесса, результаты детекции не сохраняются.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]*entity.User),
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()

	if exists {
		cp := *user
		return &cp, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Сессию мог создать параллельный запрос
	if user, exists = r.users[userID]; !exists {
		user = entity.NewUser(userID, chatID)
		r.users[userID] = user
	}

	cp := *user
	return &cp, nil
}

// Save сохраняет сессию пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp := *user

	r.mu.Lock()
	r.users[user.ID] = &cp
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
	}

	return nil
}

// Len количество сессий
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
