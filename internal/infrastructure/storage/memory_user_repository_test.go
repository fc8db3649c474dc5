package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"coin-detector/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, int64(10), user.ChatID)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.False(t, user.HasImage())
	require.Equal(t, 1, repo.Len())
}

func TestMemoryUserRepository_SaveKeepsImage(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	img, err := entity.NewRasterImage(1, 1, []uint8{1, 2, 3})
	require.NoError(t, err)

	user, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	user.SelectImage(img, entity.ImageSourceUpload)

	// Без Save изменения не видны
	fresh, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.False(t, fresh.HasImage())

	require.NoError(t, repo.Save(ctx, user))

	fresh, err = repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateImageReady, fresh.State)
	require.Equal(t, entity.ImageSourceUpload, fresh.ImageSource)
	require.True(t, img.Equal(fresh.Image))
}

func TestMemoryUserRepository_UpdateState(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateState(ctx, 3, entity.StateProcessing))

	user, err := repo.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)

	// Неизвестный пользователь игнорируется
	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
	require.Equal(t, 1, repo.Len())
}

func TestMemoryUserRepository_Concurrent(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			user, err := repo.Get(ctx, id%5, id)
			require.NoError(t, err)
			user.SetState(entity.StateImageReady)
			require.NoError(t, repo.Save(ctx, user))
		}(int64(i))
	}
	wg.Wait()

	require.Equal(t, 5, repo.Len())
}

func TestMemoryUserRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Get(ctx, 1, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Save(ctx, entity.NewUser(1, 1)), context.Canceled)
}
