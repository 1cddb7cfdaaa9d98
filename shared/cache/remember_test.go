package cache_test

import (
	"context"
	"errors"
	"testing"

	"pms/shared/cache"
	"pms/shared/cache/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRemember_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Get(gomock.Any(), "room:get:101", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			*value.(*int) = 4

			return nil
		})

	got, err := cache.Remember(context.Background(), redisCache, "room:get:101", 60, func(context.Context) (int, error) {
		t.Fatal("load must not run on a hit")

		return 0, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestRemember_MissStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	saved := make(chan any, 1)

	redisCache.EXPECT().Get(gomock.Any(), "room:count", gomock.Any()).Return(cache.Nil)
	redisCache.EXPECT().Save(gomock.Any(), "room:count", 12, 60).
		DoAndReturn(func(_ context.Context, _ string, value any, _ int) error {
			saved <- value

			return nil
		})

	got, err := cache.Remember(context.Background(), redisCache, "room:count", 60, func(context.Context) (int, error) {
		return 12, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 12, got)
	assert.Equal(t, 12, <-saved)
}

func TestRemember_LoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	boom := errors.New("db down")

	redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)

	_, err := cache.Remember(context.Background(), redisCache, "room:count", 60, func(context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
}
