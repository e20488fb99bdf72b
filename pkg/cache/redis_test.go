package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRedisCache struct {
	mock.Mock
	data map[string]interface{}
}

func NewMockRedisCache() *MockRedisCache {
	return &MockRedisCache{
		data: make(map[string]interface{}),
	}
}

func (m *MockRedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockRedisCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	if args.Error(0) == nil {
		m.data[key] = value
	}
	return args.Error(0)
}

func (m *MockRedisCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	if args.Error(0) == nil {
		delete(m.data, key)
	}
	return args.Error(0)
}

func TestRedisCache_SetWithTTL(t *testing.T) {
	mockCache := NewMockRedisCache()
	ctx := context.Background()
	key := "test:key"

	mockCache.On("SetWithTTL", ctx, key, "value", time.Minute).Return(nil)

	err := mockCache.SetWithTTL(ctx, key, "value", time.Minute)
	assert.NoError(t, err)
	assert.Contains(t, mockCache.data, key)

	mockCache.AssertExpectations(t)
}

func TestRedisCache_Delete(t *testing.T) {
	mockCache := NewMockRedisCache()
	ctx := context.Background()
	key := "test:key"

	mockCache.data[key] = "value"

	mockCache.On("Delete", ctx, key).Return(nil)

	err := mockCache.Delete(ctx, key)
	assert.NoError(t, err)
	assert.NotContains(t, mockCache.data, key)

	mockCache.AssertExpectations(t)
}

func TestChatStoppedCacheKey(t *testing.T) {
	key := ChatStoppedCacheKey(123456)
	assert.Equal(t, "chat:stopped:123456", key)
}
