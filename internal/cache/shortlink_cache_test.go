package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopShortLinkCache(t *testing.T) {
	ctx := context.Background()
	c := NopShortLinkCache{}

	require.NoError(t, c.Set(ctx, "abc", 7))
	id, found, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, id)
	assert.NoError(t, c.Delete(ctx, "abc"))
}

func TestNewRedisShortLinkCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisShortLinkCache("not a url", time.Minute)
	assert.Error(t, err)
}

// Runs against a real server when REDIS_URL is set, e.g. redis://localhost:6379/15.
// The integration build starts its own container instead.
func TestRedisShortLinkCache(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	assertRedisCacheRoundTrip(t, redisURL)
}

func assertRedisCacheRoundTrip(t *testing.T, redisURL string) {
	t.Helper()
	c, err := NewRedisShortLinkCache(redisURL, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	code := uuid.NewString()[:8]

	_, found, err := c.Get(ctx, code)
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, code, 42))
	id, found, err := c.Get(ctx, code)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(42), id)

	stored, err := c.client.Get(ctx, "foodgram:shortlink:"+code).Result()
	require.NoError(t, err)
	assert.Equal(t, "42", stored)
	exists, err := c.client.Exists(ctx, code).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "keys are stored under the prefix only")

	ttl, err := c.client.TTL(ctx, c.key(code)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, c.Delete(ctx, code))
	_, found, err = c.Get(ctx, code)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisShortLinkCacheRejectsCorruptValue(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	assertCorruptValueIsError(t, redisURL)
}

func assertCorruptValueIsError(t *testing.T, redisURL string) {
	t.Helper()
	c, err := NewRedisShortLinkCache(redisURL, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	code := uuid.NewString()[:8]
	require.NoError(t, c.client.Set(ctx, c.key(code), "not-a-number", time.Minute).Err())

	_, found, err := c.Get(ctx, code)
	assert.Error(t, err)
	assert.False(t, found)
}
