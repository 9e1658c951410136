//go:build integration

package cache

import (
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/testhelpers"
)

func TestRedisShortLinkCacheContainer(t *testing.T) {
	redisURL := testhelpers.SetupRedisURL(t)

	t.Run("round trip with prefix and ttl", func(t *testing.T) {
		assertRedisCacheRoundTrip(t, redisURL)
	})
	t.Run("corrupt value is an error", func(t *testing.T) {
		assertCorruptValueIsError(t, redisURL)
	})
}
