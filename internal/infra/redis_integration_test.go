//go:build integration

package infra

// Run with: go test -tags integration ./internal/infra/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestPDFCache_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cache := NewPDFCache(rdb, 2*time.Second)
	id := uuid.New()
	pdf := []byte("%PDF-1.3 challan")

	_, ok := cache.Get(ctx, id)
	assert.False(t, ok, "empty cache")

	require.NoError(t, cache.Set(ctx, id, pdf))
	got, ok := cache.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, pdf, got)

	ttl, err := rdb.TTL(ctx, pdfCachePrefix+id.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 2*time.Second)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, id)
		return !ok
	}, 5*time.Second, 200*time.Millisecond, "entry outlived its TTL")

	// Delete invalidates, and deleting a missing key is not an error
	require.NoError(t, cache.Set(ctx, id, pdf))
	require.NoError(t, cache.Delete(ctx, id))
	_, ok = cache.Get(ctx, id)
	assert.False(t, ok)
	assert.NoError(t, cache.Delete(ctx, id))
}
