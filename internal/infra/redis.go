package infra

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

const pdfCachePrefix = "challan:pdf:"

// PDFCache keeps rendered challan PDFs in Redis so repeated downloads skip
// the bytea round trip. All operations are best effort for callers: a miss
// and a Redis error look the same to Get.
type PDFCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPDFCache(rdb *redis.Client, ttl time.Duration) *PDFCache {
	return &PDFCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached bytes and true on a hit.
func (c *PDFCache) Get(ctx context.Context, id uuid.UUID) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, pdfCachePrefix+id.String()).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *PDFCache) Set(ctx context.Context, id uuid.UUID, pdf []byte) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, pdfCachePrefix+id.String(), pdf, c.ttl).Err()
}

func (c *PDFCache) Delete(ctx context.Context, id uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.Del(ctx, pdfCachePrefix+id.String()).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
