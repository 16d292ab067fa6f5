package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultProductKeyPrefix = "credit:product:"

// RedisProductCatalog is a read-through Redis cache in front of a credit.ProductCatalog.
// Only found products are cached. Redis failures fall through to the source.
type RedisProductCatalog struct {
	client    *redis.Client
	source    credit.ProductCatalog
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// ProductCatalogOption configures a RedisProductCatalog
type ProductCatalogOption func(*RedisProductCatalog)

// WithKeyPrefix overrides the cache key prefix
func WithKeyPrefix(prefix string) ProductCatalogOption {
	return func(c *RedisProductCatalog) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithLogger sets the logger used for cache failures
func WithLogger(logger *zap.Logger) ProductCatalogOption {
	return func(c *RedisProductCatalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisProductCatalog wraps source with a Redis cache whose entries live for ttl
func NewRedisProductCatalog(client *redis.Client, source credit.ProductCatalog, ttl time.Duration, opts ...ProductCatalogOption) *RedisProductCatalog {
	c := &RedisProductCatalog{
		client:    client,
		source:    source,
		ttl:       ttl,
		keyPrefix: defaultProductKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisProductCatalog) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

// ProductByID returns the cached product or loads it from the source
func (c *RedisProductCatalog) ProductByID(ctx context.Context, id uuid.UUID) (*credit.LoanProduct, error) {
	key := c.key(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product credit.LoanProduct
		jsonErr := json.Unmarshal(raw, &product)
		if jsonErr == nil {
			return &product, nil
		}
		c.logger.Warn("Discarding undecodable cached product", zap.String("key", key), zap.Error(jsonErr))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := c.source.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(product)
	if err != nil {
		return nil, fmt.Errorf("encode loan product: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}

// Invalidate drops the cached entry of a product
func (c *RedisProductCatalog) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("invalidate cached product: %w", err)
	}
	return nil
}

var _ credit.ProductCatalog = (*RedisProductCatalog)(nil)
