package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// ProductCatalogFactory builds the product catalog used by the lifecycle service
type ProductCatalogFactory struct {
	redisConfig    config.RedisConfig
	workflowConfig config.WorkflowConfig
	logger         *zap.Logger
}

// NewProductCatalogFactory creates a new factory
func NewProductCatalogFactory(redisCfg config.RedisConfig, workflowCfg config.WorkflowConfig, logger *zap.Logger) *ProductCatalogFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCatalogFactory{
		redisConfig:    redisCfg,
		workflowConfig: workflowCfg,
		logger:         logger,
	}
}

// Create returns source behind a Redis cache when caching is enabled and Redis
// answers, and source itself otherwise. The returned close func releases the
// Redis client and is never nil.
func (f *ProductCatalogFactory) Create(ctx context.Context, source credit.ProductCatalog) (credit.ProductCatalog, func() error) {
	noop := func() error { return nil }
	if !f.workflowConfig.ProductCacheEnabled {
		f.logger.Info("Loan product cache disabled")
		return source, noop
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		f.logger.Warn("Redis unavailable, serving loan products without cache",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return source, noop
	}

	f.logger.Info("Using Redis loan product cache",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Duration("ttl", f.workflowConfig.ProductCacheTTL),
	)
	return NewRedisProductCatalog(client, source, f.workflowConfig.ProductCacheTTL, WithLogger(f.logger)), client.Close
}
