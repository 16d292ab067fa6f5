package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/agrm/backend/internal/domain/credit"
	"github.com/agrm/backend/internal/domain/shared"
	"github.com/agrm/backend/internal/infrastructure/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]*credit.LoanProduct
	calls    int
}

func (c *countingCatalog) ProductByID(_ context.Context, id uuid.UUID) (*credit.LoanProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (c *countingCatalog) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func pmeProduct() *credit.LoanProduct {
	return &credit.LoanProduct{
		ID:            uuid.New(),
		Code:          "PME",
		Name:          "Credit PME",
		MinAmount:     decimal.NewFromInt(100000),
		MaxAmount:     decimal.RequireFromString("5000000.50"),
		MinTermMonths: 6,
		MaxTermMonths: 36,
		IsActive:      true,
	}
}

func TestRedisProductCatalog_ReadThrough(t *testing.T) {
	mr, client := setupRedis(t)
	product := pmeProduct()
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{product.ID: product}}
	cat := NewRedisProductCatalog(client, source, 10*time.Minute)
	ctx := context.Background()

	first, err := cat.ProductByID(ctx, product.ID)
	require.NoError(t, err)
	second, err := cat.ProductByID(ctx, product.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, source.Calls())
	assert.Equal(t, "PME", second.Code)
	assert.True(t, first.MaxAmount.Equal(second.MaxAmount))
	assert.Equal(t, 36, second.MaxTermMonths)

	key := defaultProductKeyPrefix + product.ID.String()
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	mr.FastForward(11 * time.Minute)
	_, err = cat.ProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls())
}

func TestRedisProductCatalog_MissIsNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{}}
	cat := NewRedisProductCatalog(client, source, time.Minute, WithKeyPrefix("test:product:"))

	id := uuid.New()
	_, err := cat.ProductByID(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.False(t, mr.Exists("test:product:"+id.String()))
}

func TestRedisProductCatalog_Invalidate(t *testing.T) {
	_, client := setupRedis(t)
	product := pmeProduct()
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{product.ID: product}}
	cat := NewRedisProductCatalog(client, source, time.Minute)
	ctx := context.Background()

	_, err := cat.ProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.NoError(t, cat.Invalidate(ctx, product.ID))
	_, err = cat.ProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls())
}

func TestRedisProductCatalog_RedisDown(t *testing.T) {
	mr, client := setupRedis(t)
	product := pmeProduct()
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{product.ID: product}}
	core, logs := observer.New(zap.WarnLevel)
	cat := NewRedisProductCatalog(client, source, time.Minute, WithLogger(zap.New(core)))

	mr.Close()

	got, err := cat.ProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, 1, logs.FilterMessage("Product cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Product cache write failed").Len())
}

func TestRedisProductCatalog_CorruptEntry(t *testing.T) {
	mr, client := setupRedis(t)
	product := pmeProduct()
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{product.ID: product}}
	cat := NewRedisProductCatalog(client, source, time.Minute)

	require.NoError(t, mr.Set(defaultProductKeyPrefix+product.ID.String(), "{not json"))
	got, err := cat.ProductByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "PME", got.Code)
	assert.Equal(t, 1, source.Calls())
}

func TestProductCatalogFactory(t *testing.T) {
	source := &countingCatalog{products: map[uuid.UUID]*credit.LoanProduct{}}
	ctx := context.Background()

	t.Run("disabled returns source", func(t *testing.T) {
		f := NewProductCatalogFactory(config.RedisConfig{}, config.WorkflowConfig{ProductCacheEnabled: false}, nil)
		cat, closeFn := f.Create(ctx, source)
		assert.Same(t, source, cat)
		assert.NoError(t, closeFn())
	})

	t.Run("enabled with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		f := NewProductCatalogFactory(
			config.RedisConfig{Host: mr.Host(), Port: port},
			config.WorkflowConfig{ProductCacheEnabled: true, ProductCacheTTL: time.Minute},
			zap.NewNop(),
		)
		cat, closeFn := f.Create(ctx, source)
		defer closeFn()
		_, ok := cat.(*RedisProductCatalog)
		assert.True(t, ok)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		mr.Close()

		core, logs := observer.New(zap.WarnLevel)
		f := NewProductCatalogFactory(
			config.RedisConfig{Host: "127.0.0.1", Port: port},
			config.WorkflowConfig{ProductCacheEnabled: true, ProductCacheTTL: time.Minute},
			zap.New(core),
		)
		cat, closeFn := f.Create(ctx, source)
		assert.Same(t, source, cat)
		assert.NoError(t, closeFn())
		assert.Equal(t, 1, logs.Len())
	})
}
