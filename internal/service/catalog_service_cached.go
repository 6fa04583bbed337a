package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sakashimaa/webshop/internal/domain"
	"github.com/sakashimaa/webshop/pkg/mylogger"
	"github.com/sakashimaa/webshop/pkg/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CachedCatalogService serves product lookups from Redis and evicts on every
// mutation. Redis failures fall through to the wrapped service.
type CachedCatalogService struct {
	next        CatalogService
	redisClient *redis.Client
	breaker     *gobreaker.CircuitBreaker
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCachedCatalogService(next CatalogService, redisClient *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CachedCatalogService {
	return &CachedCatalogService{
		next:        next,
		redisClient: redisClient,
		breaker:     utils.NewBreaker("catalog-cache", logger),
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *CachedCatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.next.List(ctx)
}

func (s *CachedCatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)

	val, err := utils.ExecuteWithBreaker(s.breaker, func() ([]byte, error) {
		b, err := s.redisClient.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		mylogger.Warn(ctx, s.logger, "Catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	if val != nil {
		var product domain.Product
		if err := json.Unmarshal(val, &product); err == nil {
			return &product, nil
		}
		mylogger.Warn(ctx, s.logger, "Corrupted catalog cache entry", zap.String("key", key))
	}

	product, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		_, err = utils.ExecuteWithBreaker(s.breaker, func() (string, error) {
			return s.redisClient.Set(ctx, key, data, s.cacheTTL).Result()
		})
		if err != nil {
			mylogger.Warn(ctx, s.logger, "Catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return product, nil
}

func (s *CachedCatalogService) Create(ctx context.Context, actor domain.Actor, in domain.ProductInput) (*domain.Product, error) {
	return s.next.Create(ctx, actor, in)
}

func (s *CachedCatalogService) Update(ctx context.Context, actor domain.Actor, id int64, in domain.ProductInput) (*domain.Product, error) {
	product, err := s.next.Update(ctx, actor, id, in)
	if err != nil {
		return nil, err
	}

	s.evictQuietly(ctx, id)
	return product, nil
}

func (s *CachedCatalogService) Hide(ctx context.Context, actor domain.Actor, id int64) (*domain.Product, error) {
	product, err := s.next.Hide(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	s.evictQuietly(ctx, id)
	return product, nil
}

// Evict drops the cached copy of a product. It is also called for product
// events published by other instances.
func (s *CachedCatalogService) Evict(ctx context.Context, id int64) error {
	if err := s.redisClient.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("evict product %d: %w", id, err)
	}
	return nil
}

func (s *CachedCatalogService) evictQuietly(ctx context.Context, id int64) {
	if err := s.Evict(ctx, id); err != nil {
		mylogger.Warn(ctx, s.logger, "Catalog cache eviction failed", zap.Int64("product_id", id), zap.Error(err))
	}
}
