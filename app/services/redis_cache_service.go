package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisPrefix = "cn_addr:"

// RedisCacheService cache service sử dụng Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service từ URL và ping thử
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient dùng client có sẵn, không ping
func NewRedisCacheServiceWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: defaultRedisPrefix,
		ttl:    ttl,
	}
}

// Get lấy kết quả từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.ParsedAddress, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.ParsedAddress
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Error("Lỗi unmarshal cache data", zap.Error(err))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set lưu kết quả vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.ParsedAddress) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// deleteByPattern SCAN theo pattern rồi DEL từng lô, tránh KEYS chặn server
func (rcs *RedisCacheService) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	deleted := 0
	iter := rcs.client.Scan(ctx, 0, pattern, 500).Iterator()
	batch := make([]string, 0, 500)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
				return deleted, fmt.Errorf("lỗi xóa keys: %w", err)
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("lỗi scan keys: %w", err)
	}
	if len(batch) > 0 {
		if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
			return deleted, fmt.Errorf("lỗi xóa keys: %w", err)
		}
		deleted += len(batch)
	}
	return deleted, nil
}

// Clear xóa toàn bộ cache
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted, err := rcs.deleteByPattern(ctx, rcs.prefix+"*")
	if err != nil {
		return err
	}
	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

// InvalidateByDatasetVersion xóa cache theo phiên bản dataset (version nằm trong key)
func (rcs *RedisCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	deleted, err := rcs.deleteByPattern(ctx, rcs.prefix+datasetVersion+":*")
	if err != nil {
		return err
	}
	rcs.logger.Info("Đã invalidate Redis cache",
		zap.String("dataset_version", datasetVersion),
		zap.Int("keys_deleted", deleted))
	return nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	totalItems := int64(0)
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		totalItems++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Không thể đếm keys Redis", zap.Error(err))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.prefix+key).Result()
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
