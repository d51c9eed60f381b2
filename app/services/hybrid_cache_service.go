package services

import (
	"context"
	"errors"
	"time"

	"github.com/cn-address-parser/app/models"
	"go.uber.org/zap"
)

// HybridCacheService cache hai tầng: L1 nhanh (Redis) + L2 bền (MongoDB).
// Nhận interface nên tầng nào cũng thay được.
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// both chạy song song trên hai tầng và gộp lỗi
func both(fn1, fn2 func() error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- fn1() }()
	go func() { errCh <- fn2() }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get lấy từ L1 trước, L2 sau; hit ở L2 được đồng bộ lên L1
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ParsedAddress, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi L1 cache, fallback L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go func(r models.ParsedAddress) {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.l1.Set(bgCtx, key, &r); err != nil {
			hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
		}
	}(*result)

	return result, true, nil
}

// Set lưu vào cả hai tầng song song
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.ParsedAddress) error {
	return both(
		func() error { return hcs.l1.Set(ctx, key, result) },
		func() error { return hcs.l2.Set(ctx, key, result) },
	)
}

// Delete xóa key khỏi cả hai tầng
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return both(
		func() error { return hcs.l1.Delete(ctx, key) },
		func() error { return hcs.l2.Delete(ctx, key) },
	)
}

// Clear xóa toàn bộ cả hai tầng
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	err := both(
		func() error { return hcs.l1.Clear(ctx) },
		func() error { return hcs.l2.Clear(ctx) },
	)
	if err == nil {
		hcs.logger.Info("Đã clear hybrid cache")
	}
	return err
}

// InvalidateByDatasetVersion xóa cache của một phiên bản dataset ở cả hai tầng
func (hcs *HybridCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	return both(
		func() error { return hcs.l1.InvalidateByDatasetVersion(ctx, datasetVersion) },
		func() error { return hcs.l2.InvalidateByDatasetVersion(ctx, datasetVersion) },
	)
}

// GetStats kết hợp thống kê hai tầng; một tầng lỗi thì dùng tầng còn lại
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	s1, err1 := hcs.l1.GetStats(ctx)
	s2, err2 := hcs.l2.GetStats(ctx)

	switch {
	case err1 != nil && err2 != nil:
		return nil, errors.Join(err1, err2)
	case err1 != nil:
		return s2, nil
	case err2 != nil:
		return s1, nil
	}

	combined := &CacheStats{
		TotalHits:  s1.TotalHits + s2.TotalHits,
		TotalMiss:  s2.TotalMiss,
		TotalItems: s2.TotalItems,
	}
	if total := combined.TotalHits + combined.TotalMiss; total > 0 {
		combined.HitRate = float64(combined.TotalHits) / float64(total)
	}
	return combined, nil
}

// Exists kiểm tra L1 trước, L2 sau
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check L1 exists, fallback L2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL TTL theo L1
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

// Close đóng cả hai tầng
func (hcs *HybridCacheService) Close() error {
	return both(hcs.l1.Close, hcs.l2.Close)
}
