package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cn-address-parser/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService interface định nghĩa các method cần thiết cho cache kết quả parse
type ICacheService interface {
	// Get lấy kết quả từ cache
	Get(ctx context.Context, key string) (*models.ParsedAddress, bool, error)

	// Set lưu kết quả vào cache
	Set(ctx context.Context, key string, result *models.ParsedAddress) error

	// Delete xóa kết quả khỏi cache
	Delete(ctx context.Context, key string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// InvalidateByDatasetVersion xóa các key build từ phiên bản dataset đã cho
	InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists kiểm tra key có tồn tại không
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL lấy TTL còn lại của key
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}

// Fingerprint sha256 hex của địa chỉ đã làm sạch
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// CacheKey key dạng "<dataset_version>:<fingerprint>": đổi dataset thì key đổi theo
func CacheKey(datasetVersion, text string) string {
	return datasetVersion + ":" + Fingerprint(text)
}

// splitCacheKey tách version và fingerprint từ CacheKey
func splitCacheKey(key string) (version, fingerprint string) {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
