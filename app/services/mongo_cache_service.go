package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cn-address-parser/app/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const addressCacheCollection = "address_cache"

// MongoCacheService persistent cache service sử dụng MongoDB + LRU in-memory
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, models.ParsedAddress]
	logger     *zap.Logger

	l1Hits    atomic.Int64
	l1Miss    atomic.Int64
	mongoHits atomic.Int64
	mongoMiss atomic.Int64
}

// NewMongoCacheService tạo mới MongoCacheService và đảm bảo indexes
func NewMongoCacheService(db *mongo.Database, l1Size int, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, models.ParsedAddress](l1Size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	collection := db.Collection(addressCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dataset_version", Value: 1}, {Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "access_count", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho address_cache", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
	}, nil
}

func keyFilter(key string) bson.M {
	version, fingerprint := splitCacheKey(key)
	return bson.M{"dataset_version": version, "raw_fingerprint": fingerprint}
}

// Get lấy kết quả từ cache (L1 → MongoDB)
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ParsedAddress, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		return &result, true, nil
	}
	mcs.l1Miss.Add(1)

	var entry models.AddressCache
	err := mcs.collection.FindOne(ctx, keyFilter(key)).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			mcs.mongoMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lỗi query MongoDB cache: %w", err)
	}
	mcs.mongoHits.Add(1)

	go mcs.updateAccessStats(entry.ID)

	mcs.l1Cache.Add(key, entry.ParsedResult)
	mcs.logger.Debug("MongoDB cache hit", zap.String("key", key))
	return &entry.ParsedResult, true, nil
}

// Set lưu kết quả vào cache (L1 + MongoDB)
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ParsedAddress) error {
	mcs.l1Cache.Add(key, *result)

	version, fingerprint := splitCacheKey(key)
	entry := models.NewAddressCache(fingerprint, *result, version)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, keyFilter(key), entry, opts); err != nil {
		mcs.logger.Error("Lỗi lưu vào MongoDB cache", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("lỗi lưu vào MongoDB cache: %w", err)
	}
	return nil
}

// Delete xóa kết quả khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, keyFilter(key)); err != nil {
		return fmt.Errorf("lỗi xóa khỏi MongoDB cache: %w", err)
	}
	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("lỗi clear MongoDB cache: %w", err)
	}
	return nil
}

// InvalidateByDatasetVersion xóa các record build từ phiên bản dataset đã cho
func (mcs *MongoCacheService) InvalidateByDatasetVersion(ctx context.Context, datasetVersion string) error {
	mcs.l1Cache.Purge()

	result, err := mcs.collection.DeleteMany(ctx, bson.M{"dataset_version": datasetVersion})
	if err != nil {
		return fmt.Errorf("lỗi invalidate cache theo dataset version: %w", err)
	}

	mcs.logger.Info("Đã invalidate cache",
		zap.String("dataset_version", datasetVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm documents trong MongoDB cache: %w", err)
	}

	hits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	miss := mcs.mongoMiss.Load()
	hitRate := float64(0)
	if total := hits + miss; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  miss,
		TotalItems: mongoCount,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, keyFilter(key), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("lỗi check exists trong MongoDB: %w", err)
	}
	return count > 0, nil
}

// GetTTL MongoDB persistent cache không có TTL, luôn trả về 0
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close connection MongoDB do caller quản lý
func (mcs *MongoCacheService) Close() error {
	return nil
}

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("Lỗi update access stats", zap.Error(err))
	}
}

// GetL1Stats lấy thống kê L1 cache
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"l1_miss":    mcs.l1Miss.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"mongo_miss": mcs.mongoMiss.Load(),
	}
}

// WarmUp nạp các record được truy cập nhiều nhất của một dataset version vào L1
func (mcs *MongoCacheService) WarmUp(ctx context.Context, datasetVersion string, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{"dataset_version": datasetVersion}, opts)
	if err != nil {
		return fmt.Errorf("lỗi warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.AddressCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Lỗi decode cache entry trong warm up", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.DatasetVersion+":"+entry.RawFingerprint, entry.ParsedResult)
		count++
	}

	mcs.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return cursor.Err()
}
