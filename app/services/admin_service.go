package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/normalizer"
	"github.com/cn-address-parser/internal/parser"
	"github.com/cn-address-parser/internal/search"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotConfigured backend export chưa được cấu hình
var ErrNotConfigured = errors.New("backend chưa được cấu hình")

const divisionsCollection = "divisions"

// DivisionExporter đích export divisions (Meilisearch)
type DivisionExporter interface {
	Export(divisions []models.Division) (*search.ExportResult, error)
}

// AdminService service quản lý admin functions
type AdminService struct {
	parser   *parser.AddressParser
	db       *mongo.Database  // nil: không export sang MongoDB
	exporter DivisionExporter // nil: không export sang Meilisearch
	cache    ICacheService
	logger   *zap.Logger
}

// ExportResult kết quả export
type ExportResult struct {
	Target           string `json:"target"`
	DatasetVersion   string `json:"dataset_version"`
	Documents        int    `json:"documents"`
	DryRun           bool   `json:"dry_run"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Parser        parser.Stats           `json:"parser"`
	Cache         *CacheStats            `json:"cache,omitempty"`
	Uptime        string                 `json:"uptime"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	DatabaseStats *DatabaseStats         `json:"database_stats,omitempty"`
}

// DatabaseStats thống kê database
type DatabaseStats struct {
	Divisions    int64 `json:"divisions"`
	AddressCache int64 `json:"address_cache"`
}

// NewAdminService tạo mới AdminService. db, exporter và cache đều có thể nil.
func NewAdminService(p *parser.AddressParser, db *mongo.Database, exporter DivisionExporter, cache ICacheService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		parser:   p,
		db:       db,
		exporter: exporter,
		cache:    cache,
		logger:   logger,
	}
}

// BuildDivisions chuyển dataset thành danh sách documents theo thứ tự tỉnh,
// thành phố, quận huyện
func BuildDivisions(ds *gazetteer.Dataset, createdAt time.Time) []models.Division {
	counts := ds.Counts()
	out := make([]models.Division, 0, counts.Provinces+counts.Cities+counts.Districts)

	for _, p := range ds.Provinces {
		out = append(out, models.Division{
			DivisionID:     models.DivisionID(gazetteer.LevelProvince, p.ID),
			Level:          int(gazetteer.LevelProvince),
			Name:           p.Name,
			NameASCII:      normalizer.Romanize(p.Name),
			Kind:           string(p.Kind),
			Aliases:        p.Aliases,
			Path:           []string{},
			DatasetVersion: ds.Version,
			CreatedAt:      createdAt,
		})
	}
	for _, c := range ds.Cities {
		parentID := models.DivisionID(gazetteer.LevelProvince, c.ProvinceID)
		out = append(out, models.Division{
			DivisionID:     models.DivisionID(gazetteer.LevelCity, c.ID),
			ParentID:       &parentID,
			Level:          int(gazetteer.LevelCity),
			Name:           c.Name,
			NameASCII:      normalizer.Romanize(c.Name),
			Kind:           string(c.Kind),
			Aliases:        c.Aliases,
			Path:           []string{ds.Provinces[c.ProvinceID].Name},
			DatasetVersion: ds.Version,
			CreatedAt:      createdAt,
		})
	}
	for _, d := range ds.Districts {
		city := ds.Cities[d.CityID]
		parentID := models.DivisionID(gazetteer.LevelCity, d.CityID)
		out = append(out, models.Division{
			DivisionID:     models.DivisionID(gazetteer.LevelDistrict, d.ID),
			ParentID:       &parentID,
			Level:          int(gazetteer.LevelDistrict),
			Name:           d.Name,
			NameASCII:      normalizer.Romanize(d.Name),
			Kind:           string(d.Kind),
			Aliases:        d.Aliases,
			Path:           []string{ds.Provinces[city.ProvinceID].Name, city.Name},
			DatasetVersion: ds.Version,
			CreatedAt:      createdAt,
		})
	}
	return out
}

// ExportToMongo thay các division cùng phiên bản dataset trong MongoDB. Dry run
// không cần kết nối.
func (as *AdminService) ExportToMongo(ctx context.Context, dryRun bool) (*ExportResult, error) {
	start := time.Now()
	ds := as.parser.Dataset()
	divisions := BuildDivisions(ds, start)
	result := &ExportResult{Target: "mongo", DatasetVersion: ds.Version, Documents: len(divisions), DryRun: dryRun}
	if dryRun {
		return result, nil
	}
	if as.db == nil {
		return nil, fmt.Errorf("mongo: %w", ErrNotConfigured)
	}

	collection := as.db.Collection(divisionsCollection)

	// Clear existing data với cùng dataset version
	deleteResult, err := collection.DeleteMany(ctx, bson.M{"dataset_version": ds.Version})
	if err != nil {
		return nil, fmt.Errorf("lỗi xóa dữ liệu cũ: %w", err)
	}
	as.logger.Info("Deleted old divisions",
		zap.String("dataset_version", ds.Version),
		zap.Int64("deleted_count", deleteResult.DeletedCount))

	documents := make([]interface{}, len(divisions))
	for i := range divisions {
		documents[i] = divisions[i]
	}
	if _, err := collection.InsertMany(ctx, documents); err != nil {
		return nil, fmt.Errorf("lỗi insert divisions: %w", err)
	}

	_, err = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dataset_version", Value: 1}, {Key: "division_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "level", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo index divisions: %w", err)
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	as.logger.Info("Đã export divisions sang MongoDB",
		zap.String("dataset_version", ds.Version),
		zap.Int("documents", result.Documents),
		zap.Int64("processing_time_ms", result.ProcessingTimeMs))
	return result, nil
}

// ExportToMeili đẩy divisions sang index Meilisearch
func (as *AdminService) ExportToMeili(dryRun bool) (*ExportResult, error) {
	start := time.Now()
	ds := as.parser.Dataset()
	divisions := BuildDivisions(ds, start)
	result := &ExportResult{Target: "meilisearch", DatasetVersion: ds.Version, Documents: len(divisions), DryRun: dryRun}
	if dryRun {
		return result, nil
	}
	if as.exporter == nil {
		return nil, fmt.Errorf("meilisearch: %w", ErrNotConfigured)
	}

	exported, err := as.exporter.Export(divisions)
	if err != nil {
		return nil, fmt.Errorf("lỗi export Meilisearch: %w", err)
	}
	result.Documents = exported.Documents
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// ClearCache xoá toàn bộ cache kết quả parse
func (as *AdminService) ClearCache(ctx context.Context) error {
	if as.cache == nil {
		return fmt.Errorf("cache: %w", ErrNotConfigured)
	}
	if err := as.cache.Clear(ctx); err != nil {
		return fmt.Errorf("lỗi xoá cache: %w", err)
	}
	as.logger.Info("Đã xoá cache kết quả parse")
	return nil
}

// InvalidateCache xoá cache của một phiên bản dataset
func (as *AdminService) InvalidateCache(ctx context.Context, datasetVersion string) error {
	if as.cache == nil {
		return fmt.Errorf("cache: %w", ErrNotConfigured)
	}
	if err := as.cache.InvalidateByDatasetVersion(ctx, datasetVersion); err != nil {
		return fmt.Errorf("lỗi invalidate cache: %w", err)
	}
	as.logger.Info("Đã invalidate cache", zap.String("dataset_version", datasetVersion))
	return nil
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context, startTime time.Time) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		Parser: as.parser.Stats(),
		Uptime: time.Since(startTime).Round(time.Second).String(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
	}

	if as.cache != nil {
		cacheStats, err := as.cache.GetStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("lỗi lấy cache stats: %w", err)
		}
		stats.Cache = cacheStats
	}

	if as.db != nil {
		dbStats, err := as.getDatabaseStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("lỗi lấy database stats: %w", err)
		}
		stats.DatabaseStats = dbStats
	}
	return stats, nil
}

// getDatabaseStats lấy thống kê database
func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	count, err := as.db.Collection(divisionsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.Divisions = count

	count, err = as.db.Collection(addressCacheCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.AddressCache = count

	return stats, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
