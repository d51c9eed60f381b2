package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/app/controllers"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/parser"
	"github.com/cn-address-parser/internal/search"
	"github.com/cn-address-parser/routes"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// 1. Load .env (nếu có) và configuration
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal("Cannot load config:", err)
	}

	// 2. Khởi tạo logger
	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting Chinese Address Parser Service",
		zap.String("env", cfg.App.Env),
		zap.String("cache_backend", cfg.Cache.Backend))

	// 3. Khởi tạo parser
	addressParser, err := initParser(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize parser", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Kết nối MongoDB khi cache hoặc export cần
	var mongoDB *mongo.Database
	if cfg.NeedsMongo() {
		mongoDB, err = initMongoDB(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()
	}

	// 5. Cache kết quả parse
	cacheService, err := initCache(ctx, cfg, mongoDB, addressParser.Dataset().Version, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheService != nil {
		defer cacheService.Close()
	}

	// 6. Meilisearch không bắt buộc
	var exporter services.DivisionExporter
	indexer, err := search.NewDivisionIndexer(search.IndexConfig{
		Host:      cfg.Meili.Host,
		APIKey:    cfg.Meili.APIKey,
		IndexName: cfg.Meili.Index,
	}, logger)
	if err != nil {
		logger.Warn("Meilisearch không khả dụng, tắt export", zap.Error(err))
	} else {
		exporter = indexer
	}

	// 7. Services và controllers
	addressService := services.NewAddressService(addressParser, cacheService, services.BatchConfig{
		MaxSync: cfg.Batch.MaxSync,
		MaxJob:  cfg.Batch.MaxJob,
		Workers: cfg.Batch.Workers,
		JobTTL:  cfg.Batch.JobTTL,
	}, logger)
	addressService.StartJobCleanupWorker(ctx, time.Minute)
	adminService := services.NewAdminService(addressParser, mongoDB, exporter, cacheService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Address:  controllers.NewAddressController(addressService, logger),
		Division: controllers.NewDivisionController(addressParser),
		Admin:    controllers.NewAdminController(adminService, addressService, logger),
	}, cfg.RequestTimeout())

	// 8. Khởi động server
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// initLogger khởi tạo structured logger
func initLogger(cfg *config.Config) *zap.Logger {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	logger, err := zc.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

// initParser build parser từ dataset embed hoặc file ngoài
func initParser(cfg *config.Config, logger *zap.Logger) (*parser.AddressParser, error) {
	policy, ok := parser.ParseNormalizePolicy(cfg.Parser.NormalizePolicy)
	if !ok {
		policy = parser.NormalizeStrict
	}
	opts := []parser.Option{parser.WithLogger(logger), parser.WithNormalizePolicy(policy)}

	if cfg.Dataset.Path == "" {
		return parser.New(opts...)
	}
	ds, err := gazetteer.LoadFile(cfg.Dataset.Path)
	if err != nil {
		return nil, err
	}
	return parser.NewFromDataset(ds, opts...)
}

// initMongoDB kết nối MongoDB và ping thử
func initMongoDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
	return client.Database(cfg.Mongo.Database), nil
}

// initCache chọn backend theo cache.backend. hybrid dùng Redis (hoặc bộ nhớ
// nếu không có Redis) làm L1 và MongoDB làm L2.
func initCache(ctx context.Context, cfg *config.Config, db *mongo.Database, datasetVersion string, logger *zap.Logger) (services.ICacheService, error) {
	switch cfg.Cache.Backend {
	case "none":
		return nil, nil
	case "memory":
		return newMemoryCache(ctx, cfg), nil
	case "redis":
		return services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)
	case "mongo":
		return newMongoCache(ctx, db, cfg, datasetVersion, logger)
	}

	l2, err := newMongoCache(ctx, db, cfg, datasetVersion, logger)
	if err != nil {
		return nil, err
	}
	var l1 services.ICacheService
	redisCache, err := services.NewRedisCacheService(cfg.Redis.URL, cfg.Cache.TTL, logger)
	if err != nil {
		logger.Warn("Redis không khả dụng, L1 dùng bộ nhớ", zap.Error(err))
		l1 = newMemoryCache(ctx, cfg)
	} else {
		l1 = redisCache
	}
	return services.NewHybridCacheService(l1, l2, logger), nil
}

func newMemoryCache(ctx context.Context, cfg *config.Config) *services.CacheService {
	cache := services.NewCacheService(cfg.Cache.TTL)
	cache.StartCleanupWorker(ctx, 5*time.Minute)
	return cache
}

func newMongoCache(ctx context.Context, db *mongo.Database, cfg *config.Config, datasetVersion string, logger *zap.Logger) (*services.MongoCacheService, error) {
	cache, err := services.NewMongoCacheService(db, cfg.Cache.L1Size, logger)
	if err != nil {
		return nil, err
	}
	if err := cache.WarmUp(ctx, datasetVersion, cfg.Cache.L1Size/2); err != nil {
		logger.Warn("Failed to warm up cache", zap.Error(err))
	}
	return cache, nil
}
