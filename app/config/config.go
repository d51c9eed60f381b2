package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Port           string        `mapstructure:"port"`
	Env            string        `mapstructure:"env"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatasetCfg struct {
	// Path rỗng thì dùng dataset embed trong binary
	Path string `mapstructure:"path"`
}

type ParserCfg struct {
	NormalizePolicy string `mapstructure:"normalize_policy"` // strict | verbatim
}

type CacheCfg struct {
	Backend string        `mapstructure:"backend"` // none | memory | redis | mongo | hybrid
	TTL     time.Duration `mapstructure:"ttl"`
	L1Size  int           `mapstructure:"l1_size"`
}

type RedisCfg struct {
	URL string `mapstructure:"url"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Export   bool   `mapstructure:"export"` // bật /admin/export/mongo khi cache không dùng MongoDB
}

type MeiliCfg struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
	Index  string `mapstructure:"index"`
}

type BatchCfg struct {
	MaxSync int           `mapstructure:"max_sync"` // số địa chỉ tối đa cho /batch đồng bộ
	MaxJob  int           `mapstructure:"max_job"`
	Workers int           `mapstructure:"workers"`
	JobTTL  time.Duration `mapstructure:"job_ttl"` // giữ job đã xong bao lâu
}

type Config struct {
	App     AppCfg     `mapstructure:"app"`
	Dataset DatasetCfg `mapstructure:"dataset"`
	Parser  ParserCfg  `mapstructure:"parser"`
	Cache   CacheCfg   `mapstructure:"cache"`
	Redis   RedisCfg   `mapstructure:"redis"`
	Mongo   MongoCfg   `mapstructure:"mongo"`
	Meili   MeiliCfg   `mapstructure:"meilisearch"`
	Batch   BatchCfg   `mapstructure:"batch"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.request_timeout", "1500ms")
	v.SetDefault("dataset.path", "")
	v.SetDefault("parser.normalize_policy", "strict")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "cn_address")
	v.SetDefault("mongo.export", false)
	v.SetDefault("meilisearch.host", "http://localhost:7700")
	v.SetDefault("meilisearch.api_key", "")
	v.SetDefault("meilisearch.index", "divisions")
	v.SetDefault("batch.max_sync", 1000)
	v.SetDefault("batch.max_job", 20000)
	v.SetDefault("batch.workers", 8)
	v.SetDefault("batch.job_ttl", "1h")
}

// Load đọc config từ file YAML (nếu có) và biến môi trường, vd.
// CACHE_BACKEND=redis ghi đè cache.backend. path rỗng thì tìm
// config/app.yaml hoặc ./app.yaml; không có file thì dùng mặc định.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate kiểm tra các giá trị enum và giới hạn
func (c *Config) Validate() error {
	switch c.Parser.NormalizePolicy {
	case "strict", "verbatim":
	default:
		return fmt.Errorf("parser.normalize_policy không hợp lệ: %q", c.Parser.NormalizePolicy)
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis", "mongo", "hybrid":
	default:
		return fmt.Errorf("cache.backend không hợp lệ: %q", c.Cache.Backend)
	}
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers phải > 0")
	}
	if c.Batch.MaxSync <= 0 || c.Batch.MaxJob <= 0 {
		return errors.New("batch.max_sync và batch.max_job phải > 0")
	}
	return nil
}

// NeedsMongo cache hoặc export có dùng MongoDB
func (c *Config) NeedsMongo() bool {
	return c.Cache.Backend == "mongo" || c.Cache.Backend == "hybrid" || c.Mongo.Export
}

// IsProduction môi trường production
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// RequestTimeout thời gian tối đa cho một request đồng bộ
func (c *Config) RequestTimeout() time.Duration {
	if c.App.RequestTimeout <= 0 {
		return 1500 * time.Millisecond
	}
	return c.App.RequestTimeout
}
