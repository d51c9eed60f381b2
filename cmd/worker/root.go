package main

import (
	"fmt"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/parser"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "cnaddr-worker",
	Short:        "Parse địa chỉ Trung Quốc hàng loạt",
	Long:         "Parse file địa chỉ (mỗi dòng một địa chỉ) ra NDJSON, chuẩn hoá bộ ba tỉnh/thành phố/quận và export danh mục hành chính.",
	SilenceUsage: true,
}

// Execute chạy root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "file config YAML (mặc định config/app.yaml)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadRuntime đọc config, tạo logger và parser dùng chung cho các command
func loadRuntime() (*config.Config, *zap.Logger, *parser.AddressParser, error) {
	_ = godotenv.Load()
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	// stdout dành cho kết quả
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	policy, ok := parser.ParseNormalizePolicy(cfg.Parser.NormalizePolicy)
	if !ok {
		policy = parser.NormalizeStrict
	}
	opts := []parser.Option{parser.WithLogger(logger), parser.WithNormalizePolicy(policy)}

	var p *parser.AddressParser
	if cfg.Dataset.Path == "" {
		p, err = parser.New(opts...)
	} else {
		var ds *gazetteer.Dataset
		ds, err = gazetteer.LoadFile(cfg.Dataset.Path)
		if err == nil {
			p, err = parser.NewFromDataset(ds, opts...)
		}
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init parser: %w", err)
	}
	return cfg, logger, p, nil
}
