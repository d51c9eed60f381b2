package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/search"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	exportTarget string
	exportDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export danh mục hành chính sang MongoDB hoặc Meilisearch",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportTarget, "target", "t", "mongo", "mongo | meili")
	exportCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "chỉ build documents, không ghi")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, p, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result *services.ExportResult
	switch exportTarget {
	case "mongo":
		var db *mongo.Database
		if !exportDryRun {
			client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx, nil); err != nil {
				return fmt.Errorf("ping MongoDB: %w", err)
			}
			db = client.Database(cfg.Mongo.Database)
		}
		result, err = services.NewAdminService(p, db, nil, nil, logger).ExportToMongo(ctx, exportDryRun)
	case "meili":
		var exporter services.DivisionExporter
		if !exportDryRun {
			indexer, err := search.NewDivisionIndexer(search.IndexConfig{
				Host:      cfg.Meili.Host,
				APIKey:    cfg.Meili.APIKey,
				IndexName: cfg.Meili.Index,
			}, logger)
			if err != nil {
				return err
			}
			exporter = indexer
		}
		result, err = services.NewAdminService(p, nil, exporter, nil, logger).ExportToMeili(exportDryRun)
	default:
		return fmt.Errorf("target không hợp lệ: %q", exportTarget)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
