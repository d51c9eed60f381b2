// Package search đẩy danh mục đơn vị hành chính sang Meilisearch để các hệ
// thống khác tra cứu theo tên, alias hoặc phiên âm.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// ErrTaskFailed task Meilisearch kết thúc với trạng thái failed
var ErrTaskFailed = errors.New("meilisearch task failed")

const defaultBatchSize = 1000

// IndexConfig cấu hình cho Meilisearch
type IndexConfig struct {
	Host         string
	APIKey       string
	IndexName    string
	BatchSize    int
	PollInterval time.Duration
	Timeout      time.Duration
}

// DivisionIndexer ghi divisions vào một index Meilisearch
type DivisionIndexer struct {
	client meilisearch.ServiceManager
	config IndexConfig
	logger *zap.Logger
}

// DivisionDoc document lưu trong index, primary key là division_id
type DivisionDoc struct {
	DivisionID     string   `json:"division_id"`
	ParentID       string   `json:"parent_id,omitempty"`
	Level          int      `json:"level"`
	Name           string   `json:"name"`
	NameASCII      string   `json:"name_ascii"`
	Kind           string   `json:"kind"`
	Aliases        []string `json:"aliases,omitempty"`
	Path           []string `json:"path"`
	FullPath       string   `json:"full_path"`
	DatasetVersion string   `json:"dataset_version"`
}

// ExportResult kết quả một lần export
type ExportResult struct {
	IndexName string  `json:"index_name"`
	Documents int     `json:"documents"`
	Batches   int     `json:"batches"`
	TaskUIDs  []int64 `json:"task_uids"`
}

// NewDivisionIndexer tạo indexer và kiểm tra kết nối
func NewDivisionIndexer(config IndexConfig, logger *zap.Logger) (*DivisionIndexer, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}
	return NewDivisionIndexerWithClient(client, config, logger), nil
}

// NewDivisionIndexerWithClient dùng client có sẵn
func NewDivisionIndexerWithClient(client meilisearch.ServiceManager, config IndexConfig, logger *zap.Logger) *DivisionIndexer {
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 500 * time.Millisecond
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DivisionIndexer{client: client, config: config, logger: logger}
}

// IndexSettings cấu hình index: tìm theo tên, alias, phiên âm; lọc theo
// cấp, cha, loại và phiên bản dataset
func IndexSettings() *meilisearch.Settings {
	return &meilisearch.Settings{
		SearchableAttributes: []string{"name", "aliases", "name_ascii", "full_path"},
		FilterableAttributes: []string{"level", "parent_id", "kind", "dataset_version"},
		SortableAttributes:   []string{"level", "division_id"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
	}
}

// ToDocuments chuyển divisions sang documents
func ToDocuments(divisions []models.Division) []DivisionDoc {
	docs := make([]DivisionDoc, len(divisions))
	for i, d := range divisions {
		doc := DivisionDoc{
			DivisionID:     d.DivisionID,
			Level:          d.Level,
			Name:           d.Name,
			NameASCII:      d.NameASCII,
			Kind:           d.Kind,
			Aliases:        d.Aliases,
			Path:           d.Path,
			FullPath:       d.GetFullPath(),
			DatasetVersion: d.DatasetVersion,
		}
		if d.ParentID != nil {
			doc.ParentID = *d.ParentID
		}
		docs[i] = doc
	}
	return docs
}

// Batches chia documents thành các lô tối đa size phần tử
func Batches(docs []DivisionDoc, size int) [][]DivisionDoc {
	if size <= 0 {
		size = defaultBatchSize
	}
	var out [][]DivisionDoc
	for i := 0; i < len(docs); i += size {
		end := i + size
		if end > len(docs) {
			end = len(docs)
		}
		out = append(out, docs[i:end])
	}
	return out
}

// Export thay toàn bộ nội dung index bằng divisions, chờ từng task xong
func (di *DivisionIndexer) Export(divisions []models.Division) (*ExportResult, error) {
	index := di.client.Index(di.config.IndexName)

	task, err := index.UpdateSettings(IndexSettings())
	if err != nil {
		return nil, fmt.Errorf("lỗi cấu hình index: %w", err)
	}
	if err := di.waitTask(task.TaskUID); err != nil {
		return nil, err
	}

	task, err = index.DeleteAllDocuments()
	if err != nil {
		return nil, fmt.Errorf("lỗi xoá documents cũ: %w", err)
	}
	if err := di.waitTask(task.TaskUID); err != nil {
		return nil, err
	}

	result := &ExportResult{IndexName: di.config.IndexName}
	docs := ToDocuments(divisions)
	for _, batch := range Batches(docs, di.config.BatchSize) {
		task, err := index.AddDocuments(batch, "division_id")
		if err != nil {
			return nil, fmt.Errorf("lỗi thêm documents batch %d: %w", result.Batches, err)
		}
		if err := di.waitTask(task.TaskUID); err != nil {
			return nil, err
		}
		result.Batches++
		result.Documents += len(batch)
		result.TaskUIDs = append(result.TaskUIDs, task.TaskUID)

		di.logger.Debug("Đã thêm batch divisions",
			zap.Int("size", len(batch)),
			zap.Int64("task_uid", task.TaskUID))
	}

	di.logger.Info("Đã export divisions sang Meilisearch",
		zap.String("index", di.config.IndexName),
		zap.Int("documents", result.Documents))
	return result, nil
}

// waitTask poll trạng thái task cho tới khi xong hoặc hết timeout
func (di *DivisionIndexer) waitTask(taskUID int64) error {
	deadline := time.Now().Add(di.config.Timeout)
	for {
		info, err := di.client.GetTask(taskUID)
		if err != nil {
			return fmt.Errorf("lỗi check task %d: %w", taskUID, err)
		}
		switch info.Status {
		case meilisearch.TaskStatusSucceeded:
			return nil
		case meilisearch.TaskStatusFailed, meilisearch.TaskStatusCanceled:
			return fmt.Errorf("%w: task %d: %v", ErrTaskFailed, taskUID, info.Error)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("task %d chưa xong sau %s", taskUID, di.config.Timeout)
		}
		time.Sleep(di.config.PollInterval)
	}
}
