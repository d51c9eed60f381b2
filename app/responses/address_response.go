package responses

import (
	"github.com/cn-address-parser/app/models"
)

// ParseAddressResponse response parse địa chỉ đơn lẻ
type ParseAddressResponse struct {
	DatasetVersion   string               `json:"dataset_version"`    // Phiên bản dataset
	Result           models.ParsedAddress `json:"result"`             // Kết quả parse
	FullAddress      string               `json:"full_address"`       // Tỉnh + thành phố + quận
	Complete         bool                 `json:"complete"`           // Đủ ba cấp
	ProcessingTimeMs int64                `json:"processing_time_ms"` // Thời gian xử lý (ms)
	CacheHit         bool                 `json:"cache_hit"`          // Có hit cache không
}

// BatchParseResponse response parse hàng loạt đồng bộ
type BatchParseResponse struct {
	DatasetVersion   string                 `json:"dataset_version"`
	Results          []models.ParsedAddress `json:"results"` // Cùng thứ tự với input
	Total            int                    `json:"total"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
}

// BatchJobResponse response tạo job parse hàng loạt
type BatchJobResponse struct {
	JobID            string `json:"job_id"`            // ID của job
	EstimatedSeconds int    `json:"estimated_seconds"` // Thời gian ước tính (giây)
	TotalAddresses   int    `json:"total_addresses"`   // Tổng số địa chỉ
	Message          string `json:"message"`           // Thông báo
}

// JobStatusResponse response trạng thái job
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`              // ID của job
	Status             string  `json:"status"`              // Trạng thái job
	Progress           float64 `json:"progress"`            // Tiến độ (0.0 - 1.0)
	Processed          int     `json:"processed"`           // Số địa chỉ đã xử lý
	Total              int     `json:"total"`               // Tổng số địa chỉ
	EstimatedRemaining int     `json:"estimated_remaining"` // Thời gian còn lại ước tính (giây)
	Message            string  `json:"message"`             // Thông báo
}

// JobResultsResponse response kết quả job dạng JSON
type JobResultsResponse struct {
	JobID   string                 `json:"job_id"`
	Total   int                    `json:"total"`
	Results []models.ParsedAddress `json:"results"`
}

// NormalizeResponse response chuẩn hoá
type NormalizeResponse struct {
	Normalized string `json:"normalized"`
	Policy     string `json:"policy"`
}

// ValidateResponse response kiểm tra địa chỉ
type ValidateResponse struct {
	Valid  bool                 `json:"valid"`
	Result models.ParsedAddress `json:"result"`
}

// DivisionListResponse response danh sách tên đơn vị hành chính
type DivisionListResponse struct {
	Parent string   `json:"parent,omitempty"`
	Names  []string `json:"names"`
	Total  int      `json:"total"`
}

// ExportResponse response export divisions
type ExportResponse struct {
	Target           string `json:"target"` // mongo | meilisearch
	DatasetVersion   string `json:"dataset_version"`
	Documents        int    `json:"documents"`
	DryRun           bool   `json:"dry_run"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Message          string `json:"message"`
}

// AdminStatsResponse response thống kê admin
type AdminStatsResponse struct {
	DatasetVersion string         `json:"dataset_version"`
	Provinces      int            `json:"provinces"`
	Cities         int            `json:"cities"`
	Districts      int            `json:"districts"`
	IndexedNames   int            `json:"indexed_names"`
	TrieNodes      int            `json:"trie_nodes"`
	Cache          *CacheStatsDTO `json:"cache,omitempty"`
	Jobs           int            `json:"jobs"`
	UptimeSeconds  int64          `json:"uptime_seconds"`
	LastUpdated    string         `json:"last_updated"`
}

// CacheStatsDTO thống kê cache
type CacheStatsDTO struct {
	TotalItems int64   `json:"total_items"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	HitRate    float64 `json:"hit_rate"`
}

// Mã lỗi trả về cho client
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeUnresolved       = "UNRESOLVED"
	ErrCodeTooManyAddresses = "TOO_MANY_ADDRESSES"
	ErrCodeJobNotFound      = "JOB_NOT_FOUND"
	ErrCodeJobNotReady      = "JOB_NOT_READY"
	ErrCodeNotConfigured    = "NOT_CONFIGURED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`             // Mã lỗi
	Message   string      `json:"message"`           // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"` // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`         // Thời gian xảy ra lỗi
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
