package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/helpers/utils"
	"github.com/cn-address-parser/internal/metrics"
	"github.com/cn-address-parser/internal/normalizer"
	"github.com/cn-address-parser/internal/parser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrTooManyAddresses số địa chỉ vượt giới hạn cấu hình
	ErrTooManyAddresses = errors.New("quá nhiều địa chỉ")
	// ErrJobNotFound job không tồn tại
	ErrJobNotFound = errors.New("job không tồn tại")
	// ErrJobNotReady job chưa chạy xong
	ErrJobNotReady = errors.New("job chưa hoàn thành")
)

// Trạng thái job
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// BatchConfig giới hạn cho parse hàng loạt
type BatchConfig struct {
	MaxSync int // tối đa cho ParseBatch đồng bộ
	MaxJob  int // tối đa cho một job
	Workers int // số goroutine parse song song
	// JobTTL thời gian giữ job đã kết thúc kể từ lần cập nhật cuối, 0 giữ mãi
	JobTTL time.Duration
}

// AddressService service xử lý logic parse địa chỉ
type AddressService struct {
	parser    *parser.AddressParser
	cache     ICacheService // nil: không dùng cache
	batch     BatchConfig
	logger    *zap.Logger
	startTime time.Time
	mu        sync.RWMutex

	// Job management
	jobs       map[string]*JobStatus
	jobResults map[string][]models.ParsedAddress
}

// JobStatus trạng thái của job
type JobStatus struct {
	JobID              string
	Status             string
	Progress           float64
	Processed          int
	Total              int
	EstimatedRemaining int
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewAddressService tạo mới AddressService
func NewAddressService(p *parser.AddressParser, cache ICacheService, batch BatchConfig, logger *zap.Logger) *AddressService {
	if batch.Workers <= 0 {
		batch.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{
		parser:     p,
		cache:      cache,
		batch:      batch,
		logger:     logger,
		startTime:  time.Now(),
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string][]models.ParsedAddress),
	}
}

// DatasetVersion phiên bản dataset của parser
func (as *AddressService) DatasetVersion() string {
	return as.parser.Dataset().Version
}

// Parser trả về parser đang dùng
func (as *AddressService) Parser() *parser.AddressParser { return as.parser }

// Cache trả về cache đang dùng, có thể nil
func (as *AddressService) Cache() ICacheService { return as.cache }

// ParseAddress parse một địa chỉ. Lỗi cache chỉ được log, không làm hỏng
// kết quả; cacheHit cho biết kết quả lấy từ cache.
func (as *AddressService) ParseAddress(ctx context.Context, raw string, options requests.ParseOptions) (result models.ParsedAddress, cacheHit bool) {
	text := raw
	if options.CleanInput {
		text = normalizer.CleanInput(raw)
	}

	var key string
	if options.UseCache && as.cache != nil {
		key = CacheKey(as.DatasetVersion(), text)
		cached, found, err := as.cache.Get(ctx, key)
		if err != nil {
			as.logger.Warn("Lỗi đọc cache", zap.Error(err))
		}
		if found {
			metrics.CacheHitsTotal.Inc()
			return *cached, true
		}
		metrics.CacheMissesTotal.Inc()
	}

	start := time.Now()
	result = as.parser.Parse(text)
	metrics.ParseDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	metrics.ParseTotal.WithLabelValues(deepestLevel(result)).Inc()

	if key != "" {
		if err := as.cache.Set(ctx, key, &result); err != nil {
			as.logger.Warn("Lỗi ghi cache", zap.Error(err))
		}
	}
	return result, false
}

func deepestLevel(a models.ParsedAddress) string {
	switch {
	case a.HasDistrict():
		return "district"
	case a.HasCity():
		return "city"
	case a.HasProvince():
		return "province"
	default:
		return "none"
	}
}

// ParseBatch parse đồng bộ, kết quả cùng thứ tự với input
func (as *AddressService) ParseBatch(ctx context.Context, addresses []string, options requests.ParseOptions) ([]models.ParsedAddress, error) {
	if as.batch.MaxSync > 0 && len(addresses) > as.batch.MaxSync {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAddresses, len(addresses), as.batch.MaxSync)
	}
	results := make([]models.ParsedAddress, len(addresses))
	err := as.parseAll(ctx, addresses, options, results, nil)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// parseAll chạy ParseAddress trên pool giới hạn Workers goroutine, ghi kết
// quả theo index. onDone (nếu có) được gọi sau mỗi địa chỉ.
func (as *AddressService) parseAll(ctx context.Context, addresses []string, options requests.ParseOptions, results []models.ParsedAddress, onDone func()) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(as.batch.Workers)
	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], _ = as.ParseAddress(ctx, addr, options)
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	return g.Wait()
}

// Normalize chuẩn hoá theo policy; policy rỗng dùng mặc định của parser
func (as *AddressService) Normalize(province, city, district, policy string) (string, parser.NormalizePolicy, error) {
	p := as.parser
	selected := p.Policy()
	if policy != "" {
		parsed, ok := parser.ParseNormalizePolicy(policy)
		if !ok {
			return "", selected, fmt.Errorf("policy không hợp lệ: %q", policy)
		}
		if parsed != selected {
			p = p.WithPolicy(parsed)
			selected = parsed
		}
	}

	normalized, err := p.Normalize(province, city, district)
	if err != nil {
		metrics.NormalizeTotal.WithLabelValues("unresolved").Inc()
		return "", selected, err
	}
	metrics.NormalizeTotal.WithLabelValues("ok").Inc()
	return normalized, selected, nil
}

// Validate địa chỉ có đủ ba cấp không
func (as *AddressService) Validate(ctx context.Context, raw string, options requests.ParseOptions) (bool, models.ParsedAddress) {
	result, _ := as.ParseAddress(ctx, raw, options)
	return result.IsComplete(), result
}

// EstimateBatchProcessingTime ước tính thời gian xử lý (giây)
func (as *AddressService) EstimateBatchProcessingTime(addressCount int) int {
	// ~20µs mỗi địa chỉ trên một worker
	perSecond := 50000 * as.batch.Workers
	return addressCount/perSecond + 1
}

// SubmitBatchJob tạo job và chạy nền, trả về job id
func (as *AddressService) SubmitBatchJob(addresses []string, options requests.ParseOptions) (string, error) {
	if len(addresses) == 0 {
		return "", errors.New("danh sách địa chỉ trống")
	}
	if as.batch.MaxJob > 0 && len(addresses) > as.batch.MaxJob {
		return "", fmt.Errorf("%w: %d > %d", ErrTooManyAddresses, len(addresses), as.batch.MaxJob)
	}

	jobID := utils.GenerateUUID()
	now := time.Now()
	as.mu.Lock()
	as.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    JobStatusPending,
		Total:     len(addresses),
		Message:   "Đang chờ xử lý",
		CreatedAt: now,
		UpdatedAt: now,
	}
	as.mu.Unlock()

	go as.ProcessBatchJob(context.Background(), jobID, addresses, options)
	return jobID, nil
}

// ProcessBatchJob xử lý job batch và cập nhật tiến độ
func (as *AddressService) ProcessBatchJob(ctx context.Context, jobID string, addresses []string, options requests.ParseOptions) {
	start := time.Now()
	as.updateJob(jobID, func(job *JobStatus) {
		job.Status = JobStatusRunning
		job.Message = "Đang xử lý..."
	})

	var processed atomic.Int64
	total := len(addresses)
	results := make([]models.ParsedAddress, total)
	err := as.parseAll(ctx, addresses, options, results, func() {
		n := int(processed.Add(1))
		// cập nhật mỗi 100 địa chỉ và ở địa chỉ cuối
		if n%100 != 0 && n != total {
			return
		}
		as.updateJob(jobID, func(job *JobStatus) {
			job.Processed = n
			job.Progress = float64(n) / float64(total)
			elapsed := time.Since(start)
			job.EstimatedRemaining = int(elapsed.Seconds() / float64(n) * float64(total-n))
		})
	})

	status := JobStatusDone
	if err != nil {
		status = JobStatusFailed
	} else {
		as.mu.Lock()
		as.jobResults[jobID] = results
		as.mu.Unlock()
	}

	as.updateJob(jobID, func(job *JobStatus) {
		job.Status = status
		job.EstimatedRemaining = 0
		if err != nil {
			job.Message = err.Error()
			return
		}
		job.Processed = total
		job.Progress = 1
		job.Message = "Hoàn thành xử lý"
	})

	metrics.JobsTotal.WithLabelValues(status).Inc()
	metrics.JobDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	as.logger.Info("Batch job completed",
		zap.String("job_id", jobID),
		zap.String("status", status),
		zap.Int("total_addresses", total),
		zap.Duration("duration", time.Since(start)))
}

func (as *AddressService) updateJob(jobID string, fn func(job *JobStatus)) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if job, exists := as.jobs[jobID]; exists {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

// GetJobStatus lấy bản sao trạng thái job
func (as *AddressService) GetJobStatus(jobID string) (JobStatus, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	job, exists := as.jobs[jobID]
	if !exists {
		return JobStatus{}, ErrJobNotFound
	}
	return *job, nil
}

// GetJobResults lấy kết quả job
func (as *AddressService) GetJobResults(jobID string) ([]models.ParsedAddress, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if _, exists := as.jobs[jobID]; !exists {
		return nil, ErrJobNotFound
	}
	results, exists := as.jobResults[jobID]
	if !exists {
		return nil, ErrJobNotReady
	}
	return results, nil
}

// GetJobResultsStream lấy kết quả job dưới dạng channel để stream. Channel
// đóng khi hết kết quả hoặc ctx bị huỷ.
func (as *AddressService) GetJobResultsStream(ctx context.Context, jobID string) (<-chan models.ParsedAddress, error) {
	results, err := as.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	resultChannel := make(chan models.ParsedAddress, 100)
	go func() {
		defer close(resultChannel)
		for _, result := range results {
			select {
			case resultChannel <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return resultChannel, nil
}

// CleanupExpiredJobs xoá các job đã done/failed quá JobTTL cùng kết quả của
// chúng, trả về số job đã xoá. Job pending/running luôn được giữ.
func (as *AddressService) CleanupExpiredJobs() int {
	if as.batch.JobTTL <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-as.batch.JobTTL)

	as.mu.Lock()
	defer as.mu.Unlock()
	removed := 0
	for id, job := range as.jobs {
		if job.Status != JobStatusDone && job.Status != JobStatusFailed {
			continue
		}
		if job.UpdatedAt.Before(cutoff) {
			delete(as.jobs, id)
			delete(as.jobResults, id)
			removed++
		}
	}
	return removed
}

// StartJobCleanupWorker chạy CleanupExpiredJobs định kỳ tới khi ctx bị huỷ
func (as *AddressService) StartJobCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := as.CleanupExpiredJobs(); n > 0 {
					as.logger.Info("Đã xoá job hết hạn", zap.Int("jobs", n))
				}
			}
		}
	}()
}

// JobCount số job đang giữ trong bộ nhớ
func (as *AddressService) JobCount() int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return len(as.jobs)
}

// GetStartTime lấy thời gian khởi động service
func (as *AddressService) GetStartTime() time.Time {
	return as.startTime
}

// GetStats lấy thống kê service
func (as *AddressService) GetStats() map[string]interface{} {
	uptime := time.Since(as.startTime)
	return map[string]interface{}{
		"uptime_seconds":  int64(uptime.Seconds()),
		"start_time":      as.startTime.Format(time.RFC3339),
		"dataset_version": as.DatasetVersion(),
		"jobs":            as.JobCount(),
		"status":          "running",
	}
}
