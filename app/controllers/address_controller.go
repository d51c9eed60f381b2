package controllers

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/parser"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController controller xử lý các request liên quan đến địa chỉ
type AddressController struct {
	addressService *services.AddressService
	logger         *zap.Logger
}

// NewAddressController tạo mới AddressController
func NewAddressController(addressService *services.AddressService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		logger:         logger,
	}
}

// ParseAddress parse địa chỉ đơn lẻ
func (ac *AddressController) ParseAddress(c *gin.Context) {
	var req requests.ParseAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	startTime := time.Now()
	result, cacheHit := ac.addressService.ParseAddress(c.Request.Context(), req.Address, req.Options)

	c.JSON(http.StatusOK, responses.ParseAddressResponse{
		DatasetVersion:   ac.addressService.DatasetVersion(),
		Result:           result,
		FullAddress:      result.FullAddress(),
		Complete:         result.IsComplete(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         cacheHit,
	})
}

// ParseBatch parse đồng bộ nhiều địa chỉ
func (ac *AddressController) ParseBatch(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	startTime := time.Now()
	results, err := ac.addressService.ParseBatch(c.Request.Context(), req.Addresses, req.Options)
	switch {
	case errors.Is(err, services.ErrTooManyAddresses):
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeTooManyAddresses, err.Error())
		return
	case err != nil:
		abortWithError(c, http.StatusServiceUnavailable, responses.ErrCodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.BatchParseResponse{
		DatasetVersion:   ac.addressService.DatasetVersion(),
		Results:          results,
		Total:            len(results),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// CreateBatchJob tạo job parse hàng loạt chạy nền
func (ac *AddressController) CreateBatchJob(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	jobID, err := ac.addressService.SubmitBatchJob(req.Addresses, req.Options)
	if err != nil {
		code := responses.ErrCodeInvalidRequest
		if errors.Is(err, services.ErrTooManyAddresses) {
			code = responses.ErrCodeTooManyAddresses
		}
		abortWithError(c, http.StatusBadRequest, code, err.Error())
		return
	}

	c.JSON(http.StatusAccepted, responses.BatchJobResponse{
		JobID:            jobID,
		EstimatedSeconds: ac.addressService.EstimateBatchProcessingTime(len(req.Addresses)),
		TotalAddresses:   len(req.Addresses),
		Message:          "Job đã được tạo và đang xử lý",
	})
}

// GetJobStatus lấy trạng thái job
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	status, err := ac.addressService.GetJobStatus(jobID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, responses.ErrCodeJobNotFound, "Không tìm thấy job: "+jobID)
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              jobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults lấy kết quả job, hỗ trợ ?format=ndjson&gzip=1
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	if c.Query("format") == "ndjson" {
		ac.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := ac.addressService.GetJobResults(jobID)
	if err != nil {
		ac.jobError(c, jobID, err)
		return
	}

	c.JSON(http.StatusOK, responses.JobResultsResponse{
		JobID:   jobID,
		Total:   len(results),
		Results: results,
	})
}

func (ac *AddressController) jobError(c *gin.Context, jobID string, err error) {
	if errors.Is(err, services.ErrJobNotReady) {
		abortWithError(c, http.StatusConflict, responses.ErrCodeJobNotReady, "Job chưa hoàn thành: "+jobID)
		return
	}
	abortWithError(c, http.StatusNotFound, responses.ErrCodeJobNotFound, "Không tìm thấy job: "+jobID)
}

// streamNDJSONResults stream kết quả theo format NDJSON với hỗ trợ gzip
func (ac *AddressController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := ac.addressService.GetJobResultsStream(c.Request.Context(), jobID)
	if err != nil {
		ac.jobError(c, jobID, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	var gzWriter *gzip.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter = gzip.NewWriter(c.Writer)
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}
	c.Status(http.StatusOK)

	written := 0
	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			break
		}
		written++
		writer.Flush()
	}

	// Status 200 đã gửi nên chỉ có thể cắt stream: bỏ trailer gzip để client
	// nhận lỗi giải nén thay vì một body ngắn hợp lệ
	if err := c.Request.Context().Err(); err != nil {
		ac.logger.Warn("Stream NDJSON bị ngắt",
			zap.String("job_id", jobID),
			zap.Int("written", written),
			zap.Error(err))
		c.Abort()
		return
	}
	if gzWriter != nil {
		if err := gzWriter.Close(); err != nil {
			ac.logger.Error("Lỗi đóng gzip stream", zap.Error(err))
		}
	}
}

// gzipResponseWriter wrapper cho gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}

// Normalize chuẩn hoá bộ ba tỉnh / thành phố / quận
func (ac *AddressController) Normalize(c *gin.Context) {
	var req requests.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	normalized, policy, err := ac.addressService.Normalize(req.Province, req.City, req.District, req.Policy)
	if err != nil {
		var resErr *parser.ResolutionError
		if errors.As(err, &resErr) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
				Error:   responses.ErrCodeUnresolved,
				Message: err.Error(),
				Details: gin.H{
					"level":  resErr.Level.String(),
					"input":  resErr.Input,
					"parent": resErr.Parent,
				},
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.NormalizeResponse{
		Normalized: normalized,
		Policy:     policy.String(),
	})
}

// Validate kiểm tra địa chỉ có đủ tỉnh, thành phố và quận huyện
func (ac *AddressController) Validate(c *gin.Context) {
	var req requests.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	valid, result := ac.addressService.Validate(c.Request.Context(), req.Address, req.Options)
	c.JSON(http.StatusOK, responses.ValidateResponse{Valid: valid, Result: result})
}

// HealthCheck kiểm tra sức khỏe service
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.addressService.GetStartTime())

	deps := map[string]string{"address_parser": "healthy"}
	if ac.addressService.Cache() != nil {
		deps["cache"] = "enabled"
	}
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.Round(time.Second).String(),
		Version:   ac.addressService.DatasetVersion(),
		Services:  deps,
	})
}
