package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	adminService   *services.AdminService
	addressService *services.AddressService
	logger         *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, addressService *services.AddressService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService:   adminService,
		addressService: addressService,
		logger:         logger,
	}
}

func (ac *AdminController) serviceError(c *gin.Context, action string, err error) {
	if errors.Is(err, services.ErrNotConfigured) {
		abortWithError(c, http.StatusServiceUnavailable, responses.ErrCodeNotConfigured, err.Error())
		return
	}
	ac.logger.Error("Lỗi "+action, zap.Error(err))
	abortWithError(c, http.StatusInternalServerError, responses.ErrCodeInternal, "Lỗi "+action+": "+err.Error())
}

// ClearCache xoá toàn bộ cache kết quả parse
func (ac *AdminController) ClearCache(c *gin.Context) {
	startTime := time.Now()
	if err := ac.adminService.ClearCache(c.Request.Context()); err != nil {
		ac.serviceError(c, "clear cache", err)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Clear cache thành công",
		Data: map[string]interface{}{
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// InvalidateCache invalidate cache theo dataset version
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	version := c.Query("dataset_version")
	if version == "" {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Thiếu dataset_version")
		return
	}

	if err := ac.adminService.InvalidateCache(c.Request.Context(), version); err != nil {
		ac.serviceError(c, "invalidate cache", err)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Invalidate cache thành công",
		Data:      map[string]interface{}{"dataset_version": version},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetStats lấy thống kê dataset, index và cache
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context(), ac.addressService.GetStartTime())
	if err != nil {
		ac.serviceError(c, "lấy stats", err)
		return
	}

	resp := responses.AdminStatsResponse{
		DatasetVersion: stats.Parser.DatasetVersion,
		Provinces:      stats.Parser.Counts.Provinces,
		Cities:         stats.Parser.Counts.Cities,
		Districts:      stats.Parser.Counts.Districts,
		IndexedNames:   stats.Parser.IndexedNames,
		TrieNodes:      stats.Parser.TrieNodes,
		Jobs:           ac.addressService.JobCount(),
		UptimeSeconds:  int64(time.Since(ac.addressService.GetStartTime()).Seconds()),
		LastUpdated:    time.Now().Format(time.RFC3339),
	}
	if stats.Cache != nil {
		resp.Cache = &responses.CacheStatsDTO{
			TotalItems: stats.Cache.TotalItems,
			TotalHits:  stats.Cache.TotalHits,
			TotalMiss:  stats.Cache.TotalMiss,
			HitRate:    stats.Cache.HitRate,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ExportMongo ghi danh mục hành chính vào MongoDB
func (ac *AdminController) ExportMongo(c *gin.Context) {
	var req requests.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	result, err := ac.adminService.ExportToMongo(c.Request.Context(), req.DryRun)
	if err != nil {
		ac.serviceError(c, "export MongoDB", err)
		return
	}
	c.JSON(http.StatusOK, exportResponse(result))
}

// ExportMeili đẩy danh mục hành chính sang Meilisearch
func (ac *AdminController) ExportMeili(c *gin.Context) {
	var req requests.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		abortWithError(c, http.StatusBadRequest, responses.ErrCodeInvalidRequest, "Request không hợp lệ: "+err.Error())
		return
	}

	result, err := ac.adminService.ExportToMeili(req.DryRun)
	if err != nil {
		ac.serviceError(c, "export Meilisearch", err)
		return
	}
	c.JSON(http.StatusOK, exportResponse(result))
}

func exportResponse(r *services.ExportResult) responses.ExportResponse {
	msg := "Export thành công"
	if r.DryRun {
		msg = "Dry run, không ghi dữ liệu"
	}
	return responses.ExportResponse{
		Target:           r.Target,
		DatasetVersion:   r.DatasetVersion,
		Documents:        r.Documents,
		DryRun:           r.DryRun,
		ProcessingTimeMs: r.ProcessingTimeMs,
		Message:          msg,
	}
}
