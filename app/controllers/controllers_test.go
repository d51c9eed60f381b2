package controllers

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/parser"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router  *gin.Engine
	address *services.AddressService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := parser.Default()
	cache := services.NewCacheService(time.Hour)
	addressService := services.NewAddressService(p, cache, services.BatchConfig{MaxSync: 5, MaxJob: 50, Workers: 2}, zap.NewNop())
	adminService := services.NewAdminService(p, nil, nil, cache, zap.NewNop())

	ac := NewAddressController(addressService, zap.NewNop())
	dc := NewDivisionController(p)
	adm := NewAdminController(adminService, addressService, zap.NewNop())

	r := gin.New()
	r.POST("/parse", ac.ParseAddress)
	r.POST("/batch", ac.ParseBatch)
	r.POST("/jobs", ac.CreateBatchJob)
	r.GET("/jobs/:jobID/status", ac.GetJobStatus)
	r.GET("/jobs/:jobID/results", ac.GetJobResults)
	r.POST("/normalize", ac.Normalize)
	r.POST("/validate", ac.Validate)
	r.GET("/health", ac.HealthCheck)
	r.GET("/provinces", dc.Provinces)
	r.GET("/provinces/:name/cities", dc.CitiesOfProvince)
	r.GET("/cities/:name/districts", dc.DistrictsOfCity)
	r.POST("/admin/cache/clear", adm.ClearCache)
	r.POST("/admin/cache/invalidate", adm.InvalidateCache)
	r.GET("/admin/stats", adm.GetStats)
	r.POST("/admin/export/mongo", adm.ExportMongo)
	r.POST("/admin/export/meili", adm.ExportMeili)

	return &testServer{router: r, address: addressService}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestAddressController_Parse(t *testing.T) {
	s := newTestServer(t)

	body := map[string]interface{}{"address": "广东省深圳市南山区科技园", "options": map[string]bool{"use_cache": true}}
	w := s.do(t, http.MethodPost, "/parse", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.ParseAddressResponse
	decode(t, w, &resp)
	assert.Equal(t, "南山区", resp.Result.District)
	assert.Equal(t, "科技园", resp.Result.Detail)
	assert.Equal(t, "广东省深圳市南山区", resp.FullAddress)
	assert.True(t, resp.Complete)
	assert.False(t, resp.CacheHit)
	assert.NotEmpty(t, resp.DatasetVersion)

	w = s.do(t, http.MethodPost, "/parse", body)
	decode(t, w, &resp)
	assert.True(t, resp.CacheHit)
}

func TestAddressController_ParseEmptyAndInvalid(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/parse", map[string]string{"address": ""})
	require.Equal(t, http.StatusOK, w.Code)
	var resp responses.ParseAddressResponse
	decode(t, w, &resp)
	assert.Empty(t, resp.Result.Province)
	assert.False(t, resp.Complete)

	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp responses.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, responses.ErrCodeInvalidRequest, errResp.Error)
}

func TestAddressController_Batch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/batch", map[string]interface{}{"addresses": []string{"北京朝阳", "深圳南山", "无法识别"}})
	require.Equal(t, http.StatusOK, w.Code)
	var resp responses.BatchParseResponse
	decode(t, w, &resp)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "北京市", resp.Results[0].Province)
	assert.Equal(t, "深圳市", resp.Results[1].City)
	assert.Empty(t, resp.Results[2].Province)

	w = s.do(t, http.MethodPost, "/batch", map[string]interface{}{"addresses": make([]string, 6)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp responses.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, responses.ErrCodeTooManyAddresses, errResp.Error)

	w = s.do(t, http.MethodPost, "/batch", map[string]interface{}{"addresses": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddressController_Jobs(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/jobs", map[string]interface{}{"addresses": []string{"北京朝阳", "深圳南山", "杭州西湖区文三路"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	var job responses.BatchJobResponse
	decode(t, w, &job)
	require.NotEmpty(t, job.JobID)
	assert.Equal(t, 3, job.TotalAddresses)

	require.Eventually(t, func() bool {
		w := s.do(t, http.MethodGet, "/jobs/"+job.JobID+"/status", nil)
		var status responses.JobStatusResponse
		decode(t, w, &status)
		return status.Status == services.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	w = s.do(t, http.MethodGet, "/jobs/"+job.JobID+"/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results responses.JobResultsResponse
	decode(t, w, &results)
	require.Len(t, results.Results, 3)
	assert.Equal(t, "西湖区", results.Results[2].District)

	// NDJSON + gzip
	w = s.do(t, http.MethodGet, "/jobs/"+job.JobID+"/results?format=ndjson&gzip=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"province":"北京市"`)

	w = s.do(t, http.MethodGet, "/jobs/missing/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/jobs/missing/results?format=ndjson", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressController_StreamCanceledIsTruncated(t *testing.T) {
	s := newTestServer(t)

	addresses := make([]string, 50)
	for i := range addresses {
		addresses[i] = "广东省深圳市南山区科技园"
	}
	jobID, err := s.address.SubmitBatchJob(addresses, requests.ParseOptions{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		status, err := s.address.GetJobStatus(jobID)
		return err == nil && status.Status == services.JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID+"/results?format=ndjson&gzip=1", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	// stream bị cắt không được trông như một body gzip hoàn chỉnh
	zr, err := gzip.NewReader(w.Body)
	if err == nil {
		_, err = io.ReadAll(zr)
	}
	assert.Error(t, err)
}

func TestAddressController_Normalize(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/normalize", map[string]string{"province": "广东", "city": "深圳", "district": "南山"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp responses.NormalizeResponse
	decode(t, w, &resp)
	assert.Equal(t, "广东省深圳市南山区", resp.Normalized)
	assert.Equal(t, "strict", resp.Policy)

	w = s.do(t, http.MethodPost, "/normalize", map[string]string{"province": "广东", "city": "杭州"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp responses.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, responses.ErrCodeUnresolved, errResp.Error)

	w = s.do(t, http.MethodPost, "/normalize", map[string]string{"province": "广东", "city": "杭州", "policy": "verbatim"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "广东省杭州", resp.Normalized)

	w = s.do(t, http.MethodPost, "/normalize", map[string]string{"province": "广东"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddressController_Validate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/validate", map[string]string{"address": "北京市朝阳区"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp responses.ValidateResponse
	decode(t, w, &resp)
	assert.True(t, resp.Valid)

	w = s.do(t, http.MethodPost, "/validate", map[string]string{"address": "广东省"})
	decode(t, w, &resp)
	assert.False(t, resp.Valid)
}

func TestDivisionController(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/provinces", nil)
	var list responses.DivisionListResponse
	decode(t, w, &list)
	assert.Equal(t, 34, list.Total)
	assert.Equal(t, "北京市", list.Names[0])

	w = s.do(t, http.MethodGet, "/provinces/"+url.PathEscape("广东")+"/cities", nil)
	decode(t, w, &list)
	assert.Contains(t, list.Names, "深圳市")
	assert.Equal(t, "广东", list.Parent)

	w = s.do(t, http.MethodGet, "/cities/"+url.PathEscape("深圳市")+"/districts", nil)
	decode(t, w, &list)
	assert.Contains(t, list.Names, "南山区")

	w = s.do(t, http.MethodGet, "/cities/"+url.PathEscape("不存在")+"/districts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Names)
}

func TestAdminController(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/parse", map[string]interface{}{"address": "北京朝阳", "options": map[string]bool{"use_cache": true}})

	w := s.do(t, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats responses.AdminStatsResponse
	decode(t, w, &stats)
	assert.Equal(t, 34, stats.Provinces)
	assert.Positive(t, stats.TrieNodes)
	require.NotNil(t, stats.Cache)
	assert.Equal(t, int64(1), stats.Cache.TotalItems)

	w = s.do(t, http.MethodPost, "/admin/cache/invalidate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/admin/cache/invalidate?dataset_version="+s.address.DatasetVersion(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/admin/cache/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// MongoDB và Meilisearch không được cấu hình trong test
	w = s.do(t, http.MethodPost, "/admin/export/mongo", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = s.do(t, http.MethodPost, "/admin/export/meili", map[string]bool{"dry_run": false})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var errResp responses.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, responses.ErrCodeNotConfigured, errResp.Error)

	w = s.do(t, http.MethodPost, "/admin/export/meili", map[string]bool{"dry_run": true})
	require.Equal(t, http.StatusOK, w.Code)
	var export responses.ExportResponse
	decode(t, w, &export)
	assert.True(t, export.DryRun)
	assert.Equal(t, "meilisearch", export.Target)
	assert.Positive(t, export.Documents)
}

func TestAddressController_Health(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.HealthCheckResponse
	decode(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "enabled", resp.Services["cache"])
}
