package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ParseTotal số địa chỉ đã parse, theo cấp sâu nhất tìm được
	ParseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cnaddr_parse_total",
		Help: "Total number of parsed addresses by deepest resolved level",
	}, []string{"level"})
	ParseDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cnaddr_parse_duration_ms",
		Help:    "Single address parse duration in milliseconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cnaddr_cache_hits_total",
		Help: "Total result cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cnaddr_cache_misses_total",
		Help: "Total result cache misses",
	})
	NormalizeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cnaddr_normalize_total",
		Help: "Total normalize calls by outcome",
	}, []string{"outcome"})
	JobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cnaddr_jobs_total",
		Help: "Batch jobs by final status",
	}, []string{"status"})
	JobDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cnaddr_job_duration_ms",
		Help:    "Batch job duration in milliseconds",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 30000},
	})
)

func init() {
	prometheus.MustRegister(ParseTotal)
	prometheus.MustRegister(ParseDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(NormalizeTotal)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobDurationMs)
}

// Handler expose các metric đã đăng ký cho /metrics
func Handler() http.Handler { return promhttp.Handler() }
