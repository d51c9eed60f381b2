package services

import (
	"context"
	"testing"
	"time"

	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAddressService_RecordsMetrics(t *testing.T) {
	as := newTestAddressService(t, NewCacheService(time.Hour), BatchConfig{})
	ctx := context.Background()

	parsed := testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("none"))
	misses := testutil.ToFloat64(metrics.CacheMissesTotal)
	hits := testutil.ToFloat64(metrics.CacheHitsTotal)

	opts := requests.ParseOptions{UseCache: true}
	as.ParseAddress(ctx, "no address here 123", opts)
	as.ParseAddress(ctx, "no address here 123", opts)

	assert.Equal(t, parsed+1, testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("none")))
	assert.Equal(t, misses+1, testutil.ToFloat64(metrics.CacheMissesTotal))
	assert.Equal(t, hits+1, testutil.ToFloat64(metrics.CacheHitsTotal))

	unresolved := testutil.ToFloat64(metrics.NormalizeTotal.WithLabelValues("unresolved"))
	_, _, err := as.Normalize("广东", "杭州", "", "strict")
	assert.Error(t, err)
	assert.Equal(t, unresolved+1, testutil.ToFloat64(metrics.NormalizeTotal.WithLabelValues("unresolved")))
}
