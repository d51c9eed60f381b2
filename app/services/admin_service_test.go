package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/parser"
	"github.com/cn-address-parser/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallDataset(t *testing.T) *gazetteer.Dataset {
	t.Helper()
	ds, err := gazetteer.NewDataset([]gazetteer.Record{
		{Level: gazetteer.LevelProvince, Name: "北京市", Aliases: []string{"北京"}, Kind: gazetteer.KindMunicipality},
		{Level: gazetteer.LevelProvince, Name: "广东省", Aliases: []string{"广东"}, Kind: gazetteer.KindProvince},
		{Level: gazetteer.LevelCity, Name: "北京市", Kind: gazetteer.KindMunicipalityCity, Province: "北京市"},
		{Level: gazetteer.LevelCity, Name: "深圳市", Aliases: []string{"深圳"}, Kind: gazetteer.KindPrefectureCity, Province: "广东省"},
		{Level: gazetteer.LevelDistrict, Name: "朝阳区", Aliases: []string{"朝阳"}, Kind: gazetteer.KindDistrict, Province: "北京市", City: "北京市"},
		{Level: gazetteer.LevelDistrict, Name: "南山区", Aliases: []string{"南山"}, Kind: gazetteer.KindDistrict, Province: "广东省", City: "深圳市"},
	})
	require.NoError(t, err)
	ds.Version = "test.1"
	return ds
}

type fakeExporter struct {
	got []models.Division
	err error
}

func (f *fakeExporter) Export(divisions []models.Division) (*search.ExportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = divisions
	return &search.ExportResult{IndexName: "divisions", Documents: len(divisions), Batches: 1}, nil
}

func newTestAdminService(t *testing.T, exporter DivisionExporter, cache ICacheService) *AdminService {
	t.Helper()
	p, err := parser.NewFromDataset(smallDataset(t))
	require.NoError(t, err)
	return NewAdminService(p, nil, exporter, cache, nil)
}

func TestBuildDivisions(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	divisions := BuildDivisions(smallDataset(t), now)
	require.Len(t, divisions, 6)

	byID := make(map[string]models.Division)
	for _, d := range divisions {
		byID[d.DivisionID] = d
		assert.True(t, d.IsValidLevel(), d.DivisionID)
		assert.True(t, d.IsValidKind(), d.DivisionID)
		assert.Equal(t, "test.1", d.DatasetVersion)
		assert.Equal(t, now, d.CreatedAt)
	}

	bj := byID["p0"]
	assert.Nil(t, bj.ParentID)
	assert.Equal(t, "bei jing shi", bj.NameASCII)
	assert.Equal(t, []string{"北京"}, bj.Aliases)

	sz := byID["c1"]
	require.NotNil(t, sz.ParentID)
	assert.Equal(t, "p1", *sz.ParentID)
	assert.Equal(t, "广东省 > 深圳市", sz.GetFullPath())

	ns := byID["d1"]
	require.NotNil(t, ns.ParentID)
	assert.Equal(t, "c1", *ns.ParentID)
	assert.Equal(t, []string{"广东省", "深圳市"}, ns.Path)
	assert.Equal(t, 3, ns.Level)
}

func TestAdminService_ExportToMeili(t *testing.T) {
	exporter := &fakeExporter{}
	as := newTestAdminService(t, exporter, nil)

	dry, err := as.ExportToMeili(true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Equal(t, 6, dry.Documents)
	assert.Nil(t, exporter.got)

	res, err := as.ExportToMeili(false)
	require.NoError(t, err)
	assert.Equal(t, "meilisearch", res.Target)
	assert.Equal(t, "test.1", res.DatasetVersion)
	assert.Equal(t, 6, res.Documents)
	assert.Len(t, exporter.got, 6)

	exporter.err = errors.New("boom")
	_, err = as.ExportToMeili(false)
	assert.Error(t, err)
}

func TestAdminService_NotConfigured(t *testing.T) {
	as := newTestAdminService(t, nil, nil)

	_, err := as.ExportToMongo(context.Background(), false)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = as.ExportToMeili(false)
	assert.ErrorIs(t, err, ErrNotConfigured)

	dry, err := as.ExportToMongo(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Positive(t, dry.Documents)

	assert.ErrorIs(t, as.ClearCache(context.Background()), ErrNotConfigured)
}

func TestAdminService_ClearCacheAndStats(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(time.Hour)
	as := newTestAdminService(t, nil, cache)
	require.NoError(t, cache.Set(ctx, "test.1:a", &models.ParsedAddress{}))

	stats, err := as.GetSystemStats(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "test.1", stats.Parser.DatasetVersion)
	assert.Equal(t, 2, stats.Parser.Counts.Provinces)
	require.NotNil(t, stats.Cache)
	assert.Equal(t, int64(1), stats.Cache.TotalItems)
	assert.Nil(t, stats.DatabaseStats)
	assert.Contains(t, stats.MemoryUsage, "alloc_mb")

	require.NoError(t, cache.Set(ctx, "old.0:b", &models.ParsedAddress{}))
	require.NoError(t, as.InvalidateCache(ctx, "old.0"))
	assert.Equal(t, 1, cache.Size())

	require.NoError(t, as.ClearCache(ctx))
	assert.Equal(t, 0, cache.Size())
}
