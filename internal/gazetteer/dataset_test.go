package gazetteer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{Level: LevelProvince, Name: "北京市", Aliases: []string{"北京"}, Kind: KindMunicipality},
		{Level: LevelCity, Name: "北京市", Aliases: []string{"北京"}, Kind: KindMunicipalityCity, Province: "北京市"},
		{Level: LevelDistrict, Name: "朝阳区", Aliases: []string{"朝阳"}, Kind: KindDistrict, Province: "北京市", City: "北京市"},
		{Level: LevelProvince, Name: "广东省", Aliases: []string{"广东"}, Kind: KindProvince},
		{Level: LevelCity, Name: "深圳市", Aliases: []string{"深圳"}, Kind: KindPrefectureCity, Province: "广东省"},
		{Level: LevelDistrict, Name: "南山区", Aliases: []string{"南山"}, Kind: KindDistrict, Province: "广东省", City: "深圳市"},
	}
}

func TestNewDataset_ResolvesParents(t *testing.T) {
	ds, err := NewDataset(sampleRecords())
	require.NoError(t, err)

	require.Len(t, ds.Provinces, 2)
	require.Len(t, ds.Cities, 2)
	require.Len(t, ds.Districts, 2)

	assert.Equal(t, "广东省", ds.Provinces[ds.Cities[1].ProvinceID].Name)
	assert.Equal(t, "深圳市", ds.Cities[ds.Districts[1].CityID].Name)
	assert.Equal(t, Counts{Provinces: 2, Cities: 2, Districts: 2}, ds.Counts())
}

func TestNewDataset_ChildBeforeParent(t *testing.T) {
	recs := []Record{
		{Level: LevelDistrict, Name: "南山区", Kind: KindDistrict, Province: "广东省", City: "深圳市"},
		{Level: LevelCity, Name: "深圳市", Kind: KindPrefectureCity, Province: "广东省"},
		{Level: LevelProvince, Name: "广东省", Kind: KindProvince},
	}
	ds, err := NewDataset(recs)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Districts[0].CityID)
}

func TestNewDataset_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Record) []Record
		wantMsg string
	}{
		{
			name: "dangling province",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelCity, Name: "杭州市", Kind: KindPrefectureCity, Province: "浙江省"})
			},
			wantMsg: "unknown province",
		},
		{
			name: "dangling city",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelDistrict, Name: "福田区", Kind: KindDistrict, Province: "广东省", City: "广州市"})
			},
			wantMsg: "unknown city",
		},
		{
			name: "duplicate province",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelProvince, Name: "广东省", Kind: KindProvince})
			},
			wantMsg: "duplicate province",
		},
		{
			name: "duplicate district in city",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelDistrict, Name: "南山区", Kind: KindDistrict, Province: "广东省", City: "深圳市"})
			},
			wantMsg: "duplicate district",
		},
		{
			name: "kind of wrong level",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelCity, Name: "广州市", Kind: KindCounty, Province: "广东省"})
			},
			wantMsg: "unknown kind",
		},
		{
			name: "municipality with two cities",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelCity, Name: "北京郊区", Kind: KindMunicipalityCity, Province: "北京市"})
			},
			wantMsg: "exactly one city",
		},
		{
			name: "municipality city renamed",
			mutate: func(r []Record) []Record {
				r[1].Name = "北京城区"
				r[2].City = "北京城区"
				return r
			},
			wantMsg: "share the province name",
		},
		{
			name: "municipality city under a province",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelCity, Name: "广州市", Kind: KindMunicipalityCity, Province: "广东省"})
			},
			wantMsg: "outside a municipality",
		},
		{
			name: "empty name",
			mutate: func(r []Record) []Record {
				return append(r, Record{Level: LevelProvince, Name: "  ", Kind: KindProvince})
			},
			wantMsg: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(tt.mutate(sampleRecords()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDataset))

			var dsErr *DatasetError
			require.True(t, errors.As(err, &dsErr))
			assert.Contains(t, dsErr.Error(), tt.wantMsg)
		})
	}
}

func TestNewDataset_AliasesCleaned(t *testing.T) {
	recs := []Record{
		{Level: LevelProvince, Name: "广东省", Aliases: []string{"广东", " 广东 ", "", "广东省"}, Kind: KindProvince},
	}
	ds, err := NewDataset(recs)
	require.NoError(t, err)
	assert.Equal(t, []string{"广东"}, ds.Provinces[0].Aliases)
}

func TestDataset_RecordsRoundTrip(t *testing.T) {
	ds, err := NewDataset(sampleRecords())
	require.NoError(t, err)

	again, err := NewDataset(ds.Records())
	require.NoError(t, err)
	assert.Equal(t, ds.Provinces, again.Provinces)
	assert.Equal(t, ds.Cities, again.Cities)
	assert.Equal(t, ds.Districts, again.Districts)
}

func TestEmbedded(t *testing.T) {
	ds, err := Embedded()
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Version)
	assert.Len(t, ds.Provinces, 34)
	assert.Equal(t, "北京市", ds.Provinces[0].Name)
	assert.Equal(t, KindMunicipality, ds.Provinces[0].Kind)

	byName := map[string]Province{}
	for _, p := range ds.Provinces {
		byName[p.Name] = p
	}
	assert.Equal(t, KindAutonomousRegion, byName["广西壮族自治区"].Kind)
	assert.Contains(t, byName["广西壮族自治区"].Aliases, "广西")
	assert.Equal(t, KindSpecialAdministrativeRegion, byName["香港特别行政区"].Kind)
	assert.Contains(t, byName["香港特别行政区"].Aliases, "香港")
	assert.Contains(t, byName["黑龙江省"].Aliases, "黑龙江")

	for _, c := range ds.Cities {
		if c.Name == "北京市" {
			assert.Equal(t, KindMunicipalityCity, c.Kind)
			assert.Contains(t, c.Aliases, "北京")
		}
		if c.Name == "大理白族自治州" {
			assert.Equal(t, KindAutonomousPrefecture, c.Kind)
			assert.Contains(t, c.Aliases, "大理")
		}
		if c.Name == "兴安盟" {
			assert.Equal(t, KindLeague, c.Kind)
			assert.Equal(t, []string{"兴安"}, c.Aliases)
		}
	}

	kinds := map[string]Kind{}
	for _, d := range ds.Districts {
		kinds[d.Name] = d.Kind
	}
	assert.Equal(t, KindCountyLevelCity, kinds["义乌市"])
	assert.Equal(t, KindCounty, kinds["抚顺县"])
	assert.Equal(t, KindBanner, kinds["土默特左旗"])
	assert.Equal(t, KindAutonomousCounty, kinds["石柱土家族自治县"])
	assert.Equal(t, KindDistrict, kinds["浦东新区"])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "divisions.yaml")
	content := `version: test
provinces:
  - name: 广东省
    cities:
      - name: 深圳市
        districts:
          - 南山区
          - name: 福田区
            aliases: [福田中心区]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test", ds.Version)
	require.Len(t, ds.Districts, 2)
	assert.Equal(t, []string{"福田", "福田中心区"}, ds.Districts[1].Aliases)
	assert.Equal(t, []string{"广东"}, ds.Provinces[0].Aliases)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDataset_BadYAML(t *testing.T) {
	_, err := LoadDataset([]byte("provinces: [oops"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidDataset))
}
