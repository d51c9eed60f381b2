package parser

import (
	"testing"

	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingDataset: hai tỉnh có thành phố cùng alias "白云", mỗi thành phố
// một quận riêng; thêm quận "东湖区" trùng tên ở tỉnh thứ ba.
func collidingDataset(t *testing.T) *gazetteer.Dataset {
	t.Helper()
	ds, err := gazetteer.NewDataset([]gazetteer.Record{
		{Level: gazetteer.LevelProvince, Name: "甲省", Aliases: []string{"甲"}, Kind: gazetteer.KindProvince},
		{Level: gazetteer.LevelProvince, Name: "乙省", Aliases: []string{"乙"}, Kind: gazetteer.KindProvince},
		{Level: gazetteer.LevelProvince, Name: "丙省", Aliases: []string{"丙"}, Kind: gazetteer.KindProvince},
		{Level: gazetteer.LevelCity, Name: "白云市", Aliases: []string{"白云"}, Kind: gazetteer.KindPrefectureCity, Province: "甲省"},
		{Level: gazetteer.LevelCity, Name: "白云地区", Aliases: []string{"白云"}, Kind: gazetteer.KindPrefectureCity, Province: "乙省"},
		{Level: gazetteer.LevelCity, Name: "青松市", Aliases: []string{"青松"}, Kind: gazetteer.KindPrefectureCity, Province: "丙省"},
		{Level: gazetteer.LevelDistrict, Name: "东湖区", Aliases: []string{"东湖"}, Kind: gazetteer.KindDistrict, Province: "甲省", City: "白云市"},
		{Level: gazetteer.LevelDistrict, Name: "西湖区", Aliases: []string{"西湖"}, Kind: gazetteer.KindDistrict, Province: "乙省", City: "白云地区"},
		{Level: gazetteer.LevelDistrict, Name: "东湖区", Aliases: []string{"东湖"}, Kind: gazetteer.KindDistrict, Province: "丙省", City: "青松市"},
	})
	require.NoError(t, err)
	return ds
}

func buildIndex(t *testing.T, ds *gazetteer.Dataset) (*LookupIndex, *BackReferenceIndex) {
	t.Helper()
	refs, err := NewBackReferenceIndex(ds)
	require.NoError(t, err)
	return NewLookupIndex(ds, refs), refs
}

func TestLookupIndex_MatchTies(t *testing.T) {
	ix, _ := buildIndex(t, collidingDataset(t))

	m := ix.Match("白云西湖区", 0, AllCities())
	require.True(t, m.Found())
	assert.Equal(t, len("白云"), m.End)
	assert.Equal(t, []int{0, 1}, m.Candidates)

	m = ix.Match("白云市东湖区", 0, AllCities())
	assert.Equal(t, len("白云市"), m.Len())
	assert.Equal(t, []int{0}, m.Candidates)

	m = ix.Match("东湖区", 0, AllDistricts())
	assert.Equal(t, []int{0, 2}, m.Candidates)
}

func TestLookupIndex_Scopes(t *testing.T) {
	ix, _ := buildIndex(t, collidingDataset(t))

	m := ix.Match("白云", 0, CitiesOf(1))
	assert.Equal(t, []int{1}, m.Candidates)

	m = ix.Match("东湖区", 0, DistrictsOf(2))
	assert.Equal(t, []int{2}, m.Candidates)

	m = ix.Match("东湖区", 0, DistrictsOfProvince(0))
	assert.Equal(t, []int{0}, m.Candidates)

	m = ix.Match("西湖区", 0, DistrictsOf(0))
	assert.False(t, m.Found())
	assert.Equal(t, 0, m.End)

	m = ix.Match("白云", 0, Scope{})
	assert.False(t, m.Found())
}

func TestLookupIndex_Lookup(t *testing.T) {
	ix, _ := buildIndex(t, collidingDataset(t))

	assert.Equal(t, []int{0, 1}, ix.Lookup("白云", AllCities()))
	assert.Equal(t, []int{1}, ix.Lookup("白云", CitiesOf(1)))
	assert.Equal(t, []int{0}, ix.Lookup("甲", AllProvinces()))
	// Lookup là khớp nguyên chuỗi, không phải tiền tố
	assert.Empty(t, ix.Lookup("白云西湖区", AllCities()))
	assert.Empty(t, ix.Lookup("", AllCities()))
}

func TestBackReferenceIndex(t *testing.T) {
	_, refs := buildIndex(t, collidingDataset(t))

	assert.Equal(t, 1, refs.ProvinceOfCity(1))
	assert.Equal(t, 2, refs.CityOfDistrict(2))
	assert.Equal(t, 2, refs.ProvinceOfDistrict(2))
	assert.Equal(t, []int{0}, refs.CitiesOf(0))
	assert.Equal(t, []int{1}, refs.DistrictsOf(1))

	_, ok := refs.MunicipalityCity(0)
	assert.False(t, ok)
}

func TestResolver_CityTieUsesContinuation(t *testing.T) {
	p, err := NewFromDataset(collidingDataset(t))
	require.NoError(t, err)

	tests := []struct {
		input string
		want  want
	}{
		// quận phía sau chỉ thuộc 白云地区
		{"白云西湖区1号", want{"乙省", "白云地区", "西湖区", "1号"}},
		{"白云东湖区", want{"甲省", "白云市", "东湖区", ""}},
		// không có quận: lấy ứng viên khai báo trước
		{"白云路8号", want{"甲省", "白云市", "", "路8号"}},
		// có tỉnh thì scope theo tỉnh
		{"乙白云", want{"乙省", "白云地区", "", ""}},
		// quận trùng tên, không có ngữ cảnh: khai báo trước
		{"东湖区", want{"甲省", "白云市", "东湖区", ""}},
		{"丙东湖", want{"丙省", "青松市", "东湖区", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assertParsed(t, tt.want, p.Parse(tt.input))
		})
	}
}
