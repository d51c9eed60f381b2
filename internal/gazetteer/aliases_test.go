package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveAliases(t *testing.T) {
	tests := []struct {
		level Level
		kind  Kind
		name  string
		want  []string
	}{
		{LevelProvince, KindProvince, "广东省", []string{"广东"}},
		{LevelProvince, KindMunicipality, "北京市", []string{"北京"}},
		{LevelProvince, KindSpecialAdministrativeRegion, "澳门特别行政区", []string{"澳门"}},
		{LevelProvince, KindAutonomousRegion, "广西壮族自治区", nil},
		{LevelCity, KindPrefectureCity, "深圳市", []string{"深圳"}},
		{LevelCity, KindPrefectureCity, "大兴安岭地区", []string{"大兴安岭"}},
		{LevelCity, KindLeague, "锡林郭勒盟", []string{"锡林郭勒"}},
		{LevelCity, KindAutonomousPrefecture, "大理白族自治州", nil},
		{LevelDistrict, KindDistrict, "浦东新区", []string{"浦东"}},
		{LevelDistrict, KindDistrict, "南山区", []string{"南山"}},
		{LevelDistrict, KindCounty, "抚顺县", []string{"抚顺"}},
		{LevelDistrict, KindCountyLevelCity, "义乌市", []string{"义乌"}},
		{LevelDistrict, KindBanner, "土默特左旗", []string{"土默特左"}},
		// phần còn lại chỉ một chữ
		{LevelDistrict, KindCounty, "忠县", nil},
		{LevelDistrict, KindCounty, "赵县", nil},
		{LevelDistrict, KindAutonomousCounty, "石林彝族自治县", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAliases(tt.level, tt.kind, tt.name))
		})
	}
}

func TestInferKind(t *testing.T) {
	assert.Equal(t, KindMunicipality, InferKind(LevelProvince, "上海市", ""))
	assert.Equal(t, KindAutonomousRegion, InferKind(LevelProvince, "西藏自治区", ""))
	assert.Equal(t, KindSpecialAdministrativeRegion, InferKind(LevelProvince, "香港特别行政区", ""))
	assert.Equal(t, KindProvince, InferKind(LevelProvince, "台湾省", ""))

	assert.Equal(t, KindMunicipalityCity, InferKind(LevelCity, "上海市", KindMunicipality))
	assert.Equal(t, KindAutonomousPrefecture, InferKind(LevelCity, "甘孜藏族自治州", KindProvince))
	assert.Equal(t, KindLeague, InferKind(LevelCity, "阿拉善盟", KindAutonomousRegion))
	assert.Equal(t, KindPrefectureCity, InferKind(LevelCity, "阿里地区", KindAutonomousRegion))

	assert.Equal(t, KindDistrict, InferKind(LevelDistrict, "福田区", ""))
	assert.Equal(t, KindCounty, InferKind(LevelDistrict, "长沙县", ""))
	assert.Equal(t, KindCountyLevelCity, InferKind(LevelDistrict, "康定市", ""))
	assert.Equal(t, KindAutonomousCounty, InferKind(LevelDistrict, "大通回族土族自治县", ""))
	assert.Equal(t, KindBanner, InferKind(LevelDistrict, "土默特左旗", ""))
}

func TestKindValidFor(t *testing.T) {
	assert.True(t, KindBanner.ValidFor(LevelDistrict))
	assert.False(t, KindBanner.ValidFor(LevelCity))
	assert.False(t, Kind("").ValidFor(LevelProvince))
	assert.Equal(t, "city", LevelCity.String())
	assert.Equal(t, "level(7)", Level(7).String())
}
