package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedAddress_Predicates(t *testing.T) {
	full := ParsedAddress{Province: "广东省", City: "深圳市", District: "南山区", Detail: "科技园"}
	assert.True(t, full.IsComplete())
	assert.True(t, full.HasProvince())
	assert.True(t, full.HasCity())
	assert.True(t, full.HasDistrict())

	partial := ParsedAddress{Province: "广西壮族自治区", City: "南宁市"}
	assert.False(t, partial.IsComplete())
	assert.False(t, partial.HasDistrict())

	assert.False(t, ParsedAddress{Detail: "xyz"}.HasProvince())
}

func TestParsedAddress_FullAddress(t *testing.T) {
	assert.Equal(t, "广东省深圳市南山区",
		ParsedAddress{Province: "广东省", City: "深圳市", District: "南山区", Detail: "科技园"}.FullAddress())
	// municipality: city trùng tỉnh chỉ viết một lần
	assert.Equal(t, "北京市朝阳区",
		ParsedAddress{Province: "北京市", City: "北京市", District: "朝阳区"}.FullAddress())
	assert.Equal(t, "广西壮族自治区南宁市",
		ParsedAddress{Province: "广西壮族自治区", City: "南宁市"}.FullAddress())
	assert.Equal(t, "", ParsedAddress{Detail: "xyz"}.FullAddress())

	assert.Equal(t, "北京市朝阳区三里屯",
		ParsedAddress{Province: "北京市", City: "北京市", District: "朝阳区", Detail: "三里屯"}.String())
}

func TestParsedAddress_JSONOmitsAbsentLevels(t *testing.T) {
	data, err := json.Marshal(ParsedAddress{Province: "广东省", City: "东莞市", Detail: "长安镇"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"province":"广东省","city":"东莞市","detail":"长安镇"}`, string(data))
}
