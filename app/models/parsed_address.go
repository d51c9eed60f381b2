package models

import (
	"strings"

	"github.com/cn-address-parser/internal/gazetteer"
)

// ParsedAddress kết quả parse một địa chỉ. Province/City/District là tên đầy
// đủ chuẩn (không bao giờ là alias); chuỗi rỗng nghĩa là không xác định được
// cấp đó. Detail là phần còn lại chưa được tiêu thụ.
type ParsedAddress struct {
	Province     string         `json:"province,omitempty" bson:"province,omitempty"`
	City         string         `json:"city,omitempty" bson:"city,omitempty"`
	District     string         `json:"district,omitempty" bson:"district,omitempty"`
	Detail       string         `json:"detail" bson:"detail"`
	ProvinceKind gazetteer.Kind `json:"province_kind,omitempty" bson:"province_kind,omitempty"`
	CityKind     gazetteer.Kind `json:"city_kind,omitempty" bson:"city_kind,omitempty"`
	DistrictKind gazetteer.Kind `json:"district_kind,omitempty" bson:"district_kind,omitempty"`
}

// HasProvince có xác định được tỉnh
func (a ParsedAddress) HasProvince() bool { return a.Province != "" }

// HasCity có xác định được thành phố
func (a ParsedAddress) HasCity() bool { return a.City != "" }

// HasDistrict có xác định được quận huyện
func (a ParsedAddress) HasDistrict() bool { return a.District != "" }

// IsComplete đủ cả ba cấp
func (a ParsedAddress) IsComplete() bool {
	return a.HasProvince() && a.HasCity() && a.HasDistrict()
}

// FullAddress nối các cấp đã xác định, không gồm Detail. City của
// municipality trùng tên tỉnh chỉ được viết một lần.
func (a ParsedAddress) FullAddress() string {
	var b strings.Builder
	b.WriteString(a.Province)
	if a.City != a.Province {
		b.WriteString(a.City)
	}
	b.WriteString(a.District)
	return b.String()
}

// String dạng đầy đủ kể cả Detail
func (a ParsedAddress) String() string {
	return a.FullAddress() + a.Detail
}
