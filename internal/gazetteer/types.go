// Package gazetteer chứa bảng đơn vị hành chính (tỉnh / thành phố / quận
// huyện) mà parser dùng để build index. Dataset bất biến sau khi tạo.
package gazetteer

import "fmt"

// Level cấp hành chính
type Level int

const (
	LevelProvince Level = 1
	LevelCity     Level = 2
	LevelDistrict Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// IsValid kiểm tra level có nằm trong 1..3
func (l Level) IsValid() bool {
	return l >= LevelProvince && l <= LevelDistrict
}

// Kind loại đơn vị hành chính, chỉ mang tính thông tin trên kết quả
type Kind string

const (
	// cấp tỉnh
	KindProvince                    Kind = "province"
	KindMunicipality                Kind = "municipality"
	KindAutonomousRegion            Kind = "autonomous_region"
	KindSpecialAdministrativeRegion Kind = "special_administrative_region"

	// cấp thành phố
	KindPrefectureCity       Kind = "prefecture_city"
	KindAutonomousPrefecture Kind = "autonomous_prefecture"
	KindLeague               Kind = "league"
	KindMunicipalityCity     Kind = "municipality_city"

	// cấp quận huyện
	KindDistrict         Kind = "district"
	KindCounty           Kind = "county"
	KindCountyLevelCity  Kind = "county_level_city"
	KindAutonomousCounty Kind = "autonomous_county"
	KindBanner           Kind = "banner"
)

var kindsByLevel = map[Level][]Kind{
	LevelProvince: {KindProvince, KindMunicipality, KindAutonomousRegion, KindSpecialAdministrativeRegion},
	LevelCity:     {KindPrefectureCity, KindAutonomousPrefecture, KindLeague, KindMunicipalityCity},
	LevelDistrict: {KindDistrict, KindCounty, KindCountyLevelCity, KindAutonomousCounty, KindBanner},
}

// ValidFor kiểm tra kind có hợp lệ ở level đã cho
func (k Kind) ValidFor(level Level) bool {
	for _, candidate := range kindsByLevel[level] {
		if candidate == k {
			return true
		}
	}
	return false
}

// Province đơn vị cấp tỉnh
type Province struct {
	ID      int
	Name    string
	Aliases []string
	Kind    Kind
}

// City đơn vị cấp thành phố, thuộc đúng một Province
type City struct {
	ID         int
	ProvinceID int
	Name       string
	Aliases    []string
	Kind       Kind
}

// District đơn vị cấp quận huyện, thuộc đúng một City
type District struct {
	ID      int
	CityID  int
	Name    string
	Aliases []string
	Kind    Kind
}

// Record là một dòng dữ liệu đầu vào: đơn vị cùng đường dẫn tổ tiên theo
// tên đầy đủ. Province dùng cho city và district, City chỉ dùng cho district.
type Record struct {
	Level    Level
	Name     string
	Aliases  []string
	Kind     Kind
	Province string
	City     string
}

// Counts số đơn vị theo từng cấp
type Counts struct {
	Provinces int `json:"provinces"`
	Cities    int `json:"cities"`
	Districts int `json:"districts"`
}
