package parser

import (
	"strings"

	"github.com/cn-address-parser/internal/gazetteer"
)

// NormalizePolicy cách xử lý khi một cấp không resolve được
type NormalizePolicy int

const (
	// NormalizeStrict trả về *ResolutionError
	NormalizeStrict NormalizePolicy = iota
	// NormalizeVerbatim giữ nguyên đoạn chữ gốc và tiếp tục không scope
	NormalizeVerbatim
)

func (p NormalizePolicy) String() string {
	switch p {
	case NormalizeStrict:
		return "strict"
	case NormalizeVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// ParseNormalizePolicy đọc policy từ config ("strict" / "verbatim")
func ParseNormalizePolicy(s string) (NormalizePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return NormalizeStrict, true
	case "verbatim":
		return NormalizeVerbatim, true
	default:
		return NormalizeStrict, false
	}
}

type normalizer struct {
	ds     *gazetteer.Dataset
	index  *LookupIndex
	policy NormalizePolicy
}

// normalize resolve từng cấp theo tên đầy đủ hoặc alias, scope theo cấp cha
// đã resolve, rồi nối tên chuẩn. district rỗng là không truyền.
func (n *normalizer) normalize(province, city, district string) (string, error) {
	province = strings.TrimSpace(province)
	city = strings.TrimSpace(city)
	district = strings.TrimSpace(district)

	var b strings.Builder

	pid := n.first(province, AllProvinces())
	switch {
	case pid != none:
		b.WriteString(n.ds.Provinces[pid].Name)
	case n.policy == NormalizeStrict:
		return "", &ResolutionError{Level: gazetteer.LevelProvince, Input: province}
	default:
		b.WriteString(province)
	}

	cityScope := AllCities()
	if pid != none {
		cityScope = CitiesOf(pid)
	}
	cid := n.first(city, cityScope)
	switch {
	case cid != none:
		b.WriteString(n.ds.Cities[cid].Name)
	case n.policy == NormalizeStrict:
		return "", &ResolutionError{Level: gazetteer.LevelCity, Input: city, Parent: n.provinceName(pid)}
	default:
		b.WriteString(city)
	}

	if district == "" {
		return b.String(), nil
	}

	districtScope := AllDistricts()
	switch {
	case cid != none:
		districtScope = DistrictsOf(cid)
	case pid != none:
		districtScope = DistrictsOfProvince(pid)
	}
	did := n.first(district, districtScope)
	switch {
	case did != none:
		b.WriteString(n.ds.Districts[did].Name)
	case n.policy == NormalizeStrict:
		return "", &ResolutionError{Level: gazetteer.LevelDistrict, Input: district, Parent: n.cityName(cid)}
	default:
		b.WriteString(district)
	}
	return b.String(), nil
}

func (n *normalizer) first(name string, scope Scope) int {
	if name == "" {
		return none
	}
	ids := n.index.Lookup(name, scope)
	if len(ids) == 0 {
		return none
	}
	return ids[0]
}

func (n *normalizer) provinceName(id int) string {
	if id == none {
		return ""
	}
	return n.ds.Provinces[id].Name
}

func (n *normalizer) cityName(id int) string {
	if id == none {
		return ""
	}
	return n.ds.Cities[id].Name
}
