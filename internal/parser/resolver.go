package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/gazetteer"
)

// resolver đi qua input đúng một lần từ trái sang phải:
// tỉnh → thành phố → quận huyện → detail. Con trỏ chỉ tăng.
type resolver struct {
	ds    *gazetteer.Dataset
	index *LookupIndex
	refs  *BackReferenceIndex
}

type resolveState struct {
	text     string
	cursor   int
	province int
	city     int
	district int
}

func (r *resolver) resolve(input string) models.ParsedAddress {
	st := &resolveState{
		text:     strings.TrimSpace(input),
		province: none,
		city:     none,
		district: none,
	}
	if st.text == "" {
		return models.ParsedAddress{}
	}

	r.provinceStage(st)
	if st.city == none {
		r.cityStage(st)
	}
	r.districtStage(st)

	return r.build(st)
}

func (r *resolver) provinceStage(st *resolveState) {
	pos := skipSeparators(st.text, st.cursor)
	m := r.index.Match(st.text, pos, AllProvinces())
	if !m.Found() {
		return
	}
	// "吉林市", "河北区": tên dài hơn ở cấp dưới thắng alias tỉnh
	if r.longerAt(st.text, m, AllCities(), AllDistricts()) {
		return
	}

	st.province = m.Candidates[0]
	st.cursor = m.End
	if city, ok := r.refs.MunicipalityCity(st.province); ok {
		st.city = city
		r.skipRepeatedCity(st)
	}
}

// skipRepeatedCity bỏ qua tên thành phố lặp lại ngay sau municipality, dạng
// mà Normalize sinh ra: "北京市北京市朝阳区".
func (r *resolver) skipRepeatedCity(st *resolveState) {
	pos := skipSeparators(st.text, st.cursor)
	m := r.index.Match(st.text, pos, CitiesOf(st.province))
	if !m.Found() || m.Candidates[0] != st.city {
		return
	}
	if r.longerAt(st.text, m, DistrictsOf(st.city)) {
		return
	}
	st.cursor = m.End
}

func (r *resolver) cityStage(st *resolveState) {
	scope, districtScope := AllCities(), AllDistricts()
	if st.province != none {
		scope, districtScope = CitiesOf(st.province), DistrictsOfProvince(st.province)
	}

	pos := skipSeparators(st.text, st.cursor)
	m := r.index.Match(st.text, pos, scope)
	if !m.Found() {
		return
	}
	// "朝阳区" là quận, không phải "朝阳" + "区"
	if r.longerAt(st.text, m, districtScope) {
		return
	}

	st.city = r.pickCity(st.text, m, st.province)
	st.cursor = m.End
	if st.province == none {
		st.province = r.refs.ProvinceOfCity(st.city)
	}
}

// pickCity chọn một city khi alias trùng giữa các tỉnh: ưu tiên ứng viên mà
// phần tiếp theo match được quận huyện của nó, không có thì lấy ứng viên đầu.
func (r *resolver) pickCity(text string, m Match, province int) int {
	if len(m.Candidates) == 1 || province != none {
		return m.Candidates[0]
	}
	next := skipSeparators(text, m.End)
	for _, c := range m.Candidates {
		if r.index.Match(text, next, DistrictsOf(c)).Found() {
			return c
		}
	}
	return m.Candidates[0]
}

func (r *resolver) districtStage(st *resolveState) {
	scope := AllDistricts()
	switch {
	case st.city != none:
		scope = DistrictsOf(st.city)
	case st.province != none:
		scope = DistrictsOfProvince(st.province)
	}

	pos := skipSeparators(st.text, st.cursor)
	m := r.index.Match(st.text, pos, scope)
	if !m.Found() {
		return
	}

	st.district = m.Candidates[0]
	st.cursor = m.End
	if st.city == none {
		st.city = r.refs.CityOfDistrict(st.district)
	}
	if st.province == none {
		st.province = r.refs.ProvinceOfCity(st.city)
	}
}

// longerAt báo có entry nào trong các scope, cùng vị trí bắt đầu, dài hơn m.
func (r *resolver) longerAt(text string, m Match, scopes ...Scope) bool {
	for _, s := range scopes {
		if other := r.index.Match(text, m.Start, s); other.Found() && other.End > m.End {
			return true
		}
	}
	return false
}

func (r *resolver) build(st *resolveState) models.ParsedAddress {
	var out models.ParsedAddress
	if st.province != none {
		p := r.ds.Provinces[st.province]
		out.Province, out.ProvinceKind = p.Name, p.Kind
	}
	if st.city != none {
		c := r.ds.Cities[st.city]
		out.City, out.CityKind = c.Name, c.Kind
	}
	if st.district != none {
		d := r.ds.Districts[st.district]
		out.District, out.DistrictKind = d.Name, d.Kind
	}

	if st.cursor == 0 {
		out.Detail = st.text
	} else {
		out.Detail = strings.TrimLeftFunc(st.text[st.cursor:], isSeparator)
	}
	return out
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

func skipSeparators(text string, pos int) int {
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !isSeparator(r) {
			break
		}
		pos += size
	}
	return pos
}
