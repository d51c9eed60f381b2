package parser

import (
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/trie"
)

const none = -1

// Scope giới hạn tập ứng viên khi match: một cấp, có thể kèm tỉnh hoặc
// thành phố cha.
type Scope struct {
	level    gazetteer.Level
	province int
	city     int
}

// AllProvinces mọi tỉnh
func AllProvinces() Scope { return Scope{level: gazetteer.LevelProvince, province: none, city: none} }

// AllCities mọi thành phố, không giới hạn tỉnh
func AllCities() Scope { return Scope{level: gazetteer.LevelCity, province: none, city: none} }

// CitiesOf các thành phố thuộc tỉnh provinceID
func CitiesOf(provinceID int) Scope {
	return Scope{level: gazetteer.LevelCity, province: provinceID, city: none}
}

// AllDistricts mọi quận huyện
func AllDistricts() Scope { return Scope{level: gazetteer.LevelDistrict, province: none, city: none} }

// DistrictsOf các quận huyện thuộc thành phố cityID
func DistrictsOf(cityID int) Scope {
	return Scope{level: gazetteer.LevelDistrict, province: none, city: cityID}
}

// DistrictsOfProvince dùng khi chỉ biết tỉnh, chưa biết thành phố
func DistrictsOfProvince(provinceID int) Scope {
	return Scope{level: gazetteer.LevelDistrict, province: provinceID, city: none}
}

// Level cấp của scope
func (s Scope) Level() gazetteer.Level { return s.level }

// Match kết quả match tiền tố dài nhất tại một vị trí. Candidates rỗng nghĩa
// là không match; End khi đó bằng Start.
type Match struct {
	Start      int
	End        int
	Candidates []int
}

// Found có ít nhất một ứng viên
func (m Match) Found() bool { return len(m.Candidates) > 0 }

// Len độ dài match tính theo byte
func (m Match) Len() int { return m.End - m.Start }

// LookupIndex index tiền tố theo từng cấp, mỗi cấp một trie chứa tên đầy đủ
// và alias. Chỉ đọc sau khi build.
type LookupIndex struct {
	tries [3]*trie.Trie
	refs  *BackReferenceIndex
}

// NewLookupIndex build index cho cả ba cấp. Entity id chèn theo thứ tự khai
// báo nên ứng viên trong một node luôn tăng dần.
func NewLookupIndex(ds *gazetteer.Dataset, refs *BackReferenceIndex) *LookupIndex {
	ix := &LookupIndex{refs: refs}
	for i := range ix.tries {
		ix.tries[i] = trie.New()
	}

	provinces := ix.tries[gazetteer.LevelProvince-1]
	for _, p := range ds.Provinces {
		insertNames(provinces, int32(p.ID), p.Name, p.Aliases)
	}
	cities := ix.tries[gazetteer.LevelCity-1]
	for _, c := range ds.Cities {
		insertNames(cities, int32(c.ID), c.Name, c.Aliases)
	}
	districts := ix.tries[gazetteer.LevelDistrict-1]
	for _, d := range ds.Districts {
		insertNames(districts, int32(d.ID), d.Name, d.Aliases)
	}
	return ix
}

func insertNames(t *trie.Trie, id int32, name string, aliases []string) {
	t.Insert(name, id)
	for _, a := range aliases {
		t.Insert(a, id)
	}
}

func (ix *LookupIndex) accept(scope Scope) func(int32) bool {
	switch {
	case scope.level == gazetteer.LevelCity && scope.province != none:
		return func(id int32) bool { return ix.refs.ProvinceOfCity(int(id)) == scope.province }
	case scope.level == gazetteer.LevelDistrict && scope.city != none:
		return func(id int32) bool { return ix.refs.CityOfDistrict(int(id)) == scope.city }
	case scope.level == gazetteer.LevelDistrict && scope.province != none:
		return func(id int32) bool { return ix.refs.ProvinceOfDistrict(int(id)) == scope.province }
	default:
		return nil
	}
}

func (ix *LookupIndex) trieFor(level gazetteer.Level) *trie.Trie {
	if !level.IsValid() {
		return nil
	}
	return ix.tries[level-1]
}

// Match tìm entry dài nhất trong scope bắt đầu đúng tại byte offset start.
// Nhiều entity cùng độ dài được trả hết theo thứ tự khai báo.
func (ix *LookupIndex) Match(text string, start int, scope Scope) Match {
	m := Match{Start: start, End: start}
	t := ix.trieFor(scope.level)
	if t == nil {
		return m
	}
	end, ids := t.LongestPrefix(text, start, ix.accept(scope))
	if len(ids) == 0 {
		return m
	}
	m.End = end
	m.Candidates = make([]int, len(ids))
	for i, id := range ids {
		m.Candidates[i] = int(id)
	}
	return m
}

// Lookup resolve nguyên chuỗi name (tên đầy đủ hoặc alias) trong scope.
func (ix *LookupIndex) Lookup(name string, scope Scope) []int {
	t := ix.trieFor(scope.level)
	if t == nil {
		return nil
	}
	accept := ix.accept(scope)
	var out []int
	for _, id := range t.Get(name) {
		if accept == nil || accept(id) {
			out = append(out, int(id))
		}
	}
	return out
}

// NodeCount tổng số node của ba trie
func (ix *LookupIndex) NodeCount() int {
	n := 0
	for _, t := range ix.tries {
		n += t.NodeCount()
	}
	return n
}

// KeyCount tổng số tên + alias phân biệt đã index
func (ix *LookupIndex) KeyCount() int {
	n := 0
	for _, t := range ix.tries {
		n += t.Len()
	}
	return n
}
