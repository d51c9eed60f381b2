package gazetteer

import (
	"strings"
	"unicode/utf8"
)

// minAliasRunes alias ngắn hơn 2 chữ dễ khớp nhầm vào chi tiết địa chỉ
const minAliasRunes = 2

// InferKind suy ra kind từ hậu tố tên khi file dữ liệu không ghi rõ.
// parentKind là kind của tỉnh cha, chỉ dùng ở cấp city.
func InferKind(level Level, name string, parentKind Kind) Kind {
	switch level {
	case LevelProvince:
		switch {
		case strings.HasSuffix(name, "自治区"):
			return KindAutonomousRegion
		case strings.HasSuffix(name, "特别行政区"):
			return KindSpecialAdministrativeRegion
		case strings.HasSuffix(name, "市"):
			return KindMunicipality
		default:
			return KindProvince
		}
	case LevelCity:
		switch {
		case parentKind == KindMunicipality:
			return KindMunicipalityCity
		case strings.HasSuffix(name, "自治州"):
			return KindAutonomousPrefecture
		case strings.HasSuffix(name, "盟"):
			return KindLeague
		default:
			return KindPrefectureCity
		}
	case LevelDistrict:
		switch {
		case strings.HasSuffix(name, "自治县"):
			return KindAutonomousCounty
		case strings.HasSuffix(name, "旗"):
			return KindBanner
		case strings.HasSuffix(name, "县"):
			return KindCounty
		case strings.HasSuffix(name, "市"):
			return KindCountyLevelCity
		default:
			return KindDistrict
		}
	}
	return ""
}

var (
	provinceSuffixes = []string{"特别行政区", "省", "市"}
	citySuffixes     = []string{"地区", "市", "盟"}
	districtSuffixes = []string{"新区", "区", "县", "市", "旗"}
)

// DeriveAliases sinh alias bằng cách bỏ hậu tố hành chính. Chỉ bỏ một hậu
// tố, và chỉ khi phần còn lại đủ minAliasRunes. Tên dân tộc tự trị
// (自治区/自治州/自治县/自治旗) không có dạng rút gọn suy ra được.
func DeriveAliases(level Level, kind Kind, name string) []string {
	var suffixes []string
	switch level {
	case LevelProvince:
		if kind == KindAutonomousRegion {
			return nil
		}
		suffixes = provinceSuffixes
	case LevelCity:
		if kind == KindAutonomousPrefecture {
			return nil
		}
		suffixes = citySuffixes
	case LevelDistrict:
		if kind == KindAutonomousCounty || strings.HasSuffix(name, "自治旗") {
			return nil
		}
		suffixes = districtSuffixes
	default:
		return nil
	}

	for _, suffix := range suffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		short := strings.TrimSuffix(name, suffix)
		if utf8.RuneCountInString(short) < minAliasRunes {
			return nil
		}
		return []string{short}
	}
	return nil
}

// mergeAliases nối các danh sách alias, giữ thứ tự, bỏ trùng và bỏ tên gốc.
func mergeAliases(name string, lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{name: {}}
	for _, list := range lists {
		for _, a := range list {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
