package gazetteer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataset được wrap bởi mọi DatasetError
var ErrInvalidDataset = errors.New("invalid division dataset")

// DatasetError mô tả record làm dataset không nhất quán
type DatasetError struct {
	Level  Level
	Name   string
	Reason string
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("gazetteer: %s %q: %s", e.Level, e.Name, e.Reason)
}

func (e *DatasetError) Unwrap() error { return ErrInvalidDataset }

// Dataset bảng đơn vị hành chính đã resolve quan hệ cha con. ID của mỗi đơn
// vị chính là vị trí của nó trong slice tương ứng, theo thứ tự khai báo.
type Dataset struct {
	Version   string
	Provinces []Province
	Cities    []City
	Districts []District
}

// NewDataset build Dataset từ danh sách record. Thứ tự khai báo trong mỗi cấp
// được giữ nguyên và quyết định thứ tự ưu tiên khi alias trùng nhau.
func NewDataset(records []Record) (*Dataset, error) {
	ds := &Dataset{}
	provinceByName := make(map[string]int)
	cityByPath := make(map[[2]string]int)
	districtSeen := make(map[string]struct{})

	// tỉnh trước, rồi thành phố, rồi quận huyện: record con được khai báo
	// trước cha vẫn resolve được
	for _, level := range []Level{LevelProvince, LevelCity, LevelDistrict} {
		for _, rec := range records {
			if !rec.Level.IsValid() {
				return nil, &DatasetError{Level: rec.Level, Name: rec.Name, Reason: "unknown level"}
			}
			if rec.Level != level {
				continue
			}
			name := strings.TrimSpace(rec.Name)
			if name == "" {
				return nil, &DatasetError{Level: level, Name: rec.Name, Reason: "empty name"}
			}
			if !rec.Kind.ValidFor(level) {
				return nil, &DatasetError{Level: level, Name: name, Reason: fmt.Sprintf("unknown kind %q", rec.Kind)}
			}
			aliases := cleanAliases(name, rec.Aliases)

			switch level {
			case LevelProvince:
				if _, dup := provinceByName[name]; dup {
					return nil, &DatasetError{Level: level, Name: name, Reason: "duplicate province name"}
				}
				id := len(ds.Provinces)
				provinceByName[name] = id
				ds.Provinces = append(ds.Provinces, Province{ID: id, Name: name, Aliases: aliases, Kind: rec.Kind})

			case LevelCity:
				pid, ok := provinceByName[rec.Province]
				if !ok {
					return nil, &DatasetError{Level: level, Name: name, Reason: fmt.Sprintf("unknown province %q", rec.Province)}
				}
				key := [2]string{rec.Province, name}
				if _, dup := cityByPath[key]; dup {
					return nil, &DatasetError{Level: level, Name: name, Reason: "duplicate city name in province " + rec.Province}
				}
				id := len(ds.Cities)
				cityByPath[key] = id
				ds.Cities = append(ds.Cities, City{ID: id, ProvinceID: pid, Name: name, Aliases: aliases, Kind: rec.Kind})

			case LevelDistrict:
				cid, ok := cityByPath[[2]string{rec.Province, rec.City}]
				if !ok {
					return nil, &DatasetError{Level: level, Name: name, Reason: fmt.Sprintf("unknown city %q in province %q", rec.City, rec.Province)}
				}
				key := rec.Province + "/" + rec.City + "/" + name
				if _, dup := districtSeen[key]; dup {
					return nil, &DatasetError{Level: level, Name: name, Reason: "duplicate district name in city " + rec.City}
				}
				districtSeen[key] = struct{}{}
				ds.Districts = append(ds.Districts, District{ID: len(ds.Districts), CityID: cid, Name: name, Aliases: aliases, Kind: rec.Kind})
			}
		}
	}

	if err := ds.checkMunicipalities(); err != nil {
		return nil, err
	}
	return ds, nil
}

// checkMunicipalities: mỗi municipality có đúng một city cùng tên, kind
// municipality_city; ngược lại municipality_city chỉ nằm dưới municipality.
func (ds *Dataset) checkMunicipalities() error {
	cities := make([][]int, len(ds.Provinces))
	for _, c := range ds.Cities {
		cities[c.ProvinceID] = append(cities[c.ProvinceID], c.ID)
		if c.Kind == KindMunicipalityCity && ds.Provinces[c.ProvinceID].Kind != KindMunicipality {
			return &DatasetError{Level: LevelCity, Name: c.Name, Reason: "municipality city outside a municipality"}
		}
	}
	for _, p := range ds.Provinces {
		if p.Kind != KindMunicipality {
			continue
		}
		if len(cities[p.ID]) != 1 {
			return &DatasetError{Level: LevelProvince, Name: p.Name, Reason: fmt.Sprintf("municipality must have exactly one city, got %d", len(cities[p.ID]))}
		}
		c := ds.Cities[cities[p.ID][0]]
		if c.Name != p.Name || c.Kind != KindMunicipalityCity {
			return &DatasetError{Level: LevelCity, Name: c.Name, Reason: "municipality city must share the province name and have kind municipality_city"}
		}
	}
	return nil
}

func cleanAliases(name string, aliases []string) []string {
	if len(aliases) == 0 {
		return nil
	}
	out := make([]string, 0, len(aliases))
	seen := map[string]struct{}{name: {}}
	for _, a := range aliases {
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
	if len(out) == 0 {
		return nil
	}
	return out
}

// Counts trả về số đơn vị theo cấp
func (ds *Dataset) Counts() Counts {
	return Counts{Provinces: len(ds.Provinces), Cities: len(ds.Cities), Districts: len(ds.Districts)}
}

// Records chuyển Dataset ngược về danh sách record, theo thứ tự khai báo.
func (ds *Dataset) Records() []Record {
	out := make([]Record, 0, len(ds.Provinces)+len(ds.Cities)+len(ds.Districts))
	for _, p := range ds.Provinces {
		out = append(out, Record{Level: LevelProvince, Name: p.Name, Aliases: p.Aliases, Kind: p.Kind})
	}
	for _, c := range ds.Cities {
		out = append(out, Record{Level: LevelCity, Name: c.Name, Aliases: c.Aliases, Kind: c.Kind,
			Province: ds.Provinces[c.ProvinceID].Name})
	}
	for _, d := range ds.Districts {
		c := ds.Cities[d.CityID]
		out = append(out, Record{Level: LevelDistrict, Name: d.Name, Aliases: d.Aliases, Kind: d.Kind,
			Province: ds.Provinces[c.ProvinceID].Name, City: c.Name})
	}
	return out
}
