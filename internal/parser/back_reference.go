package parser

import (
	"fmt"

	"github.com/cn-address-parser/internal/gazetteer"
)

// BackReferenceIndex tra ngược cha theo id: city → province, district → city,
// và municipality → city cặp đôi của nó.
type BackReferenceIndex struct {
	cityProvince     []int
	districtCity     []int
	municipalityCity map[int]int
	provinceCities   [][]int
	cityDistricts    [][]int
}

// NewBackReferenceIndex kiểm tra id cha nằm trong phạm vi rồi build index.
// Dataset dựng tay không qua gazetteer.NewDataset vẫn bị chặn ở đây.
func NewBackReferenceIndex(ds *gazetteer.Dataset) (*BackReferenceIndex, error) {
	b := &BackReferenceIndex{
		cityProvince:     make([]int, len(ds.Cities)),
		districtCity:     make([]int, len(ds.Districts)),
		municipalityCity: make(map[int]int),
		provinceCities:   make([][]int, len(ds.Provinces)),
		cityDistricts:    make([][]int, len(ds.Cities)),
	}

	for i, p := range ds.Provinces {
		if p.ID != i {
			return nil, invalid(gazetteer.LevelProvince, p.Name, fmt.Sprintf("id %d at position %d", p.ID, i))
		}
	}
	for i, c := range ds.Cities {
		if c.ID != i {
			return nil, invalid(gazetteer.LevelCity, c.Name, fmt.Sprintf("id %d at position %d", c.ID, i))
		}
		if c.ProvinceID < 0 || c.ProvinceID >= len(ds.Provinces) {
			return nil, invalid(gazetteer.LevelCity, c.Name, fmt.Sprintf("dangling province id %d", c.ProvinceID))
		}
		b.cityProvince[i] = c.ProvinceID
		b.provinceCities[c.ProvinceID] = append(b.provinceCities[c.ProvinceID], i)
	}
	for i, d := range ds.Districts {
		if d.ID != i {
			return nil, invalid(gazetteer.LevelDistrict, d.Name, fmt.Sprintf("id %d at position %d", d.ID, i))
		}
		if d.CityID < 0 || d.CityID >= len(ds.Cities) {
			return nil, invalid(gazetteer.LevelDistrict, d.Name, fmt.Sprintf("dangling city id %d", d.CityID))
		}
		b.districtCity[i] = d.CityID
		b.cityDistricts[d.CityID] = append(b.cityDistricts[d.CityID], i)
	}

	for _, p := range ds.Provinces {
		if p.Kind != gazetteer.KindMunicipality {
			continue
		}
		cities := b.provinceCities[p.ID]
		if len(cities) != 1 || ds.Cities[cities[0]].Kind != gazetteer.KindMunicipalityCity {
			return nil, invalid(gazetteer.LevelProvince, p.Name, "municipality without a single municipality city")
		}
		b.municipalityCity[p.ID] = cities[0]
	}
	return b, nil
}

func invalid(level gazetteer.Level, name, reason string) error {
	return &gazetteer.DatasetError{Level: level, Name: name, Reason: reason}
}

// ProvinceOfCity tỉnh chứa city
func (b *BackReferenceIndex) ProvinceOfCity(cityID int) int { return b.cityProvince[cityID] }

// CityOfDistrict thành phố chứa district
func (b *BackReferenceIndex) CityOfDistrict(districtID int) int { return b.districtCity[districtID] }

// ProvinceOfDistrict tỉnh chứa district, qua hai bước
func (b *BackReferenceIndex) ProvinceOfDistrict(districtID int) int {
	return b.cityProvince[b.districtCity[districtID]]
}

// MunicipalityCity city cặp đôi của một municipality
func (b *BackReferenceIndex) MunicipalityCity(provinceID int) (int, bool) {
	id, ok := b.municipalityCity[provinceID]
	return id, ok
}

// CitiesOf các city của tỉnh theo thứ tự khai báo
func (b *BackReferenceIndex) CitiesOf(provinceID int) []int { return b.provinceCities[provinceID] }

// DistrictsOf các district của city theo thứ tự khai báo
func (b *BackReferenceIndex) DistrictsOf(cityID int) []int { return b.cityDistricts[cityID] }
