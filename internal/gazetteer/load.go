package gazetteer

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/divisions.yaml
var embeddedDivisions []byte

type yamlFile struct {
	Version   string         `yaml:"version"`
	Provinces []yamlProvince `yaml:"provinces"`
}

type yamlProvince struct {
	Name    string     `yaml:"name"`
	Kind    Kind       `yaml:"kind"`
	Aliases []string   `yaml:"aliases"`
	Cities  []yamlCity `yaml:"cities"`
}

type yamlCity struct {
	Name      string         `yaml:"name"`
	Kind      Kind           `yaml:"kind"`
	Aliases   []string       `yaml:"aliases"`
	Districts []yamlDistrict `yaml:"districts"`
}

// yamlDistrict chấp nhận chuỗi trơn ("南山区") hoặc object có alias/kind.
type yamlDistrict struct {
	Name    string   `yaml:"name"`
	Kind    Kind     `yaml:"kind"`
	Aliases []string `yaml:"aliases"`
}

func (d *yamlDistrict) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.Name = value.Value
		return nil
	}
	type plain yamlDistrict
	return value.Decode((*plain)(d))
}

// DecodeRecords đọc file YAML lồng nhau tỉnh → thành phố → quận huyện thành
// danh sách record phẳng. Kind thiếu được suy ra từ hậu tố tên, alias được
// suy ra rồi nối với alias khai báo tường minh; city của municipality thừa
// hưởng alias của tỉnh.
func DecodeRecords(data []byte) (string, []Record, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", nil, fmt.Errorf("decode division yaml: %w", err)
	}

	var records []Record
	for _, p := range file.Provinces {
		pKind := p.Kind
		if pKind == "" {
			pKind = InferKind(LevelProvince, p.Name, "")
		}
		pAliases := mergeAliases(p.Name, DeriveAliases(LevelProvince, pKind, p.Name), p.Aliases)
		records = append(records, Record{Level: LevelProvince, Name: p.Name, Aliases: pAliases, Kind: pKind})

		for _, c := range p.Cities {
			cKind := c.Kind
			if cKind == "" {
				cKind = InferKind(LevelCity, c.Name, pKind)
			}
			var cAliases []string
			if cKind == KindMunicipalityCity {
				cAliases = mergeAliases(c.Name, pAliases, c.Aliases)
			} else {
				cAliases = mergeAliases(c.Name, DeriveAliases(LevelCity, cKind, c.Name), c.Aliases)
			}
			records = append(records, Record{Level: LevelCity, Name: c.Name, Aliases: cAliases, Kind: cKind, Province: p.Name})

			for _, d := range c.Districts {
				dKind := d.Kind
				if dKind == "" {
					dKind = InferKind(LevelDistrict, d.Name, cKind)
				}
				dAliases := mergeAliases(d.Name, DeriveAliases(LevelDistrict, dKind, d.Name), d.Aliases)
				records = append(records, Record{Level: LevelDistrict, Name: d.Name, Aliases: dAliases, Kind: dKind,
					Province: p.Name, City: c.Name})
			}
		}
	}
	return file.Version, records, nil
}

// LoadDataset decode YAML rồi build Dataset
func LoadDataset(data []byte) (*Dataset, error) {
	version, records, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	ds, err := NewDataset(records)
	if err != nil {
		return nil, err
	}
	ds.Version = version
	return ds, nil
}

// LoadFile đọc dataset từ file YAML trên đĩa, thay cho bản embed
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read division file %s: %w", path, err)
	}
	return LoadDataset(data)
}

// Embedded build Dataset từ file divisions.yaml đóng gói trong binary
func Embedded() (*Dataset, error) {
	return LoadDataset(embeddedDivisions)
}
