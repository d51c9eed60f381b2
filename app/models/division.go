package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/cn-address-parser/internal/gazetteer"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Division đơn vị hành chính ở dạng document để export sang MongoDB và
// Meilisearch.
type Division struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DivisionID     string             `bson:"division_id" json:"division_id"`                 // "p3", "c12", "d240"
	ParentID       *string            `bson:"parent_id,omitempty" json:"parent_id,omitempty"` // ID của đơn vị cha
	Level          int                `bson:"level" json:"level"`                             // 1=province, 2=city, 3=district
	Name           string             `bson:"name" json:"name"`
	NameASCII      string             `bson:"name_ascii" json:"name_ascii"` // phiên âm không dấu, lowercase
	Kind           string             `bson:"kind" json:"kind"`
	Aliases        []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`
	Path           []string           `bson:"path" json:"path"` // tên đầy đủ từ tỉnh xuống cha
	DatasetVersion string             `bson:"dataset_version" json:"dataset_version"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

var divisionPrefix = map[gazetteer.Level]string{
	gazetteer.LevelProvince: "p",
	gazetteer.LevelCity:     "c",
	gazetteer.LevelDistrict: "d",
}

// DivisionID sinh id ổn định theo cấp và vị trí trong dataset
func DivisionID(level gazetteer.Level, id int) string {
	return divisionPrefix[level] + strconv.Itoa(id)
}

// IsValidLevel kiểm tra level có hợp lệ không
func (d *Division) IsValidLevel() bool {
	return gazetteer.Level(d.Level).IsValid()
}

// IsValidKind kiểm tra kind có hợp lệ với level không
func (d *Division) IsValidKind() bool {
	return gazetteer.Kind(d.Kind).ValidFor(gazetteer.Level(d.Level))
}

// GetFullPath trả về đường dẫn đầy đủ từ gốc
func (d *Division) GetFullPath() string {
	if len(d.Path) == 0 {
		return d.Name
	}
	return strings.Join(d.Path, " > ") + " > " + d.Name
}
