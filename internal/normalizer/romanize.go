package normalizer

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Romanize phiên âm tên hành chính sang ASCII chữ thường, dùng cho field
// tìm kiếm không dấu (vd. "广东省" -> "guang dong sheng")
func Romanize(name string) string {
	s := strings.ToLower(unidecode.Unidecode(name))
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
