package parser

import (
	"fmt"
	"sync"

	"github.com/cn-address-parser/app/models"
)

var (
	defaultOnce   sync.Once
	defaultParser *AddressParser
)

// Default parser dùng chung cho cả process, build một lần từ dataset embed.
// Panic nếu dữ liệu embed không nhất quán, đây là lỗi lúc build binary.
func Default() *AddressParser {
	defaultOnce.Do(func() {
		p, err := New()
		if err != nil {
			panic(fmt.Sprintf("parser: build default parser: %v", err))
		}
		defaultParser = p
	})
	return defaultParser
}

// Parse dùng Default()
func Parse(text string) models.ParsedAddress {
	return Default().Parse(text)
}

// Normalize dùng Default()
func Normalize(province, city, district string) (string, error) {
	return Default().Normalize(province, city, district)
}
