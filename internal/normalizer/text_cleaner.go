package normalizer

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var reSpaces = regexp.MustCompile(`\s+`)

// TextCleaner làm sạch địa chỉ thô trước khi parse: gộp full-width về
// half-width, bỏ ký tự định dạng vô hình, bỏ nhãn và số điện thoại.
// Không thay đổi tên hành chính, chỉ bỏ phần không thuộc địa chỉ.
type TextCleaner struct {
	label *regexp.Regexp
	noise []*regexp.Regexp
}

// NewTextCleaner tạo cleaner từ rules
func NewTextCleaner(rules *RulesConfig) (*TextCleaner, error) {
	label, noise, err := rules.compile()
	if err != nil {
		return nil, err
	}
	return &TextCleaner{label: label, noise: noise}, nil
}

// fold gộp độ rộng và chuẩn hoá NFC, bỏ các rune Cf (zero-width, BOM)
func fold(s string) string {
	t := transform.Chain(runes.Remove(runes.In(unicode.Cf)), width.Fold, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Clean trả về địa chỉ đã làm sạch
func (tc *TextCleaner) Clean(raw string) string {
	s := fold(raw)
	if tc.label != nil {
		s = tc.label.ReplaceAllString(s, "")
	}
	for _, re := range tc.noise {
		s = re.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

var (
	defaultOnce    sync.Once
	defaultCleaner *TextCleaner
)

// CleanInput dùng rules embed
func CleanInput(raw string) string {
	defaultOnce.Do(func() {
		rules, err := LoadRulesConfig()
		if err == nil {
			defaultCleaner, err = NewTextCleaner(rules)
		}
		if err != nil {
			panic("normalizer: embedded rules: " + err.Error())
		}
	})
	return defaultCleaner.Clean(raw)
}
