package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/rules.yaml
var rulesYAML []byte

// RulesConfig cấu hình làm sạch input, load từ YAML
type RulesConfig struct {
	LabelPrefixes []string          `yaml:"label_prefixes"`
	NoisePatterns map[string]string `yaml:"noise_patterns"`
}

// LoadRulesConfig load rules embed trong binary
func LoadRulesConfig() (*RulesConfig, error) {
	return ParseRulesConfig(rulesYAML)
}

// ParseRulesConfig decode rules từ YAML
func ParseRulesConfig(data []byte) (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return config, nil
}

// compile trả về regex nhãn đầu dòng và danh sách regex nhiễu theo thứ tự tên
func (rc *RulesConfig) compile() (*regexp.Regexp, []*regexp.Regexp, error) {
	var label *regexp.Regexp
	if len(rc.LabelPrefixes) > 0 {
		quoted := make([]string, len(rc.LabelPrefixes))
		for i, p := range rc.LabelPrefixes {
			quoted[i] = regexp.QuoteMeta(p)
		}
		label = regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(quoted, "|") + `)\s*[:：]\s*`)
	}

	names := make([]string, 0, len(rc.NoisePatterns))
	for name := range rc.NoisePatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	noise := make([]*regexp.Regexp, 0, len(names))
	for _, name := range names {
		re, err := regexp.Compile(rc.NoisePatterns[name])
		if err != nil {
			return nil, nil, fmt.Errorf("noise pattern %q: %w", name, err)
		}
		noise = append(noise, re)
	}
	return label, noise, nil
}
