package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GoldenTest một file trong testdata/golden
type GoldenTest struct {
	Raw    string `json:"raw"`
	Expect struct {
		Province string `json:"province"`
		City     string `json:"city"`
		District string `json:"district"`
		Detail   string `json:"detail"`
	} `json:"expect"`
}

// TestGoldenFiles chạy tất cả golden tests
func TestGoldenFiles(t *testing.T) {
	goldenDir := filepath.Join("testdata", "golden")
	files, err := os.ReadDir(goldenDir)
	require.NoError(t, err, "Không thể đọc thư mục golden")

	p := newTestParser(t)
	count := 0
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		count++

		t.Run(file.Name(), func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(goldenDir, file.Name()))
			require.NoError(t, err)

			var test GoldenTest
			require.NoError(t, json.Unmarshal(data, &test), "Không thể parse JSON từ %s", file.Name())

			got := p.Parse(test.Raw)
			assert.Equal(t, test.Expect.Province, got.Province)
			assert.Equal(t, test.Expect.City, got.City)
			assert.Equal(t, test.Expect.District, got.District)
			assert.Equal(t, test.Expect.Detail, got.Detail)
		})
	}
	assert.NotZero(t, count)
}
