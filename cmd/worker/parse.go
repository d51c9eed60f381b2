package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/normalizer"
	"github.com/cn-address-parser/internal/parser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	parseInput   string
	parseOutput  string
	parseWorkers int
	parseClean   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse file địa chỉ ra NDJSON",
	Long:  "Đọc mỗi dòng một địa chỉ từ --input (hoặc stdin), ghi một object JSON mỗi dòng ra --output (hoặc stdout) theo đúng thứ tự input.",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseInput, "input", "i", "", "file input, bỏ trống đọc stdin")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "file output, bỏ trống ghi stdout")
	parseCmd.Flags().IntVarP(&parseWorkers, "workers", "w", 0, "số goroutine, 0 dùng batch.workers trong config")
	parseCmd.Flags().BoolVar(&parseClean, "clean", false, "bỏ nhãn, số điện thoại và mã bưu chính trước khi parse")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, logger, p, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	workers := parseWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	in := io.Reader(os.Stdin)
	if parseInput != "" {
		f, err := os.Open(parseInput)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out := io.Writer(os.Stdout)
	if parseOutput != "" {
		f, err := os.Create(parseOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	start := time.Now()
	n, err := parseStream(cmd.Context(), p, in, out, workers, parseClean)
	if err != nil {
		return err
	}
	logger.Info("Đã parse xong",
		zap.Int("addresses", n),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// parseStream đọc toàn bộ dòng, parse song song và ghi NDJSON theo thứ tự input.
// Dòng rỗng vẫn sinh một kết quả rỗng để giữ tương ứng từng dòng.
func parseStream(ctx context.Context, p *parser.AddressParser, r io.Reader, w io.Writer, workers int, clean bool) (int, error) {
	lines, err := readLines(r)
	if err != nil {
		return 0, err
	}

	results := make([]models.ParsedAddress, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if clean {
				line = normalizer.CleanInput(line)
			}
			results[i] = p.Parse(line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range results {
		if err := enc.Encode(results[i]); err != nil {
			return 0, fmt.Errorf("ghi dòng %d: %w", i+1, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(results), nil
}

// readLines đọc từng dòng, không giới hạn độ dài dòng. Dòng cuối có thể
// không có '\n'.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("đọc input dòng %d: %w", len(lines)+1, err)
		}
	}
}
