package main

import (
	"fmt"

	"github.com/cn-address-parser/internal/parser"
	"github.com/spf13/cobra"
)

var normalizePolicy string

var normalizeCmd = &cobra.Command{
	Use:   "normalize <province> <city> [district]",
	Short: "Chuẩn hoá bộ ba tỉnh / thành phố / quận",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizePolicy, "policy", "", "strict | verbatim, bỏ trống dùng parser.normalize_policy")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	_, logger, p, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if normalizePolicy != "" {
		policy, ok := parser.ParseNormalizePolicy(normalizePolicy)
		if !ok {
			return fmt.Errorf("policy không hợp lệ: %q", normalizePolicy)
		}
		p = p.WithPolicy(policy)
	}

	district := ""
	if len(args) == 3 {
		district = args[2]
	}
	normalized, err := p.Normalize(args[0], args[1], district)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), normalized)
	return nil
}
