package query

import (
	"context"
	"fmt"
	"regexp"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// RepairTable runs MSCK REPAIR TABLE so partitions written straight to S3
// become visible to Athena.
func (r *Runner) RepairTable(ctx context.Context, table string, opt RunOptions) (*Result, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	opt.SkipResults = true
	res, err := r.Run(ctx, fmt.Sprintf("MSCK REPAIR TABLE `%s`", table), opt)
	if err != nil {
		return nil, fmt.Errorf("repair table %s: %w", table, err)
	}
	return res, nil
}
