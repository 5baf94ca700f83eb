package main

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/climateledger/disclosure-export/internal/resilience"
)

var batchCmd = &cobra.Command{
	Use:   "batch <company-id-file>",
	Short: "Export workbooks for every company listed in a file",
	Long:  "Reads company IDs (one per line, '#' comments allowed) and exports each workbook concurrently. A single company's failure does not stop the batch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ids, err := readCompanyIDs(args[0])
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return eris.New("batch: no company IDs in input file")
		}

		env, err := initExport(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrentCompanies)

		retry := resilience.DefaultRetryConfig()
		retry.OnRetry = resilience.RetryLogger("batch export")
		for _, id := range ids {
			g.Go(func() error {
				err := resilience.Do(gctx, retry, func(ctx context.Context) error {
					_, rerr := runExport(ctx, env, id)
					return rerr
				})
				if err != nil {
					// Per-company isolation: log and count, keep going.
					failed.Add(1)
					zap.L().Error("batch: company export failed",
						zap.String("company_id", id),
						zap.Error(err),
					)
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch: complete",
			zap.Int("companies", len(ids)),
			zap.Int64("failed", failed.Load()),
		)
		if n := failed.Load(); n > 0 {
			return eris.Errorf("batch: %d of %d exports failed", n, len(ids))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func readCompanyIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, eris.Wrap(scanner.Err(), "batch: read input")
}
