package main

import (
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/asset-cli/internal/assets"
	"github.com/sells-group/asset-cli/internal/export"
)

var (
	batchLimit       int
	batchIDs         []string
	batchFormat      string
	batchOut         string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Estimate every stored asset (or a list) and print a portfolio report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := validateBatchFormat(batchFormat, batchOut); err != nil {
			return err
		}

		env, err := initService(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		ids := batchIDs
		if len(ids) == 0 {
			ids, err = env.Store.ListAssetIDs(ctx, batchLimit)
			if err != nil {
				return eris.Wrap(err, "list assets")
			}
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrency
		}

		start := time.Now()
		items := env.Service.EstimatePortfolio(ctx, ids, concurrency)
		sum := assets.Summarize(items)

		zap.L().Info("batch complete",
			zap.Int("assets", sum.Assets),
			zap.Int("errors", sum.Errors),
			zap.Float64("total_monthly_revenue", sum.TotalMonthlyRevenue),
			zap.Duration("elapsed", time.Since(start)),
		)

		return writeBatch(cmd.OutOrStdout(), batchFormat, batchOut, items, sum)
	},
}

func validateBatchFormat(format, out string) error {
	switch format {
	case "table", "csv", "json":
		return nil
	case "xlsx":
		if out == "" {
			return eris.New("--out is required for xlsx output")
		}
		return nil
	default:
		return eris.Errorf("unknown format %q (want table, csv, json or xlsx)", format)
	}
}

func writeBatch(w io.Writer, format, out string, items []assets.Item, sum assets.Summary) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, items)
	case "xlsx":
		return export.WriteXLSX(out, items, sum)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(struct {
			Items   []assets.Item  `json:"items"`
			Summary assets.Summary `json:"summary"`
		}{items, sum}), "encode batch")
	default:
		return export.WriteTable(w, items, sum)
	}
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max assets to process when --ids is not set")
	batchCmd.Flags().StringSliceVar(&batchIDs, "ids", nil, "asset ids (default: all stored assets up to --limit)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "table", "output format: table, csv, json or xlsx")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output path for xlsx")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent assets (default from config)")
	rootCmd.AddCommand(batchCmd)
}
