package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/asset-cli/internal/ingest"
	"github.com/sells-group/asset-cli/internal/store"
)

var (
	importRegister   string
	importProduction string
	importSheet      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an asset register (YAML) and production history (CSV or XLSX)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importRegister == "" && importProduction == "" {
			return eris.New("at least one of --register or --production is required")
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if importRegister != "" {
			if err := importRegisterFile(ctx, st, importRegister); err != nil {
				return err
			}
		}
		if importProduction != "" {
			if err := importProductionFile(ctx, st, importProduction, importSheet); err != nil {
				return err
			}
		}
		return nil
	},
}

func importRegisterFile(ctx context.Context, st store.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "open register %s", path)
	}
	defer f.Close() //nolint:errcheck

	reg, err := ingest.ReadRegister(f)
	if err != nil {
		return err
	}
	for _, op := range reg.Operators {
		if err := st.UpsertOperator(ctx, op); err != nil {
			return err
		}
	}
	for _, a := range reg.Assets {
		if err := st.UpsertAsset(ctx, a); err != nil {
			return err
		}
	}

	zap.L().Info("register imported",
		zap.String("file", path),
		zap.Int("operators", len(reg.Operators)),
		zap.Int("assets", len(reg.Assets)),
	)
	return nil
}

func readProductionFile(ctx context.Context, path, sheet string) (ingest.Production, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ingest.ReadProductionXLSX(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open production %s", path)
	}
	defer f.Close() //nolint:errcheck
	return ingest.ReadProductionCSV(ctx, f)
}

func importProductionFile(ctx context.Context, st store.Store, path, sheet string) error {
	prod, err := readProductionFile(ctx, path, sheet)
	if err != nil {
		return err
	}

	var total int64
	for _, id := range prod.AssetIDs() {
		n, err := st.UpsertProduction(ctx, id, prod[id])
		if err != nil {
			return err
		}
		total += n
	}

	zap.L().Info("production imported",
		zap.String("file", path),
		zap.Int("assets", len(prod)),
		zap.Int("rows", prod.Rows()),
		zap.Int64("upserted", total),
	)
	return nil
}

func init() {
	importCmd.Flags().StringVar(&importRegister, "register", "", "asset register YAML file")
	importCmd.Flags().StringVar(&importProduction, "production", "", "production CSV or XLSX file")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.AddCommand(importCmd)
}
