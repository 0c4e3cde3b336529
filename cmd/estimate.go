package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/asset-cli/internal/estimate"
	"github.com/sells-group/asset-cli/internal/model"
)

var (
	estimateInput   string
	estimatePrice   float64
	estimateAsOf    string
	estimateJSON    bool
	estimateProject int
)

// estimateFile is the input document of the estimate command. JSON input is
// accepted as well since it is valid YAML.
type estimateFile struct {
	Asset         model.AssetProfile       `yaml:"asset"`
	Production    []model.ProductionSample `yaml:"production"`
	PriceOverride *float64                 `yaml:"price_override"`
	AsOf          *time.Time               `yaml:"as_of"`
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate financials and risk for one asset from an input file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cfg)
		if err != nil {
			return err
		}

		in, err := readEstimateFile(estimateInput)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("price") {
			in.PriceOverride = &estimatePrice
		}
		asOf, err := parseAsOf(estimateAsOf, in.AsOf)
		if err != nil {
			return err
		}

		return runEstimate(cmd.OutOrStdout(), eng.Aggregator, in, asOf, estimateJSON, estimateProject)
	},
}

func readEstimateFile(path string) (*estimateFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open input %s", path)
	}
	defer f.Close() //nolint:errcheck

	var in estimateFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return nil, eris.Wrapf(err, "decode input %s", path)
	}
	return &in, nil
}

func runEstimate(w io.Writer, agg *estimate.Aggregator, in *estimateFile, asOf time.Time, asJSON bool, project int) error {
	history := slices.Clone(in.Production)
	slices.SortStableFunc(history, func(a, b model.ProductionSample) int {
		return b.Month.Compare(a.Month)
	})

	res, err := agg.CalculateAll(in.Asset, history, asOf, estimate.Options{PriceOverride: in.PriceOverride})
	if err != nil {
		return eris.Wrap(err, "estimate")
	}

	var curve []float64
	if project > 0 {
		volume := 0.0
		if v := history[0].Volume(res.Estimate.Commodity); v != nil {
			volume = *v
		}
		decline := 0.0
		if in.Asset.DeclineRate != nil {
			decline = *in.Asset.DeclineRate
		}
		curve = estimate.DeclineCurve(volume, decline, project)
	}

	if asJSON {
		out := struct {
			*estimate.Assessment
			Projection []float64 `json:"projection,omitempty"`
		}{res, curve}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(out), "encode estimate")
	}

	e := res.Estimate
	fmt.Fprintf(w, "Commodity:        %s @ %s/unit\n", e.Commodity, estimate.FormatMoney(e.PriceUsed))
	fmt.Fprintf(w, "Monthly revenue:  %s\n", estimate.FormatMoney(e.MonthlyRevenue))
	fmt.Fprintf(w, "Annual revenue:   %s\n", estimate.FormatMoney(e.AnnualRevenue))
	fmt.Fprintf(w, "Operating cost:   %s\n", estimate.FormatMoney(e.EstimatedOperatingCost))
	fmt.Fprintf(w, "Net cash flow:    %s\n", estimate.FormatMoney(e.EstimatedNetCashFlow))
	if e.BreakevenPrice != nil {
		fmt.Fprintf(w, "Breakeven price:  %s/unit\n", estimate.FormatMoney(*e.BreakevenPrice))
	}
	if e.PriceSensitivity != nil {
		fmt.Fprintf(w, "Sensitivity:      %s per $1 price move\n", estimate.FormatMoney(*e.PriceSensitivity))
	}
	writeRisk(w, res.Risk)
	if len(curve) > 0 {
		fmt.Fprintf(w, "Projected volume: %.0f over %d months (illustrative, b=%.1f)\n",
			estimate.CumulativeVolume(curve), len(curve), estimate.DeclineExponent)
	}
	return nil
}

func writeRisk(w io.Writer, r model.RiskScoreResult) {
	fmt.Fprintf(w, "Risk score:       %d/100 (decline %d, compliance %d, age %d, water cut %d)\n",
		r.TotalScore, r.Factors.DeclineRate, r.Factors.Compliance, r.Factors.AssetAge, r.Factors.WaterCut)
}

// parseAsOf resolves the reference time: flag, then input file, then now.
func parseAsOf(flag string, fromFile *time.Time) (time.Time, error) {
	if flag != "" {
		t, err := parseDate(flag)
		if err != nil {
			return time.Time{}, eris.Wrap(err, "parse --as-of")
		}
		return t, nil
	}
	if fromFile != nil {
		return fromFile.UTC(), nil
	}
	return time.Now().UTC(), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func init() {
	estimateCmd.Flags().StringVar(&estimateInput, "input", "", "YAML or JSON input file (required)")
	estimateCmd.Flags().Float64Var(&estimatePrice, "price", 0, "price override per unit")
	estimateCmd.Flags().StringVar(&estimateAsOf, "as-of", "", "reference date (default: input as_of or now)")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "print JSON")
	estimateCmd.Flags().IntVar(&estimateProject, "project", 0, "months of illustrative decline projection")
	_ = estimateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(estimateCmd)
}
