package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/asset-cli/internal/scorer"
)

var (
	riskDecline  float64
	riskFlags    []string
	riskSpudDate string
	riskWaterCut float64
	riskAsOf     string
	riskJSON     bool
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Score asset risk from decline, compliance flags, age and water cut",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := newEngine(cfg)
		if err != nil {
			return err
		}

		in, err := riskInputFromFlags(cmd)
		if err != nil {
			return err
		}
		asOf, err := parseAsOf(riskAsOf, nil)
		if err != nil {
			return err
		}

		res := eng.Scorer.Score(in, asOf)
		if riskJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(res), "encode risk")
		}
		writeRisk(cmd.OutOrStdout(), res)
		return nil
	},
}

// riskInputFromFlags leaves unset flags nil so they contribute zero.
func riskInputFromFlags(cmd *cobra.Command) (scorer.RiskInput, error) {
	var in scorer.RiskInput
	if cmd.Flags().Changed("decline-rate") {
		v := riskDecline
		in.DeclineRate = &v
	}
	if cmd.Flags().Changed("water-cut") {
		v := riskWaterCut
		in.WaterCutPct = &v
	}
	if riskSpudDate != "" {
		t, err := parseDate(riskSpudDate)
		if err != nil {
			return in, eris.Wrap(err, "parse --spud-date")
		}
		in.SpudDate = &t
	}
	in.ComplianceFlags = riskFlags
	return in, nil
}

func init() {
	riskCmd.Flags().Float64Var(&riskDecline, "decline-rate", 0, "annual decline as a fraction (0.25 = 25%)")
	riskCmd.Flags().StringSliceVar(&riskFlags, "flag", nil, "compliance flag (repeatable)")
	riskCmd.Flags().StringVar(&riskSpudDate, "spud-date", "", "first production date (YYYY-MM-DD)")
	riskCmd.Flags().Float64Var(&riskWaterCut, "water-cut", 0, "water cut percent of latest month")
	riskCmd.Flags().StringVar(&riskAsOf, "as-of", "", "reference date (default now)")
	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "print JSON")
	rootCmd.AddCommand(riskCmd)
}
