package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var assetCmd = &cobra.Command{
	Use:   "asset <id>",
	Short: "Show one stored asset with its estimate outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initService(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		d, err := env.Service.Detail(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "asset detail")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(d), "encode asset")
	},
}

func init() {
	rootCmd.AddCommand(assetCmd)
}
