package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/asset-cli/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the estimate HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		env, err := initService(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := api.NewServer(cfg.Server, api.Deps{
			Service:    env.Service,
			Revenue:    env.Engine.Revenue,
			Aggregator: env.Engine.Aggregator,
			Scorer:     env.Engine.Scorer,
		})
		return srv.ListenAndServe(ctx, servePort)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
