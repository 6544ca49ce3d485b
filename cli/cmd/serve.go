package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes/chart"
)

func serve(config *Config) *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart of the dataset stored in the warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := config.app

			warehouse, err := config.Builder.Warehouse(app)
			if err != nil {
				return err
			}
			defer closeAll(warehouse)

			dataset, err := warehouse.Load(ctx, app.Warehouse.Name)
			if err != nil {
				return err
			}

			zap.L().Info("dataset loaded", zap.String("path", warehouse.Path(app.Warehouse.Name)), zap.Int("tables", dataset.Len()))

			if addr == "" {
				addr = app.Chart.Addr
			}

			return chart.NewServer(dataset).ListenAndServe(ctx, addr)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Chart server address (default from config)")

	return serveCmd
}
