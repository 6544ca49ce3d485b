package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes/chart"
	"github.com/malusev998/currency-quotes/metrics"
	"github.com/malusev998/currency-quotes/services"
)

func run(config *Config) *cobra.Command {
	var (
		serveAfter bool
		addr       string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Collect the business day history, write every sink and notify",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := config.app

			notifier, err := config.Builder.Notifier(app)
			if err != nil {
				return err
			}

			recorder := metrics.New()
			push := func() {
				if err := recorder.Push(context.WithoutCancel(ctx), app.Metrics.PushgatewayURL, app.Metrics.Job); err != nil {
					zap.L().Warn("metrics push failed", zap.Error(err))
				}
			}

			sinks, err := config.Builder.Sinks(ctx, app)
			if err != nil {
				notifier.NotifyFailure(context.WithoutCancel(ctx), err)
				recorder.RunFinished(false)
				push()

				return err
			}

			items := make([]interface{}, 0, len(sinks))
			for _, s := range sinks {
				items = append(items, s)
			}
			defer closeAll(items...)

			service := services.Service{
				Collector: services.Aggregator{
					Fetcher:         config.Builder.Fetcher(app),
					BusinessDays:    app.History.BusinessDays,
					MaxCalendarDays: app.History.MaxCalendarDays,
					Location:        app.History.Location(),
					Metrics:         recorder,
				},
				Sinks:    sinks,
				Notifier: notifier,
				Metrics:  recorder,
			}

			dataset, runErr := service.Run(ctx)
			push()

			if runErr != nil {
				return runErr
			}

			if !serveAfter {
				return nil
			}

			if addr == "" {
				addr = app.Chart.Addr
			}

			return chart.NewServer(dataset).ListenAndServe(ctx, addr)
		},
	}

	runCmd.Flags().BoolVar(&serveAfter, "serve", false, "Serve the chart after a successful run")
	runCmd.Flags().StringVar(&addr, "addr", "", "Chart server address (default from config)")

	return runCmd
}
