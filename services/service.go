package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
	"github.com/malusev998/currency-quotes/metrics"
)

// Service runs one full collection: collect the history, hand it to every
// sink in order, then report the outcome.
type Service struct {
	Collector currency.Collector
	Sinks     []currency.Sink
	Notifier  currency.Notifier
	Metrics   *metrics.Recorder
}

type noopNotifier struct{}

func (noopNotifier) NotifySuccess(context.Context)        {}
func (noopNotifier) NotifyFailure(context.Context, error) {}

// Run stops at the first failing step. On failure a high priority report is
// sent and the same error is returned to the caller.
func (s Service) Run(ctx context.Context) (currency.Dataset, error) {
	notifier := s.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	dataset, err := s.run(ctx)
	s.Metrics.RunFinished(err == nil)

	// Reports go out even when the run was cancelled.
	notifyCtx := context.WithoutCancel(ctx)

	if err != nil {
		zap.L().Error("run failed", zap.Error(err))
		notifier.NotifyFailure(notifyCtx, err)

		return dataset, err
	}

	zap.L().Info("run finished",
		zap.Int("tables", dataset.Len()),
		zap.Int("sinks", len(s.Sinks)),
	)
	notifier.NotifySuccess(notifyCtx)

	return dataset, nil
}

func (s Service) run(ctx context.Context) (currency.Dataset, error) {
	dataset, err := s.Collector.Collect(ctx)
	if err != nil {
		return dataset, eris.Wrap(err, "service: collect")
	}

	for _, sink := range s.Sinks {
		start := time.Now()

		if err := sink.Write(ctx, dataset); err != nil {
			return dataset, eris.Wrapf(err, "service: sink %s", sink.Name())
		}

		elapsed := time.Since(start)
		s.Metrics.ObserveSink(sink.Name(), elapsed)
		zap.L().Info("sink written", zap.String("sink", sink.Name()), zap.Duration("elapsed", elapsed))
	}

	return dataset, nil
}
