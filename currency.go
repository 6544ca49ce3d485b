package currency

import (
	"context"
	"time"
)

type (
	// Fetcher downloads the raw quote table published for a single date.
	Fetcher interface {
		Fetch(ctx context.Context, date time.Time) (RawTable, error)
	}

	// Sink persists or publishes a collected dataset.
	Sink interface {
		Name() string
		Write(ctx context.Context, dataset Dataset) error
	}

	// Notifier reports the outcome of a pipeline run.
	Notifier interface {
		NotifySuccess(ctx context.Context)
		NotifyFailure(ctx context.Context, cause error)
	}
)
