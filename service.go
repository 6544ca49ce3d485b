package currency

import "context"

type (
	// Collector builds the historical dataset.
	Collector interface {
		Collect(ctx context.Context) (Dataset, error)
	}

	// Runner executes a whole pipeline run.
	Runner interface {
		Run(ctx context.Context) (Dataset, error)
	}
)
