package services

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
	"github.com/malusev998/currency-quotes/fetchers"
	"github.com/malusev998/currency-quotes/metrics"
)

const (
	DefaultBusinessDays    = 365
	DefaultMaxCalendarDays = 1000
)

var ErrScanLimitReached = errors.New("calendar day limit reached before collecting enough business days")

type state int

const (
	collecting state = iota
	skipWeekend
	collected
	done
	exhausted
)

func (s state) String() string {
	switch s {
	case collecting:
		return "collecting"
	case skipWeekend:
		return "skip-weekend"
	case collected:
		return "collected"
	case done:
		return "done"
	case exhausted:
		return "exhausted"
	}

	return "unknown"
}

// Aggregator walks backward from today, one calendar day at a time, and collects
// one quote table per business day until BusinessDays tables are gathered.
// Days without data are gaps: they are neither retried nor counted.
type Aggregator struct {
	Fetcher         currency.Fetcher
	BusinessDays    int
	MaxCalendarDays int
	Location        *time.Location
	Now             func() time.Time
	Metrics         *metrics.Recorder
}

// Collect returns the dataset newest first. When MaxCalendarDays is scanned
// before the target is met, the partial dataset is returned with ErrScanLimitReached.
func (a Aggregator) Collect(ctx context.Context) (currency.Dataset, error) {
	target := a.BusinessDays
	if target <= 0 {
		target = DefaultBusinessDays
	}

	maxDays := a.MaxCalendarDays
	if maxDays <= 0 {
		maxDays = DefaultMaxCalendarDays
	}

	today := a.today()
	dataset := currency.Dataset{Tables: make([]currency.Table, 0, target)}
	count := 0
	st := collecting

	for offset := 0; st != done; offset++ {
		if offset >= maxDays {
			st = exhausted
			zap.L().Warn("walk exhausted",
				zap.Int("calendar_days", offset),
				zap.Int("collected", count),
				zap.Int("target", target),
			)

			return dataset, eris.Wrapf(ErrScanLimitReached, "%d of %d business days after %d calendar days", count, target, offset)
		}

		date := today.AddDate(0, 0, -offset)
		a.Metrics.Scanned()

		next, err := a.visit(ctx, date, &dataset)
		if err != nil {
			return dataset, err
		}

		st = next
		if st == collected {
			count++
			a.Metrics.Collected()

			if count >= target {
				st = done
			}
		}
	}

	zap.L().Info("history collected",
		zap.Int("business_days", count),
		zap.String("newest", dataset.Tables[0].Key()),
		zap.String("oldest", dataset.Tables[len(dataset.Tables)-1].Key()),
	)

	return dataset, nil
}

// visit processes one calendar day. It returns collecting for a gap.
func (a Aggregator) visit(ctx context.Context, date time.Time, dataset *currency.Dataset) (state, error) {
	key := date.Format(currency.KeyLayout)

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		zap.L().Info("date skipped (weekend)", zap.String("date", key))
		a.Metrics.Skipped(metrics.ReasonWeekend)

		return skipWeekend, nil
	}

	raw, err := a.Fetcher.Fetch(ctx, date)
	if err == nil {
		var table currency.Table
		table, err = fetchers.Normalize(raw, date)
		if err == nil {
			if err := dataset.Append(table); err != nil {
				return collecting, eris.Wrap(err, "aggregator: append")
			}

			zap.L().Debug("table collected", zap.String("date", key), zap.Int("quotes", len(table.Quotes)))

			return collected, nil
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return collecting, eris.Wrap(ctxErr, "aggregator: walk interrupted")
	}

	a.logGap(key, err)

	return collecting, nil
}

func (a Aggregator) logGap(key string, err error) {
	switch {
	case errors.Is(err, fetchers.ErrNotFound):
		a.Metrics.Skipped(metrics.ReasonNotFound)
		zap.L().Warn("no data for date", zap.String("date", key))
	case errors.Is(err, fetchers.ErrColumnMismatch):
		a.Metrics.Skipped(metrics.ReasonColumnMismatch)
		zap.L().Warn("column count mismatch, date ignored", zap.String("date", key), zap.Error(err))
	case errors.Is(err, fetchers.ErrMalformed):
		a.Metrics.Skipped(metrics.ReasonMalformed)
		zap.L().Error("malformed table, date ignored", zap.String("date", key), zap.Error(err))
	default:
		a.Metrics.Skipped(metrics.ReasonFetchError)
		zap.L().Error("fetch failed, date ignored", zap.String("date", key), zap.Error(err))
	}
}

func (a Aggregator) today() time.Time {
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	t := now().In(loc)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
