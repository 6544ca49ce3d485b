package fetchers

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"github.com/malusev998/currency-quotes"
)

// BCBFetcher downloads the daily closing quote files of the Banco Central do Brasil.
type BCBFetcher struct {
	url       string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// URL returns the download address of the table published for date.
func (b *BCBFetcher) URL(date time.Time) string {
	return b.url + "/" + date.Format(currency.KeyLayout) + ".csv"
}

// Fetch downloads and parses the table for date. A missing file yields ErrNotFound.
func (b *BCBFetcher) Fetch(ctx context.Context, date time.Time) (currency.RawTable, error) {
	url := b.URL(date)

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "bcb: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "bcb: create request")
	}

	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "text/csv, text/plain")

	res, err := b.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "bcb: get %s", url)
	}
	defer res.Body.Close() //nolint:errcheck

	if err := handleHTTPStatusCodeError(res); err != nil {
		return nil, eris.Wrapf(err, "bcb: get %s: status %d", url, res.StatusCode)
	}

	table, err := ParseTable(res.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "bcb: parse %s", url)
	}

	return table, nil
}

// ParseTable reads a Latin-1 encoded, semicolon separated table.
// The files have no header row, so the first line is a quote like any other.
// All records must have the same number of fields.
func ParseTable(r io.Reader) (currency.RawTable, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = fieldSeparator
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(ErrMalformed, "%v", err)
	}

	if len(records) == 0 {
		return nil, eris.Wrap(ErrMalformed, "empty table")
	}

	return records, nil
}
