package fetchers

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/malusev998/currency-quotes"
)

// Normalize validates raw against the fixed schema and builds the quote table for date.
// Tables whose column count differs from the schema are rejected whole.
func Normalize(raw currency.RawTable, date time.Time) (currency.Table, error) {
	if got, want := raw.Columns(), len(currency.SourceColumns); got != want {
		return currency.Table{}, eris.Wrapf(ErrColumnMismatch, "expected %d columns, found %d", want, got)
	}

	quotes := make([]currency.Quote, 0, len(raw))

	for i, record := range raw {
		q, err := parseQuote(record)
		if err != nil {
			return currency.Table{}, eris.Wrapf(err, "row %d", i+1)
		}

		q.Derive()
		quotes = append(quotes, q)
	}

	return currency.Table{
		Date:   time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Quotes: quotes,
	}, nil
}

func parseQuote(record []string) (currency.Quote, error) {
	if len(record) != len(currency.SourceColumns) {
		return currency.Quote{}, eris.Wrapf(ErrColumnMismatch, "expected %d columns, found %d", len(currency.SourceColumns), len(record))
	}

	rates := make([]float64, 4)
	for i, field := range record[4:8] {
		value, err := parseNumber(field)
		if err != nil {
			return currency.Quote{}, eris.Wrapf(ErrMalformed, "%s: %q", currency.SourceColumns[4+i], field)
		}
		rates[i] = value
	}

	return currency.Quote{
		Date:       strings.TrimSpace(record[0]),
		Code:       strings.TrimSpace(record[1]),
		Type:       currency.Type(strings.TrimSpace(record[2])),
		Name:       strings.TrimSpace(record[3]),
		BuyRate:    rates[0],
		SellRate:   rates[1],
		BuyParity:  rates[2],
		SellParity: rates[3],
	}, nil
}

// parseNumber reads a number written with a comma decimal separator.
func parseNumber(field string) (float64, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(field), ",", ".", 1))
	if err != nil {
		return 0, err
	}

	return d.InexactFloat64(), nil
}
