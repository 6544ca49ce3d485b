// Package export writes collected datasets to files and external services.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/malusev998/currency-quotes"
)

// EncodeCSV writes all quotes of dataset as comma separated UTF-8 with a byte
// order mark. The first row holds the column names; there is no index column.
func EncodeCSV(w io.Writer, dataset currency.Dataset) error {
	bom := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(bom)

	if err := writer.Write(currency.Columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}

	for _, q := range dataset.Quotes() {
		if err := writer.Write(record(q)); err != nil {
			return eris.Wrap(err, "csv: write record")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}

	return eris.Wrap(bom.Close(), "csv: close")
}

func record(q currency.Quote) []string {
	return []string{
		q.Date,
		q.Code,
		string(q.Type),
		q.Name,
		formatFloat(q.BuyRate),
		formatFloat(q.SellRate),
		formatFloat(q.BuyParity),
		formatFloat(q.SellParity),
		formatFloat(q.USDValue),
		formatFloat(q.BRLValue),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
