package currency

import (
	"errors"
	"fmt"
	"time"
)

// KeyLayout formats a table date as used in download URLs and sheet names.
const KeyLayout = "20060102"

// Column names in the order they appear in exported tables.
const (
	ColumnDate       = "Data"
	ColumnCode       = "Cod Moeda"
	ColumnType       = "Tipo"
	ColumnName       = "Moeda"
	ColumnBuyRate    = "Taxa Compra"
	ColumnSellRate   = "Taxa Venda"
	ColumnBuyParity  = "Paridade Compra"
	ColumnSellParity = "Paridade Venda"
	ColumnUSDValue   = "Valor em US$"
	ColumnBRLValue   = "Valor em R$"
)

type (
	// Type is the quoting convention of a currency.
	Type string

	// Quote is one row of a quote table.
	Quote struct {
		Date       string
		Code       string
		Type       Type
		Name       string
		BuyRate    float64
		SellRate   float64
		BuyParity  float64
		SellParity float64
		USDValue   float64
		BRLValue   float64
	}

	// Table holds the quotes published for one business date.
	Table struct {
		Date   time.Time
		Quotes []Quote
	}

	// Dataset is a sequence of tables, one per business day, in collection order.
	Dataset struct {
		Tables []Table
	}

	// RawTable is a parsed source file before validation.
	RawTable [][]string
)

const (
	TypeA Type = "A"
	TypeB Type = "B"
)

var (
	// SourceColumns is the fixed schema of a published table.
	SourceColumns = []string{
		ColumnDate,
		ColumnCode,
		ColumnType,
		ColumnName,
		ColumnBuyRate,
		ColumnSellRate,
		ColumnBuyParity,
		ColumnSellParity,
	}

	// Columns is SourceColumns followed by the derived columns.
	Columns = append(append([]string{}, SourceColumns...), ColumnUSDValue, ColumnBRLValue)

	// ValueColumns are the derived columns a chart can plot.
	ValueColumns = []string{ColumnBRLValue, ColumnUSDValue}

	ErrDuplicateDate = errors.New("table for this date is already in the dataset")
	ErrUnknownColumn = errors.New("unknown value column")
)

// Derive computes the US$ and R$ values from the rates.
// Types other than A and B keep both values at zero.
func (q *Quote) Derive() {
	q.USDValue, q.BRLValue = 0, 0

	switch q.Type {
	case TypeA:
		if q.BuyParity != 0 {
			q.USDValue = q.BuyRate / q.BuyParity
		}
		q.BRLValue = q.BuyRate * q.SellRate
	case TypeB:
		q.USDValue = q.BuyRate * q.BuyParity
		q.BRLValue = q.BuyRate * q.SellRate
	}
}

// Value returns the derived value named by column.
func (q Quote) Value(column string) (float64, error) {
	switch column {
	case ColumnUSDValue:
		return q.USDValue, nil
	case ColumnBRLValue:
		return q.BRLValue, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

// Key is the table date formatted as YYYYMMDD.
func (t Table) Key() string {
	return t.Date.Format(KeyLayout)
}

// Columns reports the number of columns of the first record.
func (r RawTable) Columns() int {
	if len(r) == 0 {
		return 0
	}

	return len(r[0])
}

// Append adds a table at the end of the dataset.
func (d *Dataset) Append(table Table) error {
	key := table.Key()
	for _, t := range d.Tables {
		if t.Key() == key {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, key)
		}
	}

	d.Tables = append(d.Tables, table)

	return nil
}

// Len is the number of tables in the dataset.
func (d Dataset) Len() int {
	return len(d.Tables)
}

// Quotes concatenates all tables in dataset order.
func (d Dataset) Quotes() []Quote {
	size := 0
	for _, t := range d.Tables {
		size += len(t.Quotes)
	}

	quotes := make([]Quote, 0, size)
	for _, t := range d.Tables {
		quotes = append(quotes, t.Quotes...)
	}

	return quotes
}

// Currencies lists distinct currency names in order of first appearance.
func (d Dataset) Currencies() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)

	for _, t := range d.Tables {
		for _, q := range t.Quotes {
			if _, ok := seen[q.Name]; ok {
				continue
			}
			seen[q.Name] = struct{}{}
			names = append(names, q.Name)
		}
	}

	return names
}

// Point is one observation of a time series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series returns the values of column for the named currency, oldest first.
func (d Dataset) Series(name, column string) ([]Point, error) {
	if _, err := (Quote{}).Value(column); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(d.Tables))

	for i := len(d.Tables) - 1; i >= 0; i-- {
		for _, q := range d.Tables[i].Quotes {
			if q.Name != name {
				continue
			}

			value, _ := q.Value(column)
			points = append(points, Point{Date: q.Date, Value: value})
		}
	}

	return points, nil
}
