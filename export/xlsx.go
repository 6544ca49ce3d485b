package export

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

const (
	DefaultSpreadsheetPath = "cotacoes_ultimos_365_dias_uteis.xlsx"

	headerColor  = "FFD9EAD3"
	evenRowColor = "FFFFEB9C"
	oddRowColor  = "FFCCCCCC"
)

var sheetNameReplacer = strings.NewReplacer("-", "", "/", "")

// SpreadsheetSink writes one sheet per business day to a single workbook.
type SpreadsheetSink struct {
	path string
}

func NewSpreadsheetSink(path string) *SpreadsheetSink {
	if path == "" {
		path = DefaultSpreadsheetPath
	}

	return &SpreadsheetSink{path: path}
}

func (s *SpreadsheetSink) Name() string {
	return string(currency.SpreadsheetSink)
}

func (s *SpreadsheetSink) Write(ctx context.Context, dataset currency.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := Workbook(dataset)
	if err != nil {
		return err
	}

	if err := file.Save(s.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", s.path)
	}

	zap.L().Info("spreadsheet saved", zap.String("path", s.path), zap.Int("sheets", len(file.Sheets)))

	return nil
}

// Workbook builds the styled workbook for dataset. Empty tables get no sheet.
func Workbook(dataset currency.Dataset) (*xlsx.File, error) {
	file := xlsx.NewFile()
	header := fillStyle(headerColor)
	header.Font.Bold = true
	header.ApplyFont = true
	even := fillStyle(evenRowColor)
	odd := fillStyle(oddRowColor)

	for _, table := range dataset.Tables {
		if len(table.Quotes) == 0 {
			continue
		}

		sheet, err := file.AddSheet(SheetName(table))
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: add sheet %s", table.Key())
		}

		row := sheet.AddRow()
		for _, column := range currency.Columns {
			cell := row.AddCell()
			cell.SetString(column)
			cell.SetStyle(header)
		}

		for i, q := range sortByCode(table.Quotes) {
			style := even
			if i%2 == 1 {
				style = odd
			}

			row := sheet.AddRow()
			for _, text := range []string{q.Date, q.Code, string(q.Type), q.Name} {
				cell := row.AddCell()
				cell.SetString(text)
				cell.SetStyle(style)
			}

			for _, value := range []float64{q.BuyRate, q.SellRate, q.BuyParity, q.SellParity, q.USDValue, q.BRLValue} {
				cell := row.AddCell()
				cell.SetFloat(value)
				cell.SetStyle(style)
			}
		}
	}

	return file, nil
}

// SheetName is the table key without date separators.
func SheetName(table currency.Table) string {
	return sheetNameReplacer.Replace(table.Key())
}

func fillStyle(color string) *xlsx.Style {
	style := xlsx.NewStyle()
	style.Fill = *xlsx.NewFill("solid", color, color)
	style.ApplyFill = true

	return style
}

// sortByCode returns a copy ordered by currency code. Numeric codes come first in
// numeric order, the rest follow in lexical order.
func sortByCode(quotes []currency.Quote) []currency.Quote {
	sorted := append([]currency.Quote(nil), quotes...)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, errA := strconv.Atoi(sorted[i].Code)
		b, errB := strconv.Atoi(sorted[j].Code)

		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil || errB == nil:
			return errA == nil
		}

		return sorted[i].Code < sorted[j].Code
	})

	return sorted
}
