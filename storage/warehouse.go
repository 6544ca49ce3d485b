package storage

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

const parquetExtension = ".parquet"

type (
	// FileSystem is the byte level backend of the warehouse.
	FileSystem interface {
		WriteFile(ctx context.Context, name string, data []byte) error
		ReadFile(ctx context.Context, name string) ([]byte, error)
		Close() error
	}

	// Warehouse stores datasets as columnar files under a path prefix.
	Warehouse struct {
		fs     FileSystem
		prefix string
		name   string
	}

	quoteRow struct {
		TableDate      string  `parquet:"table_date"`
		Data           string  `parquet:"data"`
		CodMoeda       string  `parquet:"cod_moeda"`
		Tipo           string  `parquet:"tipo"`
		Moeda          string  `parquet:"moeda"`
		TaxaCompra     float64 `parquet:"taxa_compra"`
		TaxaVenda      float64 `parquet:"taxa_venda"`
		ParidadeCompra float64 `parquet:"paridade_compra"`
		ParidadeVenda  float64 `parquet:"paridade_venda"`
		ValorUSD       float64 `parquet:"valor_usd"`
		ValorBRL       float64 `parquet:"valor_brl"`
	}
)

// NewWarehouse writes datasets named name below prefix on fs.
func NewWarehouse(fs FileSystem, prefix, name string) *Warehouse {
	return &Warehouse{fs: fs, prefix: prefix, name: name}
}

func (w *Warehouse) Name() string {
	return string(currency.WarehouseSink)
}

// Write saves dataset under the configured name.
func (w *Warehouse) Write(ctx context.Context, dataset currency.Dataset) error {
	return w.Save(ctx, w.name, dataset)
}

// Path returns the file path of the dataset called name.
func (w *Warehouse) Path(name string) string {
	return path.Join(w.prefix, name+parquetExtension)
}

// Save encodes dataset and overwrites the file at Path(name).
func (w *Warehouse) Save(ctx context.Context, name string, dataset currency.Dataset) error {
	rows := make([]quoteRow, 0, len(dataset.Quotes()))
	for _, table := range dataset.Tables {
		key := table.Key()
		for _, q := range table.Quotes {
			rows = append(rows, quoteRow{
				TableDate:      key,
				Data:           q.Date,
				CodMoeda:       q.Code,
				Tipo:           string(q.Type),
				Moeda:          q.Name,
				TaxaCompra:     q.BuyRate,
				TaxaVenda:      q.SellRate,
				ParidadeCompra: q.BuyParity,
				ParidadeVenda:  q.SellParity,
				ValorUSD:       q.USDValue,
				ValorBRL:       q.BRLValue,
			})
		}
	}

	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return eris.Wrap(err, "warehouse: encode")
	}

	p := w.Path(name)
	if err := w.fs.WriteFile(ctx, p, buf.Bytes()); err != nil {
		return eris.Wrapf(err, "warehouse: write %s", p)
	}

	zap.L().Info("dataset saved", zap.String("path", p), zap.Int("rows", len(rows)), zap.Int("tables", dataset.Len()))

	return nil
}

// Load reads back the dataset saved as name. Table grouping and order are preserved.
func (w *Warehouse) Load(ctx context.Context, name string) (currency.Dataset, error) {
	p := w.Path(name)

	data, err := w.fs.ReadFile(ctx, p)
	if err != nil {
		return currency.Dataset{}, eris.Wrapf(err, "warehouse: read %s", p)
	}

	rows, err := parquet.Read[quoteRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return currency.Dataset{}, eris.Wrapf(err, "warehouse: decode %s", p)
	}

	var (
		dataset currency.Dataset
		current *currency.Table
	)

	flush := func() error {
		if current == nil {
			return nil
		}

		return dataset.Append(*current)
	}

	for _, r := range rows {
		if current == nil || current.Key() != r.TableDate {
			if err := flush(); err != nil {
				return currency.Dataset{}, eris.Wrapf(err, "warehouse: load %s", p)
			}

			date, err := time.Parse(currency.KeyLayout, r.TableDate)
			if err != nil {
				return currency.Dataset{}, eris.Wrapf(err, "warehouse: table date %q", r.TableDate)
			}

			current = &currency.Table{Date: date}
		}

		current.Quotes = append(current.Quotes, currency.Quote{
			Date:       r.Data,
			Code:       r.CodMoeda,
			Type:       currency.Type(r.Tipo),
			Name:       r.Moeda,
			BuyRate:    r.TaxaCompra,
			SellRate:   r.TaxaVenda,
			BuyParity:  r.ParidadeCompra,
			SellParity: r.ParidadeVenda,
			USDValue:   r.ValorUSD,
			BRLValue:   r.ValorBRL,
		})
	}

	if err := flush(); err != nil {
		return currency.Dataset{}, eris.Wrapf(err, "warehouse: load %s", p)
	}

	return dataset, nil
}

// Close releases the backend.
func (w *Warehouse) Close() error {
	return w.fs.Close()
}
