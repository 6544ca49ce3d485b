package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

const MySQLDateFormat = "2006-01-02"

// MySQLArchive upserts every quote into one table keyed by (table_date, cod_moeda).
type MySQLArchive struct {
	ctx         context.Context
	db          *sql.DB
	tableName   string
	idGenerator IDGenerator
}

// NewMySQLArchive opens the connection and migrates the table when asked to.
func NewMySQLArchive(config MySQLConfig) (*MySQLArchive, error) {
	db, err := sql.Open("mysql", config.ConnectionString)
	if err != nil {
		return nil, eris.Wrap(err, "mysql: open")
	}

	archive := NewMySQLArchiveWithDB(config.baseContext(), db, config.TableName, config.IDGenerator)

	if config.Migrate {
		if err := archive.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return archive, nil
}

// NewMySQLArchiveWithDB uses an already open db. A nil idGenerator means UUIDs.
func NewMySQLArchiveWithDB(ctx context.Context, db *sql.DB, tableName string, idGenerator IDGenerator) *MySQLArchive {
	if idGenerator == nil {
		idGenerator = uuidGenerator{}
	}

	return &MySQLArchive{
		ctx:         ctx,
		db:          db,
		tableName:   tableName,
		idGenerator: idGenerator,
	}
}

func (m *MySQLArchive) Name() string {
	return string(currency.MySQLSink)
}

// Write runs all upserts in one transaction.
func (m *MySQLArchive) Write(ctx context.Context, dataset currency.Dataset) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "mysql: begin")
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s(id, table_date, data, cod_moeda, tipo, moeda, taxa_compra, taxa_venda, paridade_compra, paridade_venda, valor_usd, valor_brl) "+
			"VALUES(?,?,?,?,?,?,?,?,?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE data = VALUES(data), tipo = VALUES(tipo), moeda = VALUES(moeda), "+
			"taxa_compra = VALUES(taxa_compra), taxa_venda = VALUES(taxa_venda), "+
			"paridade_compra = VALUES(paridade_compra), paridade_venda = VALUES(paridade_venda), "+
			"valor_usd = VALUES(valor_usd), valor_brl = VALUES(valor_brl);",
		m.tableName,
	))
	if err != nil {
		_ = tx.Rollback()
		return eris.Wrap(err, "mysql: prepare upsert")
	}

	count := 0
	for _, table := range dataset.Tables {
		date := table.Date.Format(MySQLDateFormat)

		for _, q := range table.Quotes {
			_, err := stmt.ExecContext(ctx,
				string(m.idGenerator.Generate()),
				date,
				q.Date,
				q.Code,
				string(q.Type),
				q.Name,
				q.BuyRate,
				q.SellRate,
				q.BuyParity,
				q.SellParity,
				q.USDValue,
				q.BRLValue,
			)
			if err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return eris.Wrapf(err, "mysql: upsert %s %s", date, q.Code)
			}
			count++
		}
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return eris.Wrap(err, "mysql: close statement")
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "mysql: commit")
	}

	zap.L().Info("quotes archived", zap.String("sink", m.Name()), zap.String("table", m.tableName), zap.Int("rows", count))

	return nil
}

func (m *MySQLArchive) Migrate() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s(
		id CHAR(36) NOT NULL PRIMARY KEY,
		table_date DATE NOT NULL,
		data VARCHAR(10) NOT NULL,
		cod_moeda VARCHAR(8) NOT NULL,
		tipo VARCHAR(2) NOT NULL,
		moeda VARCHAR(8) NOT NULL,
		taxa_compra DOUBLE NOT NULL,
		taxa_venda DOUBLE NOT NULL,
		paridade_compra DOUBLE NOT NULL,
		paridade_venda DOUBLE NOT NULL,
		valor_usd DOUBLE NOT NULL,
		valor_brl DOUBLE NOT NULL,
		UNIQUE KEY date_code_unique (table_date, cod_moeda)
	);`, m.tableName))

	return eris.Wrap(err, "mysql: migrate")
}

func (m *MySQLArchive) Drop() error {
	_, err := m.db.ExecContext(m.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", m.tableName))

	return eris.Wrap(err, "mysql: drop")
}

func (m *MySQLArchive) Close() error {
	return m.db.Close()
}
