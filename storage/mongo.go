package storage

import (
	"context"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

type (
	// MongoArchive upserts one document per quote keyed by {table_date, cod_moeda}.
	MongoArchive struct {
		ctx        context.Context
		client     *mongo.Client
		collection *mongo.Collection
	}

	quoteDocument struct {
		TableDate      string  `bson:"table_date"`
		Data           string  `bson:"data"`
		CodMoeda       string  `bson:"cod_moeda"`
		Tipo           string  `bson:"tipo"`
		Moeda          string  `bson:"moeda"`
		TaxaCompra     float64 `bson:"taxa_compra"`
		TaxaVenda      float64 `bson:"taxa_venda"`
		ParidadeCompra float64 `bson:"paridade_compra"`
		ParidadeVenda  float64 `bson:"paridade_venda"`
		ValorUSD       float64 `bson:"valor_usd"`
		ValorBRL       float64 `bson:"valor_brl"`
	}
)

func NewMongoArchive(config MongoDBConfig) (*MongoArchive, error) {
	ctx := config.baseContext()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, eris.Wrap(err, "mongo: connect")
	}

	archive := &MongoArchive{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}

	if config.Migrate {
		if err := archive.Migrate(); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return archive, nil
}

func (m *MongoArchive) Name() string {
	return string(currency.MongoDBSink)
}

func (m *MongoArchive) Write(ctx context.Context, dataset currency.Dataset) error {
	models := make([]mongo.WriteModel, 0, len(dataset.Quotes()))

	for _, table := range dataset.Tables {
		key := table.Key()
		for _, q := range table.Quotes {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"table_date": key, "cod_moeda": q.Code}).
				SetReplacement(newQuoteDocument(key, q)).
				SetUpsert(true))
		}
	}

	if len(models) == 0 {
		return nil
	}

	result, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return eris.Wrap(err, "mongo: bulk upsert")
	}

	zap.L().Info("quotes archived",
		zap.String("sink", m.Name()),
		zap.Int64("upserted", result.UpsertedCount),
		zap.Int64("modified", result.ModifiedCount),
	)

	return nil
}

func (m *MongoArchive) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "table_date", Value: 1}, {Key: "cod_moeda", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return eris.Wrap(err, "mongo: create index")
}

func (m *MongoArchive) Drop() error {
	return eris.Wrap(m.collection.Drop(m.ctx), "mongo: drop")
}

func (m *MongoArchive) Close() error {
	return m.client.Disconnect(m.ctx)
}

func newQuoteDocument(key string, q currency.Quote) quoteDocument {
	return quoteDocument{
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
	}
}
