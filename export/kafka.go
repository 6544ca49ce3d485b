package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
)

type (
	// MessageWriter is the part of kafka.Writer used by KafkaSink.
	MessageWriter interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}

	// KafkaSink publishes one message per table, keyed by the table date.
	KafkaSink struct {
		writer MessageWriter
	}

	TableMessage struct {
		Date   string         `json:"date"`
		Quotes []QuoteMessage `json:"quotes"`
	}

	QuoteMessage struct {
		Date       string  `json:"data"`
		Code       string  `json:"cod_moeda"`
		Type       string  `json:"tipo"`
		Name       string  `json:"moeda"`
		BuyRate    float64 `json:"taxa_compra"`
		SellRate   float64 `json:"taxa_venda"`
		BuyParity  float64 `json:"paridade_compra"`
		SellParity float64 `json:"paridade_venda"`
		USDValue   float64 `json:"valor_usd"`
		BRLValue   float64 `json:"valor_brl"`
	}
)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (k *KafkaSink) Name() string {
	return string(currency.KafkaSink)
}

func (k *KafkaSink) Write(ctx context.Context, dataset currency.Dataset) error {
	if dataset.Len() == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, dataset.Len())
	timestamp := time.Now()

	for _, table := range dataset.Tables {
		value, err := json.Marshal(NewTableMessage(table))
		if err != nil {
			return eris.Wrapf(err, "kafka: marshal %s", table.Key())
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(table.Key()),
			Value: value,
			Time:  timestamp,
		})
	}

	if err := k.writer.WriteMessages(ctx, messages...); err != nil {
		return eris.Wrap(err, "kafka: write messages")
	}

	zap.L().Info("tables published", zap.String("sink", k.Name()), zap.Int("messages", len(messages)))

	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

func NewTableMessage(table currency.Table) TableMessage {
	quotes := make([]QuoteMessage, 0, len(table.Quotes))
	for _, q := range table.Quotes {
		quotes = append(quotes, QuoteMessage{
			Date:       q.Date,
			Code:       q.Code,
			Type:       string(q.Type),
			Name:       q.Name,
			BuyRate:    q.BuyRate,
			SellRate:   q.SellRate,
			BuyParity:  q.BuyParity,
			SellParity: q.SellParity,
			USDValue:   q.USDValue,
			BRLValue:   q.BRLValue,
		})
	}

	return TableMessage{Date: table.Key(), Quotes: quotes}
}
