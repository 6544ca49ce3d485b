package currency_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-quotes"
)

func TestQuote_Derive(t *testing.T) {
	t.Parallel()

	t.Run("TypeA", func(t *testing.T) {
		q := currency.Quote{Type: currency.TypeA, BuyRate: 5.0, SellRate: 5.1, BuyParity: 1.0, SellParity: 1.0}
		q.Derive()

		assert.Equal(t, 5.0, q.USDValue)
		assert.Equal(t, 25.5, q.BRLValue)
	})

	t.Run("TypeA_DividesByParity", func(t *testing.T) {
		q := currency.Quote{Type: currency.TypeA, BuyRate: 6.4623, SellRate: 6.4659, BuyParity: 1.2954}
		q.Derive()

		assert.Equal(t, q.BuyRate/q.BuyParity, q.USDValue)
		assert.Equal(t, q.BuyRate*q.SellRate, q.BRLValue)
	})

	t.Run("TypeA_SmallRateKeepsPrecision", func(t *testing.T) {
		for _, q := range []currency.Quote{
			{Type: currency.TypeA, Name: "IRR", BuyRate: 0.0001313, SellRate: 0.0001314, BuyParity: 42000},
			{Type: currency.TypeA, Name: "JPY", BuyRate: 0.03412, SellRate: 0.03415, BuyParity: 160.18},
			{Type: currency.TypeA, Name: "EUR", BuyRate: 5.9718, SellRate: 5.9748, BuyParity: 0.92498},
		} {
			q.Derive()

			assert.Equal(t, q.BuyRate/q.BuyParity, q.USDValue, q.Name)
			assert.Equal(t, q.BuyRate*q.SellRate, q.BRLValue, q.Name)
		}
	})

	t.Run("TypeA_ZeroParity", func(t *testing.T) {
		q := currency.Quote{Type: currency.TypeA, BuyRate: 5.0, SellRate: 5.1}
		q.Derive()

		assert.Zero(t, q.USDValue)
		assert.Equal(t, 25.5, q.BRLValue)
	})

	t.Run("TypeB", func(t *testing.T) {
		q := currency.Quote{Type: currency.TypeB, BuyRate: 0.0362, SellRate: 0.0363, BuyParity: 134.97}
		q.Derive()

		assert.Equal(t, q.BuyRate*q.BuyParity, q.USDValue)
		assert.Equal(t, q.BuyRate*q.SellRate, q.BRLValue)
	})

	t.Run("OtherTypesStayZero", func(t *testing.T) {
		for _, typ := range []currency.Type{"", "C", "a"} {
			q := currency.Quote{Type: typ, BuyRate: 5.0, SellRate: 5.1, BuyParity: 1.0, USDValue: 9, BRLValue: 9}
			q.Derive()

			assert.Zero(t, q.USDValue, "type %q", typ)
			assert.Zero(t, q.BRLValue, "type %q", typ)
		}
	})
}

func table(day int, quotes ...currency.Quote) currency.Table {
	return currency.Table{
		Date:   time.Date(2024, time.July, day, 0, 0, 0, 0, time.UTC),
		Quotes: quotes,
	}
}

func TestDataset_Append(t *testing.T) {
	asserts := require.New(t)

	var d currency.Dataset
	asserts.NoError(d.Append(table(4)))
	asserts.NoError(d.Append(table(3)))

	err := d.Append(table(4))
	asserts.Error(err)
	asserts.True(errors.Is(err, currency.ErrDuplicateDate))
	asserts.Equal(2, d.Len())
	asserts.Equal("20240704", d.Tables[0].Key())
	asserts.Equal("20240703", d.Tables[1].Key())
}

func TestDataset_QuotesAndCurrencies(t *testing.T) {
	asserts := require.New(t)

	d := currency.Dataset{Tables: []currency.Table{
		table(4, currency.Quote{Name: "USD", Date: "04/07/2024"}, currency.Quote{Name: "EUR", Date: "04/07/2024"}),
		table(3, currency.Quote{Name: "USD", Date: "03/07/2024"}, currency.Quote{Name: "JPY", Date: "03/07/2024"}),
	}}

	asserts.Len(d.Quotes(), 4)
	asserts.Equal([]string{"USD", "EUR", "JPY"}, d.Currencies())
}

func TestDataset_Series(t *testing.T) {
	asserts := require.New(t)

	d := currency.Dataset{Tables: []currency.Table{
		table(4, currency.Quote{Name: "USD", Date: "04/07/2024", BRLValue: 30, USDValue: 1}),
		table(3, currency.Quote{Name: "USD", Date: "03/07/2024", BRLValue: 29, USDValue: 1}),
	}}

	points, err := d.Series("USD", currency.ColumnBRLValue)
	asserts.NoError(err)
	asserts.Equal([]currency.Point{{Date: "03/07/2024", Value: 29}, {Date: "04/07/2024", Value: 30}}, points)

	points, err = d.Series("GBP", currency.ColumnUSDValue)
	asserts.NoError(err)
	asserts.Empty(points)

	_, err = d.Series("USD", currency.ColumnBuyRate)
	asserts.True(errors.Is(err, currency.ErrUnknownColumn))
}
