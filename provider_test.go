package currency_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-quotes"
)

func TestConvertToSinkProvidersFromStringSlice(t *testing.T) {
	assert := require.New(t)

	values := []struct {
		value    []string
		expected interface{}
		err      error
	}{
		{[]string{"xlsx", "hdfs", "drive"}, []currency.SinkProvider{currency.SpreadsheetSink, currency.WarehouseSink, currency.DriveSink}, nil},
		{[]string{"MySQL", "mongo", "kafka"}, []currency.SinkProvider{currency.MySQLSink, currency.MongoDBSink, currency.KafkaSink}, nil},
		{[]string{"not-valid-value"}, []currency.SinkProvider(nil), errors.New("value not-valid-value is not valid SinkProvider")},
	}
	for _, value := range values {
		providers, err := currency.ConvertToSinkProvidersFromStringSlice(value.value)
		assert.Equal(value.expected, providers)
		assert.Equal(value.err, err)
	}
}

func TestConvertToSinkProviderFromString(t *testing.T) {
	assert := require.New(t)
	values := []struct {
		value    string
		expected interface{}
		err      error
	}{
		{"xlsx", currency.SpreadsheetSink, nil},
		{"parquet", currency.WarehouseSink, nil},
		{" gdrive ", currency.DriveSink, nil},
		{"", currency.SinkProvider(""), errors.New("value  is not valid SinkProvider")},
		{"not-valid-value", currency.SinkProvider(""), errors.New("value not-valid-value is not valid SinkProvider")},
	}

	for _, value := range values {
		provider, err := currency.ConvertToSinkProviderFromString(value.value)
		assert.Equal(value.expected, provider)
		assert.Equal(value.err, err)
	}
}

func TestSinkProvider_UnmarshalText(t *testing.T) {
	assert := require.New(t)

	var p currency.SinkProvider
	assert.NoError(p.UnmarshalText([]byte("mongodb")))
	assert.Equal(currency.MongoDBSink, p)
	assert.Error(p.UnmarshalText([]byte("redis")))
}
