package currency

import (
	"fmt"
	"strings"
)

// SinkProvider names a configured sink.
type SinkProvider string

const (
	SpreadsheetSink SinkProvider = "xlsx"
	WarehouseSink   SinkProvider = "warehouse"
	DriveSink       SinkProvider = "drive"
	MySQLSink       SinkProvider = "mysql"
	MongoDBSink     SinkProvider = "mongodb"
	KafkaSink       SinkProvider = "kafka"
)

func ConvertToSinkProvidersFromStringSlice(strs []string) ([]SinkProvider, error) {
	providers := make([]SinkProvider, 0, len(strs))

	for _, str := range strs {
		provider, err := ConvertToSinkProviderFromString(str)
		if err != nil {
			return nil, err
		}

		providers = append(providers, provider)
	}

	return providers, nil
}

func ConvertToSinkProviderFromString(str string) (SinkProvider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "xlsx", "excel", "spreadsheet":
		return SpreadsheetSink, nil
	case "warehouse", "hdfs", "parquet":
		return WarehouseSink, nil
	case "drive", "gdrive":
		return DriveSink, nil
	case "mysql":
		return MySQLSink, nil
	case "mongodb", "mongo":
		return MongoDBSink, nil
	case "kafka":
		return KafkaSink, nil
	}

	return "", fmt.Errorf("value %s is not valid SinkProvider", str)
}

func (p *SinkProvider) UnmarshalText(text []byte) error {
	provider, err := ConvertToSinkProviderFromString(string(text))
	if err != nil {
		return err
	}

	*p = provider

	return nil
}

func (p SinkProvider) MarshalText() ([]byte, error) {
	return []byte(p), nil
}
