package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/malusev998/currency-quotes"
	appconfig "github.com/malusev998/currency-quotes/config"
	"github.com/malusev998/currency-quotes/export"
	"github.com/malusev998/currency-quotes/fetchers"
	"github.com/malusev998/currency-quotes/notify"
	"github.com/malusev998/currency-quotes/storage"
)

type builder struct{}

func (builder) Fetcher(cfg *appconfig.Config) currency.Fetcher {
	return fetchers.NewBCBFetcher(fetchers.Config{
		URL:       cfg.Source.BaseURL,
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		Burst:     cfg.Source.Burst,
		UserAgent: cfg.Source.UserAgent,
	})
}

func (builder) Warehouse(cfg *appconfig.Config) (*storage.Warehouse, error) {
	c, ok := getBackendConfig(cfg.Warehouse)[cfg.Warehouse.Backend]
	if !ok {
		return nil, fmt.Errorf("warehouse backend %s does not exist", cfg.Warehouse.Backend)
	}

	fs, err := storage.NewBackend(cfg.Warehouse.Backend, c)
	if err != nil {
		return nil, err
	}

	return storage.NewWarehouse(fs, cfg.Warehouse.Prefix, cfg.Warehouse.Name), nil
}

func (builder) Notifier(cfg *appconfig.Config) (currency.Notifier, error) {
	if !cfg.Email.Enabled {
		return notify.Noop{}, nil
	}

	client, err := notify.NewSMTPClient(notify.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
	})
	if err != nil {
		return nil, err
	}

	from := cfg.Email.From
	if from == "" {
		from = cfg.Email.Username
	}

	return notify.NewEmailNotifier(client, from, cfg.Email.To), nil
}

// Sinks creates the configured sinks in order. Sinks created before a failure are closed.
func (b builder) Sinks(ctx context.Context, cfg *appconfig.Config) ([]currency.Sink, error) {
	providers, err := currency.ConvertToSinkProvidersFromStringSlice(cfg.Sinks)
	if err != nil {
		return nil, err
	}

	storageConfig := getStorageConfig(ctx, cfg)
	sinks := make([]currency.Sink, 0, len(providers))

	for _, p := range providers {
		sink, err := b.sink(ctx, cfg, p, storageConfig)
		if err != nil {
			closeSinks(sinks)
			return nil, err
		}

		zap.L().Debug("sink configured", zap.String("sink", sink.Name()))
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

func (b builder) sink(ctx context.Context, cfg *appconfig.Config, provider currency.SinkProvider, storageConfig StorageConfig) (currency.Sink, error) {
	switch provider {
	case currency.SpreadsheetSink:
		return export.NewSpreadsheetSink(cfg.XLSX.Path), nil
	case currency.WarehouseSink:
		warehouse, err := b.Warehouse(cfg)
		if err != nil {
			return nil, err
		}

		return warehouse, nil
	case currency.DriveSink:
		uploader, err := export.NewDriveUploader(ctx, cfg.Drive.CredentialsFile, cfg.Drive.FolderID)
		if err != nil {
			return nil, err
		}

		return export.NewDriveSink(uploader, nil, cfg.Drive.TempPath, cfg.Drive.FileName), nil
	case currency.MySQLSink, currency.MongoDBSink:
		c, ok := storageConfig[provider]
		if !ok {
			return nil, fmt.Errorf("storage %s does not exist", provider)
		}

		return storage.NewStorage(provider, c)
	case currency.KafkaSink:
		return export.NewKafkaSink(export.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)), nil
	}

	return nil, fmt.Errorf("sink %s does not exist", provider)
}

func closeSinks(sinks []currency.Sink) {
	for _, s := range sinks {
		if closer, ok := s.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}
