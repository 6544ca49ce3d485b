package main

import (
	"context"

	"github.com/go-sql-driver/mysql"

	"github.com/malusev998/currency-quotes"
	appconfig "github.com/malusev998/currency-quotes/config"
	"github.com/malusev998/currency-quotes/storage"
)

type (
	StorageConfig map[currency.SinkProvider]interface{}
	BackendConfig map[string]interface{}
)

func getMysqlDSN(config appconfig.MySQLConfig) string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = config.User
	mysqlDriverConfig.Passwd = config.Password
	mysqlDriverConfig.Addr = config.Addr
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = config.DB
	mysqlDriverConfig.ParseTime = true

	return mysqlDriverConfig.FormatDSN()
}

func getStorageConfig(ctx context.Context, cfg *appconfig.Config) StorageConfig {
	storageBaseConfig := storage.BaseConfig{
		Ctx:     ctx,
		Migrate: cfg.Migrate,
	}

	return StorageConfig{
		currency.MySQLSink: storage.MySQLConfig{
			BaseConfig:       storageBaseConfig,
			ConnectionString: getMysqlDSN(cfg.Databases.MySQL),
			TableName:        cfg.Databases.MySQL.Table,
		},
		currency.MongoDBSink: storage.MongoDBConfig{
			BaseConfig:       storageBaseConfig,
			ConnectionString: cfg.Databases.MongoDB.URI,
			Database:         cfg.Databases.MongoDB.DB,
			Collection:       cfg.Databases.MongoDB.Collection,
		},
	}
}

func getBackendConfig(cfg appconfig.WarehouseConfig) BackendConfig {
	return BackendConfig{
		storage.HDFSBackend: storage.HDFSOptions{
			Addresses: cfg.HDFS.Addresses,
			User:      cfg.HDFS.User,
		},
		storage.FTPBackend: storage.FTPOptions{
			Addr:     cfg.FTP.Addr,
			User:     cfg.FTP.User,
			Password: cfg.FTP.Password,
			Timeout:  cfg.FTP.Timeout,
		},
		storage.LocalBackend: cfg.Local.Root,
	}
}
