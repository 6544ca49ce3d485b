package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/malusev998/currency-quotes"
)

type (
	IDGenerator interface {
		Generate() []byte
	}

	BaseConfig struct {
		Ctx     context.Context
		Migrate bool
	}

	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}

	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}

	uuidGenerator struct{}
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
)

func (uuidGenerator) Generate() []byte {
	return []byte(uuid.New().String())
}

func (b BaseConfig) baseContext() context.Context {
	if b.Ctx == nil {
		return context.Background()
	}

	return b.Ctx
}

// NewStorage builds the database backed sink for provider. config must be the
// matching MySQLConfig or MongoDBConfig.
func NewStorage(provider currency.SinkProvider, config interface{}) (currency.Storage, error) {
	switch provider {
	case currency.MySQLSink:
		c, ok := config.(MySQLConfig)
		if !ok {
			return nil, ErrStorageNotFound
		}

		archive, err := NewMySQLArchive(c)
		if err != nil {
			return nil, err
		}

		return archive, nil
	case currency.MongoDBSink:
		c, ok := config.(MongoDBConfig)
		if !ok {
			return nil, ErrStorageNotFound
		}

		archive, err := NewMongoArchive(c)
		if err != nil {
			return nil, err
		}

		return archive, nil
	}

	return nil, ErrStorageNotFound
}

// NewBackend opens the warehouse filesystem named backend.
func NewBackend(backend string, config interface{}) (FileSystem, error) {
	switch backend {
	case HDFSBackend:
		c, ok := config.(HDFSOptions)
		if !ok {
			return nil, ErrBackendNotFound
		}

		fs, err := NewHDFS(c)
		if err != nil {
			return nil, err
		}

		return fs, nil
	case FTPBackend:
		c, ok := config.(FTPOptions)
		if !ok {
			return nil, ErrBackendNotFound
		}

		return NewFTP(c), nil
	case LocalBackend:
		root, ok := config.(string)
		if !ok {
			return nil, ErrBackendNotFound
		}

		return NewLocal(root), nil
	}

	return nil, ErrBackendNotFound
}
