package currency

// Storage is a sink backed by a database that owns its schema.
type Storage interface {
	Sink
	Migrate() error
	Drop() error
	Close() error
}
