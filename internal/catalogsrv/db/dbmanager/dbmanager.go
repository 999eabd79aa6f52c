package dbmanager

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
)

// CatalogDb hands out request-scoped connections to the catalog database.
type CatalogDb interface {
	// Conn returns a new connection to the database.
	Conn(ctx context.Context) (CatalogConn, error)
	// Stats returns the number of connection requests and returns.
	Stats() (requests, returns uint64)
}

// CatalogConn is a single request's connection. It is not concurrency safe;
// the service uses one connection per request and does not share it across
// goroutines.
type CatalogConn interface {
	// Conn returns the underlying *sql.Conn. Do not close it directly;
	// use Close to return it to the pool.
	Conn() *sql.Conn
	// Close returns the connection to the pool.
	Close(ctx context.Context)
}

// NewCatalogDb creates a connection pool for the given backend type.
// Returns nil when the backend is unknown or the pool cannot be created.
func NewCatalogDb(ctx context.Context, dbtype string) CatalogDb {
	switch dbtype {
	case "postgresql":
		db, err := NewPostgresqlDb()
		if err != nil || db == nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to create PostgreSQL pool")
			return nil
		}
		return db
	}
	return nil
}
