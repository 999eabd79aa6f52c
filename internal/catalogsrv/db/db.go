// Package db provides database interfaces and implementations for the catalog service.
// It defines three main interfaces:
// - PartManager: canonical part records, including the merge-policy upsert
// - ImportManager: import run history and archived payloads
// - BuildManager: named build configurations
// The interfaces are separately initialized to allow for wrapping each
// interface separately, which keeps caching or instrumentation local to one
// manager.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dbmanager"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/memdb"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/postgresql"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

// PartManager handles canonical part records.
// UpsertPart owns the merge policy: direct fields always overwrite,
// name/specs/image fill only absent values, category overwrites only when the
// incoming value is "storage", and the curation flags are written only when
// the upsert carries them. All operations require a valid context and may
// return apperrors.Error for various failure cases.
type PartManager interface {
	UpsertPart(ctx context.Context, part *models.PartUpsert) (*models.Part, apperrors.Error)
	GetPart(ctx context.Context, id string) (*models.Part, apperrors.Error)
	ListParts(ctx context.Context, filter models.PartFilter) ([]*models.Part, apperrors.Error)
	UpdatePart(ctx context.Context, id string, patch *models.PartPatch) (*models.Part, apperrors.Error)
	SoftDeletePart(ctx context.Context, id string) apperrors.Error
	ListCategories(ctx context.Context) ([]models.CategoryCount, apperrors.Error)
}

// ImportManager handles import run history and the content-addressed payload
// archive.
type ImportManager interface {
	CreateImportRun(ctx context.Context, run *models.ImportRun) apperrors.Error
	GetImportRun(ctx context.Context, runID uuid.UUID) (*models.ImportRun, apperrors.Error)
	ListImportRuns(ctx context.Context, limit int) ([]*models.ImportRun, apperrors.Error)
	PutImportPayload(ctx context.Context, payload *models.ImportPayload) apperrors.Error
	GetImportPayload(ctx context.Context, hash string) (*models.ImportPayload, apperrors.Error)
}

// BuildManager handles named build configurations.
type BuildManager interface {
	CreateBuild(ctx context.Context, build *models.Build) apperrors.Error
	GetBuild(ctx context.Context, buildID uuid.UUID) (*models.Build, apperrors.Error)
	ListBuilds(ctx context.Context) ([]*models.Build, apperrors.Error)
	UpdateBuild(ctx context.Context, build *models.Build) apperrors.Error
	SetBuildParts(ctx context.Context, buildID uuid.UUID, parts []models.BuildPart) apperrors.Error
	DeleteBuild(ctx context.Context, buildID uuid.UUID) apperrors.Error
}

// ConnectionManager handles the lifecycle of the request's connection.
type ConnectionManager interface {
	// Close the connection to the database.
	Close(ctx context.Context)
}

// Database interface combines all managers into a single interface.
// This allows for a unified database access layer while maintaining
// separation of concerns.
type Database interface {
	PartManager
	ImportManager
	BuildManager
	ConnectionManager
}

var (
	pool    dbmanager.CatalogDb
	mempool *memdb.Store
)

// Init initializes the database backend selected by configuration. The
// postgresql backend creates a connection pool and bootstraps the schema;
// the memory backend starts an empty in-process store. Calling Init again
// with the memory backend discards all stored data.
func Init() {
	ctx := log.Logger.WithContext(context.Background())
	backend := config.Config().DB.Backend

	switch backend {
	case "memory":
		mempool = memdb.NewStore()
		pool = nil
	default:
		pg := dbmanager.NewCatalogDb(ctx, backend)
		if pg == nil {
			panic("unable to create db pool")
		}
		pool = pg
		mempool = nil

		conn, err := pool.Conn(ctx)
		if err != nil {
			panic("unable to get db connection for schema setup")
		}
		defer conn.Close(ctx)
		if err := postgresql.EnsureSchema(ctx, conn.Conn()); err != nil {
			panic("unable to bootstrap db schema: " + err.Error())
		}
	}
}

// Conn returns a new database connection from the pool.
// Returns an error if the connection cannot be established.
func Conn(ctx context.Context) (dbmanager.CatalogConn, error) {
	if pool != nil {
		conn, err := pool.Conn(ctx)
		if err == nil {
			return conn, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
		return nil, err
	}
	return nil, fmt.Errorf("database pool not initialized")
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "RigforgeCatalogDb"

// ConnCtx adds a database connection to the context.
// Returns an error if the connection cannot be established.
func ConnCtx(ctx context.Context) (context.Context, error) {
	if mempool != nil {
		return context.WithValue(ctx, ctxDbKey, mempool.Conn()), nil
	}
	conn, err := Conn(ctx)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type rigforgeCatalogDb struct {
	PartManager
	ImportManager
	BuildManager
	ConnectionManager
}

// DB returns a new database instance from the context.
// It expects a valid database connection in the context.
// Returns nil if no connection is found in the context.
func DB(ctx context.Context) Database {
	switch conn := ctx.Value(ctxDbKey).(type) {
	case dbmanager.CatalogConn:
		pm, im, bm, cm := postgresql.NewRigCatalogDb(conn)
		return &rigforgeCatalogDb{
			PartManager:       pm,
			ImportManager:     im,
			BuildManager:      bm,
			ConnectionManager: cm,
		}
	case *memdb.Conn:
		return &rigforgeCatalogDb{
			PartManager:       conn,
			ImportManager:     conn,
			BuildManager:      conn,
			ConnectionManager: conn,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
