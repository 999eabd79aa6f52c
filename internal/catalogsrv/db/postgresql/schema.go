package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// Schema objects are created idempotently so the service can run against a
// fresh database without a separate migration step.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS parts (
		id VARCHAR(64) PRIMARY KEY,
		category VARCHAR(64) NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION,
		vendor TEXT NOT NULL DEFAULT '',
		availability TEXT NOT NULL DEFAULT '',
		in_stock BOOLEAN NOT NULL DEFAULT FALSE,
		image TEXT,
		specs JSONB NOT NULL DEFAULT '{}'::jsonb,
		vendor_list JSONB NOT NULL DEFAULT '[]'::jsonb,
		approved BOOLEAN,
		usable BOOLEAN,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT parts_price_nonzero CHECK (price IS NULL OR price > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parts_category ON parts (category) WHERE is_deleted = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_parts_vendor ON parts (vendor) WHERE is_deleted = FALSE`,
	`CREATE TABLE IF NOT EXISTS import_payloads (
		hash VARCHAR(128) PRIMARY KEY,
		content_type VARCHAR(128) NOT NULL DEFAULT 'application/json',
		data BYTEA NOT NULL,
		compressed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS import_runs (
		run_id UUID PRIMARY KEY,
		source TEXT NOT NULL DEFAULT '',
		default_category VARCHAR(64) NOT NULL DEFAULT '',
		payload_hash VARCHAR(128) NOT NULL DEFAULT '',
		attempted INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		errors JSONB NOT NULL DEFAULT '[]'::jsonb,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs (started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS builds (
		build_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'draft',
		tier VARCHAR(64) NOT NULL DEFAULT '',
		family VARCHAR(64) NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		parts JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the catalog tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, conn *sql.Conn) apperrors.Error {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to apply schema statement")
			return dberror.ErrDatabase.Err(err)
		}
	}
	return nil
}
