package postgresql

import (
	"context"
	"database/sql"

	"github.com/golang/snappy"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

func (im *importManager) CreateImportRun(ctx context.Context, run *models.ImportRun) apperrors.Error {
	if run == nil {
		return dberror.ErrInvalidInput.Msg("run is required")
	}
	if run.RunID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("run id is required")
	}

	rowErrors := run.Errors
	if rowErrors == nil {
		rowErrors = []models.RowError{}
	}
	errorsJSON, err := toJSONB(rowErrors)
	if err != nil {
		return dberror.ErrInvalidInput.Msg("unable to encode row errors").Err(err)
	}

	query := `
		INSERT INTO import_runs (run_id, source, default_category, payload_hash, attempted, succeeded, failed, errors, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING run_id
	`

	err = im.conn().QueryRowContext(ctx, query,
		run.RunID,
		run.Source,
		run.DefaultCategory,
		run.PayloadHash,
		run.Attempted,
		run.Succeeded,
		run.Failed,
		errorsJSON,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.RunID)

	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return dberror.ErrAlreadyExists.Msg("import run already exists")
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to insert import run")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

func scanImportRun(row rowScanner) (*models.ImportRun, error) {
	var run models.ImportRun
	var rowErrors pgtype.JSONB

	err := row.Scan(&run.RunID, &run.Source, &run.DefaultCategory, &run.PayloadHash,
		&run.Attempted, &run.Succeeded, &run.Failed, &rowErrors, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}

	if rowErrors.Status == pgtype.Present {
		if err := rowErrors.AssignTo(&run.Errors); err != nil {
			return nil, err
		}
	}
	return &run, nil
}

const importRunColumns = `run_id, source, default_category, payload_hash, attempted, succeeded, failed, errors, started_at, finished_at`

func (im *importManager) GetImportRun(ctx context.Context, runID uuid.UUID) (*models.ImportRun, apperrors.Error) {
	query := `SELECT ` + importRunColumns + ` FROM import_runs WHERE run_id = $1`

	run, err := scanImportRun(im.conn().QueryRowContext(ctx, query, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("import run not found")
		}
		return nil, dberror.ErrDatabase.Err(err)
	}
	return run, nil
}

func (im *importManager) ListImportRuns(ctx context.Context, limit int) ([]*models.ImportRun, apperrors.Error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + importRunColumns + `
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := im.conn().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var result []*models.ImportRun
	for rows.Next() {
		run, err := scanImportRun(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan import run row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return result, nil
}

// PutImportPayload archives a batch payload under its content hash. Writing
// the same hash again returns ErrAlreadyExists; the stored bytes are
// identical by construction.
func (im *importManager) PutImportPayload(ctx context.Context, payload *models.ImportPayload) apperrors.Error {
	if payload == nil {
		return dberror.ErrInvalidInput.Msg("payload is required")
	}
	if payload.Hash == "" {
		return dberror.ErrInvalidInput.Msg("hash cannot be empty")
	}
	if len(payload.Hash) < 16 {
		return dberror.ErrInvalidInput.Msg("hash must be at least 16 characters long")
	}
	if len(payload.Data) == 0 {
		return dberror.ErrInvalidInput.Msg("data cannot be nil")
	}

	contentType := payload.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	// snappy compress the data
	var dataZ []byte
	compressed := false
	if config.CompressImportPayloads {
		dataZ = snappy.Encode(nil, payload.Data)
		compressed = true
		log.Ctx(ctx).Debug().Msgf("raw: %d, compressed: %d", len(payload.Data), len(dataZ))
	} else {
		dataZ = payload.Data
	}

	query := `
		INSERT INTO import_payloads (hash, content_type, data, compressed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO NOTHING
	`

	result, err := im.conn().ExecContext(ctx, query, payload.Hash, contentType, dataZ, compressed)
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrAlreadyExists.Msg("payload already archived")
	}

	payload.Compressed = compressed
	return nil
}

// GetImportPayload returns the archived payload with its data uncompressed.
func (im *importManager) GetImportPayload(ctx context.Context, hash string) (*models.ImportPayload, apperrors.Error) {
	if hash == "" {
		return nil, dberror.ErrInvalidInput.Msg("hash cannot be empty")
	}

	query := `
		SELECT hash, content_type, data, compressed, created_at
		FROM import_payloads
		WHERE hash = $1
	`

	var payload models.ImportPayload
	err := im.conn().QueryRowContext(ctx, query, hash).
		Scan(&payload.Hash, &payload.ContentType, &payload.Data, &payload.Compressed, &payload.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("payload not found")
		}
		return nil, dberror.ErrDatabase.Err(err)
	}

	if payload.Compressed {
		payload.Data, err = snappy.Decode(nil, payload.Data)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to uncompress payload data")
			return nil, dberror.ErrDatabase.Err(err)
		}
		payload.Compressed = false
	}

	return &payload, nil
}
