package postgresql

import (
	"context"
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
)

const buildColumns = `build_id, name, status, tier, family, image, parts, created_at, updated_at`

func scanBuild(row rowScanner) (*models.Build, error) {
	var b models.Build
	var parts pgtype.JSONB

	err := row.Scan(&b.BuildID, &b.Name, &b.Status, &b.Tier, &b.Family, &b.Image, &parts, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if parts.Status == pgtype.Present {
		if err := parts.AssignTo(&b.Parts); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func buildPartsJSON(parts []models.BuildPart) (pgtype.JSONB, error) {
	if parts == nil {
		parts = []models.BuildPart{}
	}
	return toJSONB(parts)
}

func (bm *buildManager) CreateBuild(ctx context.Context, build *models.Build) apperrors.Error {
	if build == nil {
		return dberror.ErrInvalidInput.Msg("build is required")
	}
	if build.BuildID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("build id is required")
	}
	if build.Name == "" {
		return dberror.ErrInvalidInput.Msg("build name is required")
	}

	partsJSON, err := buildPartsJSON(build.Parts)
	if err != nil {
		return dberror.ErrInvalidInput.Msg("unable to encode build parts").Err(err)
	}

	query := `
		INSERT INTO builds (build_id, name, status, tier, family, image, parts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING build_id
	`

	err = bm.conn().QueryRowContext(ctx, query,
		build.BuildID,
		build.Name,
		build.Status,
		build.Tier,
		build.Family,
		build.Image,
		partsJSON,
	).Scan(&build.BuildID)

	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch {
			case pgErr.Code == "23505": // unique_violation
				return dberror.ErrAlreadyExists.Msg("build already exists")
			}
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to insert build")
		return dberror.ErrDatabase.Err(err)
	}

	return nil
}

func (bm *buildManager) GetBuild(ctx context.Context, buildID uuid.UUID) (*models.Build, apperrors.Error) {
	query := `SELECT ` + buildColumns + ` FROM builds WHERE build_id = $1`

	build, err := scanBuild(bm.conn().QueryRowContext(ctx, query, buildID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("build not found")
		}
		return nil, dberror.ErrDatabase.Err(err)
	}
	return build, nil
}

func (bm *buildManager) ListBuilds(ctx context.Context) ([]*models.Build, apperrors.Error) {
	query := `
		SELECT ` + buildColumns + `
		FROM builds
		ORDER BY updated_at DESC
	`

	rows, err := bm.conn().QueryContext(ctx, query)
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var result []*models.Build
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan build row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		result = append(result, build)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return result, nil
}

func (bm *buildManager) UpdateBuild(ctx context.Context, build *models.Build) apperrors.Error {
	if build == nil {
		return dberror.ErrInvalidInput.Msg("build is required")
	}
	if build.BuildID == uuid.Nil {
		return dberror.ErrInvalidInput.Msg("build id is required")
	}

	partsJSON, err := buildPartsJSON(build.Parts)
	if err != nil {
		return dberror.ErrInvalidInput.Msg("unable to encode build parts").Err(err)
	}

	query := `
		UPDATE builds
		SET name = $2,
			status = $3,
			tier = $4,
			family = $5,
			image = $6,
			parts = $7,
			updated_at = NOW()
		WHERE build_id = $1
	`

	result, err := bm.conn().ExecContext(ctx, query,
		build.BuildID, build.Name, build.Status, build.Tier, build.Family, build.Image, partsJSON)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to update build")
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("build not found")
	}

	return nil
}

func (bm *buildManager) SetBuildParts(ctx context.Context, buildID uuid.UUID, parts []models.BuildPart) apperrors.Error {
	partsJSON, err := buildPartsJSON(parts)
	if err != nil {
		return dberror.ErrInvalidInput.Msg("unable to encode build parts").Err(err)
	}

	query := `
		UPDATE builds
		SET parts = $2,
			updated_at = NOW()
		WHERE build_id = $1
	`

	result, err := bm.conn().ExecContext(ctx, query, buildID, partsJSON)
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("build not found")
	}

	return nil
}

func (bm *buildManager) DeleteBuild(ctx context.Context, buildID uuid.UUID) apperrors.Error {
	query := `
		DELETE FROM builds
		WHERE build_id = $1
	`

	result, err := bm.conn().ExecContext(ctx, query, buildID)
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("build not found")
	}

	return nil
}
