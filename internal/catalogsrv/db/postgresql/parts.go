package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	"github.com/rigforge/rigforge/internal/common/apperrors"
)

const partColumns = `id, category, name, price, vendor, availability, in_stock, image, specs, vendor_list, approved, usable, is_deleted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner) (*models.Part, error) {
	var p models.Part
	var price sql.NullFloat64
	var image sql.NullString
	var approved, usable sql.NullBool
	var specs, vendorList pgtype.JSONB

	err := row.Scan(&p.ID, &p.Category, &p.Name, &price, &p.Vendor, &p.Availability, &p.InStock,
		&image, &specs, &vendorList, &approved, &usable, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	if image.Valid {
		v := image.String
		p.Image = &v
	}
	if approved.Valid {
		v := approved.Bool
		p.Approved = &v
	}
	if usable.Valid {
		v := usable.Bool
		p.Usable = &v
	}
	if specs.Status == pgtype.Present {
		if err := specs.AssignTo(&p.Specs); err != nil {
			return nil, err
		}
	}
	if vendorList.Status == pgtype.Present {
		if err := vendorList.AssignTo(&p.VendorList); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func toJSONB(v any) (pgtype.JSONB, error) {
	var j pgtype.JSONB
	if err := j.Set(v); err != nil {
		return j, err
	}
	return j, nil
}

// UpsertPart inserts or merges one ingested record. Direct fields always
// overwrite; name, specs, and image only fill values the stored record does
// not have yet; category is overwritten only when the incoming value is
// "storage"; approved and usable are written only when the upsert carries
// them; is_deleted is never touched by a merge. Returns the stored record
// after the merge.
func (pm *partManager) UpsertPart(ctx context.Context, part *models.PartUpsert) (*models.Part, apperrors.Error) {
	if part == nil {
		return nil, dberror.ErrInvalidInput.Msg("part is required")
	}
	if part.ID == "" {
		return nil, dberror.ErrMissingPartID
	}
	if len(part.ID) > catcommon.PartIDMaxLength {
		return nil, dberror.ErrInvalidInput.Msg("part id too long")
	}

	specs := part.Specs
	if specs == nil {
		specs = map[string]any{}
	}
	vendorList := part.VendorList
	if vendorList == nil {
		vendorList = []models.VendorOffer{}
	}

	specsJSON, err := toJSONB(specs)
	if err != nil {
		return nil, dberror.ErrInvalidInput.Msg("unable to encode specs").Err(err)
	}
	vendorListJSON, err := toJSONB(vendorList)
	if err != nil {
		return nil, dberror.ErrInvalidInput.Msg("unable to encode vendor list").Err(err)
	}

	query := `
		INSERT INTO parts (id, category, name, price, vendor, availability, in_stock, image, specs, vendor_list, approved, usable, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			price = EXCLUDED.price,
			vendor = EXCLUDED.vendor,
			availability = EXCLUDED.availability,
			in_stock = EXCLUDED.in_stock,
			vendor_list = EXCLUDED.vendor_list,
			name = CASE WHEN parts.name = '' THEN EXCLUDED.name ELSE parts.name END,
			specs = CASE WHEN parts.specs IS NULL OR parts.specs = '{}'::jsonb THEN EXCLUDED.specs ELSE parts.specs END,
			image = COALESCE(parts.image, EXCLUDED.image),
			category = CASE
				WHEN EXCLUDED.category = 'storage' THEN EXCLUDED.category
				WHEN parts.category = '' THEN EXCLUDED.category
				ELSE parts.category
			END,
			approved = COALESCE(EXCLUDED.approved, parts.approved),
			usable = COALESCE(EXCLUDED.usable, parts.usable),
			is_deleted = parts.is_deleted,
			updated_at = NOW()
		RETURNING ` + partColumns

	row := pm.conn().QueryRowContext(ctx, query,
		part.ID,
		part.Category,
		part.Name,
		part.Price,
		part.Vendor,
		part.Availability,
		part.InStock,
		part.Image,
		specsJSON,
		vendorListJSON,
		part.Approved,
		part.Usable,
	)

	stored, err := scanPart(row)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			switch pgErr.Code {
			case "23514": // check_violation
				return nil, dberror.ErrInvalidInput.Msg("part violates a catalog constraint")
			}
		}
		log.Ctx(ctx).Error().Err(err).Str("part_id", part.ID).Msg("failed to upsert part")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return stored, nil
}

// GetPart returns the stored record, including soft-deleted ones.
func (pm *partManager) GetPart(ctx context.Context, id string) (*models.Part, apperrors.Error) {
	if id == "" {
		return nil, dberror.ErrMissingPartID
	}

	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`

	part, err := scanPart(pm.conn().QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("part not found")
		}
		return nil, dberror.ErrDatabase.Err(err)
	}
	return part, nil
}

// ListParts returns parts matching the filter, ordered by name then id.
func (pm *partManager) ListParts(ctx context.Context, filter models.PartFilter) ([]*models.Part, apperrors.Error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeDeleted {
		conds = append(conds, "is_deleted = FALSE")
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Vendor != "" {
		conds = append(conds, "vendor = "+arg(filter.Vendor))
	}
	if filter.Approved != nil {
		conds = append(conds, "approved = "+arg(*filter.Approved))
	}
	if filter.Usable != nil {
		conds = append(conds, "usable = "+arg(*filter.Usable))
	}
	if filter.InStock != nil {
		conds = append(conds, "in_stock = "+arg(*filter.InStock))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR id ILIKE %s)", p, p))
	}

	query := `SELECT ` + partColumns + ` FROM parts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := pm.conn().QueryContext(ctx, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list parts")
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var result []*models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan part row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		result = append(result, part)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return result, nil
}

// UpdatePart applies an admin edit. Nil patch fields are untouched; SetPrice
// and SetImage clear their columns when the value is nil; specs are merged
// key by key over the stored object.
func (pm *partManager) UpdatePart(ctx context.Context, id string, patch *models.PartPatch) (*models.Part, apperrors.Error) {
	if id == "" {
		return nil, dberror.ErrMissingPartID
	}
	if patch == nil {
		return nil, dberror.ErrInvalidInput.Msg("no fields to update")
	}

	var sets []string
	var args []any

	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(col), len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.SetPrice {
		set("price", patch.Price)
	}
	if patch.SetImage {
		set("image", patch.Image)
	}
	if patch.Approved != nil {
		set("approved", *patch.Approved)
	}
	if patch.Usable != nil {
		set("usable", *patch.Usable)
	}
	if patch.Specs != nil {
		specsJSON, err := toJSONB(patch.Specs)
		if err != nil {
			return nil, dberror.ErrInvalidInput.Msg("unable to encode specs").Err(err)
		}
		args = append(args, specsJSON)
		sets = append(sets, fmt.Sprintf("%s = specs || $%d", pq.QuoteIdentifier("specs"), len(args)))
	}

	if len(sets) == 0 {
		return nil, dberror.ErrInvalidInput.Msg("no fields to update")
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE parts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), partColumns)

	part, err := scanPart(pm.conn().QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("part not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23514" {
			return nil, dberror.ErrInvalidInput.Msg("part violates a catalog constraint")
		}
		log.Ctx(ctx).Error().Err(err).Str("part_id", id).Msg("failed to update part")
		return nil, dberror.ErrDatabase.Err(err)
	}

	return part, nil
}

// SoftDeletePart marks the part deleted. The record stays in place so a later
// import cannot silently resurrect it.
func (pm *partManager) SoftDeletePart(ctx context.Context, id string) apperrors.Error {
	if id == "" {
		return dberror.ErrMissingPartID
	}

	query := `
		UPDATE parts
		SET is_deleted = TRUE,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := pm.conn().ExecContext(ctx, query, id)
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if rowsAffected == 0 {
		return dberror.ErrNotFound.Msg("part not found")
	}

	return nil
}

// ListCategories returns the distinct categories of live parts with counts.
func (pm *partManager) ListCategories(ctx context.Context) ([]models.CategoryCount, apperrors.Error) {
	query := `
		SELECT category, COUNT(*)
		FROM parts
		WHERE is_deleted = FALSE
		GROUP BY category
		ORDER BY category
	`

	rows, err := pm.conn().QueryContext(ctx, query)
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	defer rows.Close()

	var result []models.CategoryCount
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to scan category row")
			return nil, dberror.ErrDatabase.Err(err)
		}
		result = append(result, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}

	return result, nil
}
