package catalogmanager

import (
	"context"
	"errors"
	"reflect"

	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	schemaerr "github.com/rigforge/rigforge/internal/catalogsrv/schema/errors"
	"github.com/rigforge/rigforge/internal/catalogsrv/schema/schemavalidator"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/pkg/api"
	"github.com/rigforge/rigforge/pkg/types"
	"github.com/rs/zerolog/log"
)

// PartManager wraps one catalog part for admin operations. Instances are
// bound to the record as loaded; ApplyPatch refreshes the bound copy.
type PartManager interface {
	ID() string
	Part() *models.Part
	ToAPI() *api.Part
	ApplyPatch(ctx context.Context, patchJSON []byte) apperrors.Error
	Delete(ctx context.Context) apperrors.Error
}

// partPatchSchema is the admin edit surface. Price and Image distinguish an
// explicit null, which clears the stored value, from an omitted field.
type partPatchSchema struct {
	Name     *string               `json:"name,omitempty" validate:"omitempty,min=1,max=256"`
	Category *string               `json:"category,omitempty" validate:"omitempty,categoryLabel"`
	Price    types.NullableFloat64 `json:"price" validate:"nullablePrice"`
	Image    types.NullableString  `json:"image"`
	Approved *bool                 `json:"approved,omitempty"`
	Usable   *bool                 `json:"usable,omitempty"`
	Specs    map[string]any        `json:"specs,omitempty"`
}

type partManager struct {
	part models.Part
}

var _ PartManager = (*partManager)(nil)

func (ps *partPatchSchema) Validate() schemaerr.ValidationErrors {
	var validationErrors schemaerr.ValidationErrors

	err := schemavalidator.V().Struct(ps)
	if err == nil {
		return validationErrors
	}

	validatorErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(validationErrors, schemaerr.ErrInvalidSchema)
	}

	value := reflect.ValueOf(ps).Elem()
	typeOfCS := value.Type()

	for _, e := range validatorErrors {
		jsonFieldName := schemavalidator.GetJSONFieldPath(value, typeOfCS, e.StructField())

		switch e.Tag() {
		case "required":
			validationErrors = append(validationErrors, schemaerr.ErrMissingRequiredAttribute(jsonFieldName))
		case "categoryLabel":
			val, _ := e.Value().(string)
			validationErrors = append(validationErrors, schemaerr.ErrInvalidCategory(jsonFieldName, val))
		case "nullablePrice":
			validationErrors = append(validationErrors, schemaerr.ErrInvalidPrice(jsonFieldName))
		default:
			validationErrors = append(validationErrors, schemaerr.ErrValidationFailed(jsonFieldName))
		}
	}

	return validationErrors
}

func (ps *partPatchSchema) toPatch() *models.PartPatch {
	patch := &models.PartPatch{
		Name:     ps.Name,
		Category: ps.Category,
		Approved: ps.Approved,
		Usable:   ps.Usable,
		Specs:    ps.Specs,
	}
	if ps.Price.Present {
		patch.SetPrice = true
		patch.Price = ps.Price.Ptr()
	}
	if ps.Image.Present {
		patch.SetImage = true
		if !ps.Image.IsNil() {
			v := ps.Image.Value
			patch.Image = &v
		}
	}
	return patch
}

// LoadPartManager loads the part with the given id, including soft-deleted
// records.
func LoadPartManager(ctx context.Context, id string) (PartManager, apperrors.Error) {
	if !schemavalidator.ValidatePartID(id) {
		return nil, ErrInvalidPartID
	}
	part, err := db.DB(ctx).GetPart(ctx, id)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("part_id", id).Msg("failed to load part")
		return nil, ErrUnableToLoadObject.Err(err)
	}
	return &partManager{
		part: *part,
	}, nil
}

func (pm *partManager) ID() string {
	return pm.part.ID
}

func (pm *partManager) Part() *models.Part {
	return &pm.part
}

func (pm *partManager) ToAPI() *api.Part {
	return partToAPI(&pm.part)
}

func (pm *partManager) ApplyPatch(ctx context.Context, patchJSON []byte) apperrors.Error {
	if len(patchJSON) == 0 {
		return ErrEmptySchema
	}

	ps := &partPatchSchema{}
	if err := json.Unmarshal(patchJSON, ps); err != nil {
		return ErrInvalidSchema.Err(err)
	}

	validationErrors := ps.Validate()
	if validationErrors != nil {
		return ErrInvalidSchema.Err(validationErrors)
	}

	updated, err := db.DB(ctx).UpdatePart(ctx, pm.part.ID, ps.toPatch())
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrPartNotFound
		}
		if errors.Is(err, dberror.ErrInvalidInput) {
			return ErrInvalidRequest.Err(err)
		}
		log.Ctx(ctx).Error().Err(err).Str("part_id", pm.part.ID).Msg("failed to update part")
		return ErrUnableToUpdateObject.Err(err)
	}
	pm.part = *updated
	return nil
}

func (pm *partManager) Delete(ctx context.Context) apperrors.Error {
	err := db.DB(ctx).SoftDeletePart(ctx, pm.part.ID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrPartNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("part_id", pm.part.ID).Msg("failed to delete part")
		return ErrUnableToDeleteObject.Err(err)
	}
	pm.part.IsDeleted = true
	return nil
}

// ListParts returns the parts matching the filter. When the filter pages the
// result, Total still reports the full match count.
func ListParts(ctx context.Context, filter models.PartFilter) (*api.PartList, apperrors.Error) {
	parts, err := db.DB(ctx).ListParts(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list parts")
		return nil, ErrUnableToLoadObject.Err(err)
	}

	total := len(parts)
	if filter.Limit > 0 || filter.Offset > 0 {
		countFilter := filter
		countFilter.Limit = 0
		countFilter.Offset = 0
		all, countErr := db.DB(ctx).ListParts(ctx, countFilter)
		if countErr != nil {
			log.Ctx(ctx).Error().Err(countErr).Msg("failed to count parts")
			return nil, ErrUnableToLoadObject.Err(countErr)
		}
		total = len(all)
	}

	list := &api.PartList{
		Parts: make([]api.Part, 0, len(parts)),
		Total: total,
	}
	for _, p := range parts {
		list.Parts = append(list.Parts, *partToAPI(p))
	}
	return list, nil
}

// ListCategories returns the distinct categories of live parts with counts.
func ListCategories(ctx context.Context) ([]api.CategoryCount, apperrors.Error) {
	counts, err := db.DB(ctx).ListCategories(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list categories")
		return nil, ErrUnableToLoadObject.Err(err)
	}
	result := make([]api.CategoryCount, 0, len(counts))
	for _, c := range counts {
		result = append(result, api.CategoryCount{Category: c.Category, Count: c.Count})
	}
	return result, nil
}

func partToAPI(p *models.Part) *api.Part {
	offers := make([]api.VendorOffer, 0, len(p.VendorList))
	for _, o := range p.VendorList {
		offers = append(offers, api.VendorOffer{
			Vendor:       o.Vendor,
			Price:        o.Price,
			Currency:     o.Currency,
			Availability: o.Availability,
			Image:        o.Image,
			BuyLink:      o.BuyLink,
		})
	}
	return &api.Part{
		ID:           p.ID,
		Category:     p.Category,
		Name:         p.Name,
		Price:        p.Price,
		Vendor:       p.Vendor,
		Availability: p.Availability,
		InStock:      p.InStock,
		Image:        p.Image,
		Specs:        p.Specs,
		VendorList:   offers,
		Approved:     p.Approved,
		Usable:       p.Usable,
		IsDeleted:    p.IsDeleted,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
