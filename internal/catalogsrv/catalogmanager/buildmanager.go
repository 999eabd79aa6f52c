package catalogmanager

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rigforge/rigforge/internal/catalogsrv/db"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/dberror"
	"github.com/rigforge/rigforge/internal/catalogsrv/db/models"
	schemaerr "github.com/rigforge/rigforge/internal/catalogsrv/schema/errors"
	"github.com/rigforge/rigforge/internal/catalogsrv/schema/schemavalidator"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
	"github.com/rigforge/rigforge/pkg/api"
	"github.com/rs/zerolog/log"
)

// BuildManager wraps one named build for admin operations. Status moves
// draft -> approved -> published through Approve and Publish; any content
// edit reopens curation by dropping the build back to draft.
type BuildManager interface {
	ID() uuid.UUID
	Name() string
	Status() api.BuildStatus
	Build() *models.Build
	ToAPI() *api.Build
	Save(ctx context.Context) apperrors.Error
	Update(ctx context.Context, resourceJSON []byte) apperrors.Error
	Delete(ctx context.Context) apperrors.Error
	Approve(ctx context.Context) apperrors.Error
	Publish(ctx context.Context) apperrors.Error
	Price(ctx context.Context) (*api.BuildPrice, apperrors.Error)
	CheckCompat(ctx context.Context) (*api.CompatReport, apperrors.Error)
}

type buildSchema struct {
	Name   string            `json:"name" validate:"required,min=1,max=256"`
	Tier   string            `json:"tier" validate:"omitempty,max=64"`
	Family string            `json:"family" validate:"omitempty,max=64"`
	Image  string            `json:"image" validate:"omitempty,max=512"`
	Parts  []buildPartSchema `json:"parts" validate:"omitempty,dive"`
}

type buildPartSchema struct {
	PartID        string   `json:"partId" validate:"required,partSlug"`
	Quantity      int      `json:"quantity" validate:"min=1,max=99"`
	PriceOverride *float64 `json:"priceOverride,omitempty" validate:"omitempty,gt=0"`
}

type buildManager struct {
	build models.Build
}

var _ BuildManager = (*buildManager)(nil)

func (bs *buildSchema) Validate() schemaerr.ValidationErrors {
	var validationErrors schemaerr.ValidationErrors

	err := schemavalidator.V().Struct(bs)
	if err == nil {
		return validationErrors
	}

	validatorErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(validationErrors, schemaerr.ErrInvalidSchema)
	}

	value := reflect.ValueOf(bs).Elem()
	typeOfCS := value.Type()

	for _, e := range validatorErrors {
		jsonFieldName := schemavalidator.GetJSONFieldPath(value, typeOfCS, e.StructField())

		switch e.Tag() {
		case "required":
			validationErrors = append(validationErrors, schemaerr.ErrMissingRequiredAttribute(jsonFieldName))
		case "partSlug":
			val, _ := e.Value().(string)
			validationErrors = append(validationErrors, schemaerr.ErrInvalidNameFormat(jsonFieldName, val))
		case "gt":
			validationErrors = append(validationErrors, schemaerr.ErrInvalidPrice(jsonFieldName))
		case "min", "max":
			if e.StructField() == "Quantity" {
				validationErrors = append(validationErrors, schemaerr.ErrInvalidQuantity(jsonFieldName))
			} else {
				validationErrors = append(validationErrors, schemaerr.ErrValidationFailed(jsonFieldName))
			}
		default:
			validationErrors = append(validationErrors, schemaerr.ErrValidationFailed(jsonFieldName))
		}
	}

	return validationErrors
}

func (bs *buildSchema) toParts() []models.BuildPart {
	parts := make([]models.BuildPart, 0, len(bs.Parts))
	for _, p := range bs.Parts {
		bp := models.BuildPart{
			PartID:   p.PartID,
			Quantity: p.Quantity,
		}
		if p.PriceOverride != nil {
			v := *p.PriceOverride
			bp.PriceOverride = &v
		}
		parts = append(parts, bp)
	}
	return parts
}

func parseBuildSchema(resourceJSON []byte) (*buildSchema, apperrors.Error) {
	if len(resourceJSON) == 0 {
		return nil, ErrEmptySchema
	}
	bs := &buildSchema{}
	if err := json.Unmarshal(resourceJSON, bs); err != nil {
		return nil, ErrInvalidSchema.Err(err)
	}
	if validationErrors := bs.Validate(); validationErrors != nil {
		return nil, ErrInvalidSchema.Err(validationErrors)
	}
	return bs, nil
}

// NewBuildManager creates a draft build from a request body. The build is
// not persisted until Save.
func NewBuildManager(ctx context.Context, resourceJSON []byte) (BuildManager, apperrors.Error) {
	bs, err := parseBuildSchema(resourceJSON)
	if err != nil {
		return nil, err
	}

	build := models.Build{
		BuildID: uuid.New(),
		Name:    bs.Name,
		Status:  string(api.BuildStatusDraft),
		Tier:    bs.Tier,
		Family:  bs.Family,
		Image:   bs.Image,
		Parts:   bs.toParts(),
	}

	return &buildManager{
		build: build,
	}, nil
}

// LoadBuildManager loads an existing build by id.
func LoadBuildManager(ctx context.Context, buildID uuid.UUID) (BuildManager, apperrors.Error) {
	if buildID == uuid.Nil {
		return nil, ErrInvalidBuild.Msg("build id is required")
	}
	build, err := db.DB(ctx).GetBuild(ctx, buildID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, ErrBuildNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("build_id", buildID.String()).Msg("failed to load build")
		return nil, ErrUnableToLoadObject.Err(err)
	}
	return &buildManager{
		build: *build,
	}, nil
}

// ParseBuildID parses a path or argument value into a build id.
func ParseBuildID(s string) (uuid.UUID, apperrors.Error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}
	return id, nil
}

func (bm *buildManager) ID() uuid.UUID {
	return bm.build.BuildID
}

func (bm *buildManager) Name() string {
	return bm.build.Name
}

func (bm *buildManager) Status() api.BuildStatus {
	return api.BuildStatus(bm.build.Status)
}

func (bm *buildManager) Build() *models.Build {
	return &bm.build
}

func (bm *buildManager) ToAPI() *api.Build {
	return buildToAPI(&bm.build)
}

func (bm *buildManager) Save(ctx context.Context) apperrors.Error {
	err := db.DB(ctx).CreateBuild(ctx, &bm.build)
	if err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return ErrAlreadyExists.Msg("build already exists")
		}
		if errors.Is(err, dberror.ErrInvalidInput) {
			return ErrInvalidBuild.Err(err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to create build")
		return err
	}
	bm.refresh(ctx)
	return nil
}

// Update replaces the build's content from a request body. The status always
// returns to draft so the changed build goes through curation again.
func (bm *buildManager) Update(ctx context.Context, resourceJSON []byte) apperrors.Error {
	bs, aerr := parseBuildSchema(resourceJSON)
	if aerr != nil {
		return aerr
	}

	bm.build.Name = bs.Name
	bm.build.Tier = bs.Tier
	bm.build.Family = bs.Family
	bm.build.Image = bs.Image
	bm.build.Parts = bs.toParts()
	bm.build.Status = string(api.BuildStatusDraft)

	err := db.DB(ctx).UpdateBuild(ctx, &bm.build)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrBuildNotFound
		}
		if errors.Is(err, dberror.ErrInvalidInput) {
			return ErrInvalidBuild.Err(err)
		}
		log.Ctx(ctx).Error().Err(err).Str("build_id", bm.build.BuildID.String()).Msg("failed to update build")
		return ErrUnableToUpdateObject.Err(err)
	}
	bm.refresh(ctx)
	return nil
}

func (bm *buildManager) Delete(ctx context.Context) apperrors.Error {
	err := db.DB(ctx).DeleteBuild(ctx, bm.build.BuildID)
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrBuildNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("build_id", bm.build.BuildID.String()).Msg("failed to delete build")
		return ErrUnableToDeleteObject.Err(err)
	}
	return nil
}

func (bm *buildManager) Approve(ctx context.Context) apperrors.Error {
	if bm.build.Status != string(api.BuildStatusDraft) {
		return ErrInvalidTransition.Msg("only draft builds can be approved, status is " + bm.build.Status)
	}
	return bm.transition(ctx, string(api.BuildStatusApproved))
}

// Publish moves an approved build to published. The gate re-checks every
// referenced part and the compatibility rules; any violation rejects the
// transition and the build stays approved.
func (bm *buildManager) Publish(ctx context.Context) apperrors.Error {
	if bm.build.Status != string(api.BuildStatusApproved) {
		return ErrInvalidTransition.Msg("only approved builds can be published, status is " + bm.build.Status)
	}

	violations := bm.publishViolations(ctx)
	if len(violations) > 0 {
		return ErrPublishBlocked.Msg(strings.Join(violations, "; "))
	}

	return bm.transition(ctx, string(api.BuildStatusPublished))
}

// publishViolations collects every reason the build cannot go live. A part
// counts as approved only when the flag was explicitly set true; a nil
// usable flag does not block, an explicit false does.
func (bm *buildManager) publishViolations(ctx context.Context) []string {
	var violations []string

	for _, bp := range bm.build.Parts {
		part, err := db.DB(ctx).GetPart(ctx, bp.PartID)
		if err != nil {
			violations = append(violations, fmt.Sprintf("part %s not found", bp.PartID))
			continue
		}
		if part.IsDeleted {
			violations = append(violations, fmt.Sprintf("part %s is deleted", bp.PartID))
		}
		if part.Approved == nil || !*part.Approved {
			violations = append(violations, fmt.Sprintf("part %s is not approved", bp.PartID))
		}
		if part.Usable != nil && !*part.Usable {
			violations = append(violations, fmt.Sprintf("part %s is marked not usable", bp.PartID))
		}
	}

	report, err := bm.CheckCompat(ctx)
	if err != nil {
		violations = append(violations, "compatibility check failed")
		return violations
	}
	for _, issue := range report.Issues {
		if issue.Severity == CompatSeverityError {
			violations = append(violations, issue.Message)
		}
	}

	return violations
}

func (bm *buildManager) transition(ctx context.Context, to string) apperrors.Error {
	prev := bm.build.Status
	bm.build.Status = to
	err := db.DB(ctx).UpdateBuild(ctx, &bm.build)
	if err != nil {
		bm.build.Status = prev
		if errors.Is(err, dberror.ErrNotFound) {
			return ErrBuildNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("build_id", bm.build.BuildID.String()).Msg("failed to update build status")
		return ErrUnableToUpdateObject.Err(err)
	}
	bm.refresh(ctx)
	return nil
}

// refresh re-reads the stored record so timestamps written by the store are
// visible on the manager copy.
func (bm *buildManager) refresh(ctx context.Context) {
	build, err := db.DB(ctx).GetBuild(ctx, bm.build.BuildID)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("build_id", bm.build.BuildID.String()).Msg("failed to refresh build")
		return
	}
	bm.build = *build
}

// ListBuilds returns all builds, most recently updated first.
func ListBuilds(ctx context.Context) ([]api.Build, apperrors.Error) {
	builds, err := db.DB(ctx).ListBuilds(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list builds")
		return nil, ErrUnableToLoadObject.Err(err)
	}
	result := make([]api.Build, 0, len(builds))
	for _, b := range builds {
		result = append(result, *buildToAPI(b))
	}
	return result, nil
}

func buildToAPI(b *models.Build) *api.Build {
	parts := make([]api.BuildPart, 0, len(b.Parts))
	for _, p := range b.Parts {
		parts = append(parts, api.BuildPart{
			PartID:        p.PartID,
			Quantity:      p.Quantity,
			PriceOverride: p.PriceOverride,
		})
	}
	return &api.Build{
		BuildID:   b.BuildID.String(),
		Name:      b.Name,
		Status:    api.BuildStatus(b.Status),
		Tier:      b.Tier,
		Family:    b.Family,
		Image:     b.Image,
		Parts:     parts,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
