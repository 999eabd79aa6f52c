package schemavalidator

import (
	"regexp"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/pkg/api"
	"github.com/rigforge/rigforge/pkg/types"
)

// Part identifiers are either derived slugs (lowercase, dashes) or explicit
// source SKUs kept verbatim, so the shape check only rules out whitespace,
// path separators, and oversized values.
var partIDRegex = regexp.MustCompile(`^[^\s/]+$`)

// partSlugValidator checks a part identifier reference.
func partSlugValidator(fl validator.FieldLevel) bool {
	var str string
	if ns, ok := fl.Field().Interface().(types.NullableString); ok {
		if ns.IsNil() {
			return true
		}
		str = ns.String()
	} else {
		str = fl.Field().String()
	}
	return ValidatePartID(str)
}

// ValidatePartID reports whether id is a storable part identifier.
func ValidatePartID(id string) bool {
	if len(id) == 0 || len(id) > catcommon.PartIDMaxLength {
		return false
	}
	return partIDRegex.MatchString(id)
}

const categoryLabelRegex = `^[a-z0-9][a-z0-9_-]*$`
const categoryLabelMaxLength = 64

// categoryLabelValidator checks a category tag. Labels outside the known set
// are allowed; only the shape is enforced.
func categoryLabelValidator(fl validator.FieldLevel) bool {
	var str string
	if ns, ok := fl.Field().Interface().(types.NullableString); ok {
		if ns.IsNil() {
			return true
		}
		str = ns.String()
	} else {
		str = fl.Field().String()
	}
	if len(str) > categoryLabelMaxLength {
		return false
	}
	re := regexp.MustCompile(categoryLabelRegex)
	return re.MatchString(str)
}

var validBuildStatuses = []string{
	string(api.BuildStatusDraft),
	string(api.BuildStatusApproved),
	string(api.BuildStatusPublished),
}

// buildStatusValidator checks the build lifecycle state label.
func buildStatusValidator(fl validator.FieldLevel) bool {
	return slices.Contains(validBuildStatuses, fl.Field().String())
}

// ValidateBuildStatus reports whether status is a known lifecycle state.
func ValidateBuildStatus(status string) bool {
	return slices.Contains(validBuildStatuses, status)
}

// notNull checks that a nullable value carries a concrete value.
func notNull(fl validator.FieldLevel) bool {
	nv, ok := fl.Field().Interface().(types.Nullable)
	if !ok { // not a nullable type
		return true
	}
	return !nv.IsNil()
}

// nullablePrice accepts an absent field, an explicit null, or a positive
// amount. Zero and negative prices never validate; null is how "price
// unknown" is written.
func nullablePrice(fl validator.FieldLevel) bool {
	nf, ok := fl.Field().Interface().(types.NullableFloat64)
	if !ok {
		return true
	}
	if !nf.Present || nf.IsNil() {
		return true
	}
	return nf.Value > 0
}

func init() {
	V().RegisterValidation("partSlug", partSlugValidator)
	V().RegisterValidation("categoryLabel", categoryLabelValidator)
	V().RegisterValidation("buildStatus", buildStatusValidator)
	V().RegisterValidation("notNull", notNull)
	V().RegisterValidation("nullablePrice", nullablePrice)
}
