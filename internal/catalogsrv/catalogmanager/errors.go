package catalogmanager

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// Base catalog error
var (
	ErrCatalogError apperrors.Error = apperrors.New("catalog processing failed").SetStatusCode(http.StatusInternalServerError)
)

// Not found errors
var (
	ErrPartNotFound  apperrors.Error = ErrCatalogError.New("part not found").SetStatusCode(http.StatusNotFound)
	ErrBuildNotFound apperrors.Error = ErrCatalogError.New("build not found").SetStatusCode(http.StatusNotFound)
)

// Ops errors
var (
	ErrUnableToLoadObject   apperrors.Error = ErrCatalogError.New("failed to load object").SetStatusCode(http.StatusInternalServerError)
	ErrUnableToUpdateObject apperrors.Error = ErrCatalogError.New("failed to update object").SetExpandError(true).SetStatusCode(http.StatusInternalServerError)
	ErrUnableToDeleteObject apperrors.Error = ErrCatalogError.New("failed to delete object").SetStatusCode(http.StatusInternalServerError)
)

// Conflict errors
var (
	ErrAlreadyExists apperrors.Error = ErrCatalogError.New("object already exists").SetStatusCode(http.StatusConflict)
)

// Validation errors
var (
	ErrInvalidRequest    apperrors.Error = ErrCatalogError.New("invalid request").SetStatusCode(http.StatusBadRequest)
	ErrInvalidPartID     apperrors.Error = ErrCatalogError.New("invalid part id").SetStatusCode(http.StatusBadRequest)
	ErrInvalidBuild      apperrors.Error = ErrCatalogError.New("invalid build").SetStatusCode(http.StatusBadRequest)
	ErrInvalidUUID       apperrors.Error = ErrCatalogError.New("invalid UUID").SetStatusCode(http.StatusBadRequest)
	ErrInvalidTransition apperrors.Error = ErrCatalogError.New("invalid status transition").SetExpandError(true).SetStatusCode(http.StatusConflict)
	ErrPublishBlocked    apperrors.Error = ErrCatalogError.New("build cannot be published").SetExpandError(true).SetStatusCode(http.StatusConflict)
)

// Schema validation errors
var (
	ErrSchemaValidation apperrors.Error = apperrors.New("error validating request").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
	ErrEmptySchema      apperrors.Error = ErrSchemaValidation.New("empty request body").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
	ErrInvalidSchema    apperrors.Error = ErrSchemaValidation.New("invalid request body").SetExpandError(true).SetStatusCode(http.StatusBadRequest)
)
