package dberror

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

var (
	ErrDatabase       apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists  apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound       apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput   apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrMissingPartID  apperrors.Error = ErrInvalidInput.New("missing part id").SetStatusCode(http.StatusBadRequest)
	ErrNotInitialized apperrors.Error = ErrDatabase.New("database not initialized").SetStatusCode(http.StatusServiceUnavailable)
)
