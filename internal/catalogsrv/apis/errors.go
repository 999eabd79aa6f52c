package apis

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

var (
	ErrBadRequest  apperrors.Error = apperrors.New("Bad Request").SetStatusCode(http.StatusBadRequest)
	ErrInvalidRows apperrors.Error = ErrBadRequest.New("rows do not match the import schema").SetExpandError(true)
	ErrRunNotFound apperrors.Error = apperrors.New("import run not found").SetStatusCode(http.StatusNotFound)
)
