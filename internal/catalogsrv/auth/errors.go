package auth

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/common/apperrors"
)

// Base auth error
var (
	ErrAuth apperrors.Error = apperrors.New("auth error").SetStatusCode(http.StatusInternalServerError)
)

// Authorization errors
var (
	ErrLoginDisabled      apperrors.Error = ErrAuth.New("admin login is not configured").SetStatusCode(http.StatusServiceUnavailable)
	ErrInvalidCredentials apperrors.Error = ErrAuth.New("invalid credentials").SetStatusCode(http.StatusUnauthorized)
	ErrInvalidToken       apperrors.Error = ErrAuth.New("invalid token").SetStatusCode(http.StatusUnauthorized)
	ErrUnableToParseToken apperrors.Error = ErrAuth.New("unable to parse token").SetStatusCode(http.StatusUnauthorized)
)

// Token errors
var (
	ErrTokenGeneration apperrors.Error = ErrAuth.New("failed to generate token").SetStatusCode(http.StatusInternalServerError)
)
