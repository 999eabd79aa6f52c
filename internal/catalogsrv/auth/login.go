package auth

import (
	"context"
	"time"

	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies the admin password against the configured bcrypt hash and
// mints a bearer token. Wrong passwords and empty passwords are the same
// error, so responses leak nothing about the configured credential.
func Login(ctx context.Context, password string) (string, time.Time, apperrors.Error) {
	authCfg := config.Config().Auth
	if !authCfg.LoginEnabled() {
		return "", time.Time{}, ErrLoginDisabled
	}
	if password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(authCfg.AdminPasswordHash), []byte(password)); err != nil {
		log.Ctx(ctx).Warn().Msg("admin login rejected")
		return "", time.Time{}, ErrInvalidCredentials
	}
	return CreateAdminToken(ctx)
}
