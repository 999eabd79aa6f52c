// Package auth implements the single-admin authentication model: one bcrypt
// password in the configuration, HS256 bearer tokens, and middleware that
// stamps the admin subject into the request context.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/rigforge/rigforge/internal/common/apperrors"
	"github.com/rigforge/rigforge/internal/common/uuid"
	"github.com/rs/zerolog/log"
)

const tokenAudience = "rigsrv"

// requiredClaims is the list of claims every admin token must carry.
var requiredClaims = []string{
	"sub",
	"iss",
	"aud",
	"jti",
	"exp",
	"iat",
	"nbf",
}

func tokenIssuer() string {
	return config.Config().ServerHostName + ":" + config.Config().ServerPort
}

// CreateAdminToken mints a bearer token for the admin subject. The token is
// valid for the configured lifetime and backdated by the configured clock
// skew.
func CreateAdminToken(ctx context.Context) (string, time.Time, apperrors.Error) {
	authCfg := config.Config().Auth
	if !authCfg.LoginEnabled() {
		return "", time.Time{}, ErrLoginDisabled
	}

	validity := authCfg.GetTokenValidityOrDefault()
	skew := authCfg.GetClockSkewOrDefault()

	now := time.Now()
	expiry := now.Add(validity)

	claims := jwt.MapClaims{
		"sub": string(catcommon.SubjectTypeAdmin),
		"iss": tokenIssuer(),
		"aud": []string{tokenAudience},
		"exp": jwt.NewNumericDate(expiry),
		"iat": jwt.NewNumericDate(now),
		"nbf": jwt.NewNumericDate(now.Add(-skew)),
		"jti": uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(authCfg.TokenSecret))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to sign token")
		return "", time.Time{}, ErrTokenGeneration.MsgErr("unable to sign token", err)
	}

	return tokenString, expiry, nil
}

// ValidateToken parses and validates an admin bearer token. On success the
// returned context carries the admin subject.
func ValidateToken(ctx context.Context, tokenString string) (context.Context, apperrors.Error) {
	authCfg := config.Config().Auth
	if !authCfg.LoginEnabled() {
		return ctx, ErrLoginDisabled
	}
	skew := authCfg.GetClockSkewOrDefault()

	token, parseErr := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(authCfg.TokenSecret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(tokenAudience),
		jwt.WithIssuer(tokenIssuer()),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(skew),
	)
	if parseErr != nil {
		log.Ctx(ctx).Debug().Err(parseErr).Msg("failed to parse token")
		return ctx, ErrUnableToParseToken.Err(parseErr)
	}
	if !token.Valid {
		return ctx, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, ErrUnableToParseToken
	}
	for _, claim := range requiredClaims {
		if _, ok := claims[claim]; !ok {
			return ctx, ErrInvalidToken.Msg("missing required claim: " + claim)
		}
	}

	sub, _ := claims["sub"].(string)
	if sub != string(catcommon.SubjectTypeAdmin) {
		return ctx, ErrInvalidToken.Msg("unknown subject")
	}

	jti, _ := claims["jti"].(string)
	ctx = catcommon.WithSubjectContext(ctx, &catcommon.SubjectContext{
		Subject: catcommon.SubjectTypeAdmin,
		TokenID: jti,
	})
	return ctx, nil
}
