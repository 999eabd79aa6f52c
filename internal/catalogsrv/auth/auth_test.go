package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rigforge/rigforge/internal/catalogsrv/catcommon"
	"github.com/rigforge/rigforge/internal/catalogsrv/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "correct horse battery staple"

// enableLogin resets the config and wires in a bcrypt hash plus signing
// secret so logins succeed. The checked-in test config ships with login
// disabled.
func enableLogin(t *testing.T) {
	t.Helper()
	config.TestInit()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config()
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Auth.TokenSecret = "0123456789abcdef0123456789abcdef"
}

// signTestToken mints a token with the standard admin claims, letting the
// caller mutate them to produce invalid variants.
func signTestToken(t *testing.T, mutate func(claims jwt.MapClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": string(catcommon.SubjectTypeAdmin),
		"iss": tokenIssuer(),
		"aud": []string{tokenAudience},
		"exp": jwt.NewNumericDate(now.Add(time.Hour)),
		"iat": jwt.NewNumericDate(now),
		"nbf": jwt.NewNumericDate(now),
		"jti": "test-jti",
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Config().Auth.TokenSecret))
	require.NoError(t, err)
	return signed
}

func TestLogin(t *testing.T) {
	enableLogin(t)
	ctx := context.Background()

	token, expiry, err := Login(ctx, testAdminPassword)
	require.Nil(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiry, time.Minute)

	validatedCtx, err := ValidateToken(ctx, token)
	require.Nil(t, err)
	subject := catcommon.GetSubjectContext(validatedCtx)
	require.NotNil(t, subject)
	assert.Equal(t, catcommon.SubjectTypeAdmin, subject.Subject)
	assert.NotEmpty(t, subject.TokenID)
}

func TestLoginWrongPassword(t *testing.T) {
	enableLogin(t)

	_, _, err := Login(context.Background(), "not the password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginEmptyPassword(t *testing.T) {
	enableLogin(t)

	_, _, err := Login(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabled(t *testing.T) {
	config.TestInit()

	_, _, err := Login(context.Background(), testAdminPassword)
	assert.ErrorIs(t, err, ErrLoginDisabled)

	_, err2 := ValidateToken(context.Background(), "whatever")
	assert.ErrorIs(t, err2, ErrLoginDisabled)
}

func TestValidateTokenTampered(t *testing.T) {
	enableLogin(t)
	ctx := context.Background()

	token, _, err := CreateAdminToken(ctx)
	require.Nil(t, err)

	_, verr := ValidateToken(ctx, token+"x")
	assert.ErrorIs(t, verr, ErrUnableToParseToken)
}

func TestValidateTokenExpired(t *testing.T) {
	enableLogin(t)

	token := signTestToken(t, func(claims jwt.MapClaims) {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(-10 * time.Minute))
	})
	_, err := ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnableToParseToken)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	enableLogin(t)

	token := signTestToken(t, func(claims jwt.MapClaims) {
		claims["aud"] = []string{"someone-else"}
	})
	_, err := ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnableToParseToken)
}

func TestValidateTokenWrongSigningMethod(t *testing.T) {
	enableLogin(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": string(catcommon.SubjectTypeAdmin),
		"iss": tokenIssuer(),
		"aud": []string{tokenAudience},
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		"iat": jwt.NewNumericDate(time.Now()),
		"nbf": jwt.NewNumericDate(time.Now()),
		"jti": "test-jti",
	})
	signed, err := token.SignedString([]byte(config.Config().Auth.TokenSecret))
	require.NoError(t, err)

	_, verr := ValidateToken(context.Background(), signed)
	assert.ErrorIs(t, verr, ErrUnableToParseToken)
}

func TestValidateTokenMissingClaim(t *testing.T) {
	enableLogin(t)

	token := signTestToken(t, func(claims jwt.MapClaims) {
		delete(claims, "jti")
	})
	_, err := ValidateToken(context.Background(), token)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "missing required claim: jti")
}

func TestValidateTokenWrongSubject(t *testing.T) {
	enableLogin(t)

	token := signTestToken(t, func(claims jwt.MapClaims) {
		claims["sub"] = "someone"
	})
	_, err := ValidateToken(context.Background(), token)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown subject")
}

func TestAdminAuthMiddleware(t *testing.T) {
	enableLogin(t)

	token, _, err := CreateAdminToken(context.Background())
	require.Nil(t, err)

	var subject *catcommon.SubjectContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = catcommon.GetSubjectContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/parts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	AdminAuthMiddleware(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, subject)
	assert.Equal(t, catcommon.SubjectTypeAdmin, subject.Subject)
}

func TestAdminAuthMiddlewareRejects(t *testing.T) {
	enableLogin(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic YWRtaW46cGFzcw=="},
		{"garbage token", "Bearer not-a-token"},
		{"empty token", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/parts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			AdminAuthMiddleware(next).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.False(t, called)
		})
	}
}

func TestAdminAuthMiddlewareTestToken(t *testing.T) {
	config.TestInit()
	config.Config().Auth.TestAdminToken = "fixed-test-token"

	var subject *catcommon.SubjectContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = catcommon.GetSubjectContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/parts", nil)
	req.Header.Set("Authorization", "Bearer fixed-test-token")
	AdminAuthMiddleware(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, subject)
	assert.Equal(t, "test-admin", subject.TokenID)

	// An unset test token must never match, even against an empty bearer.
	config.Config().Auth.TestAdminToken = ""
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/parts", nil)
	req.Header.Set("Authorization", "Bearer ")
	AdminAuthMiddleware(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
