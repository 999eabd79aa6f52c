package apis

import (
	"net/http"

	"github.com/rigforge/rigforge/internal/catalogsrv/auth"
	"github.com/rigforge/rigforge/internal/common/httpx"
	"github.com/rigforge/rigforge/pkg/api"
)

func adminLogin(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &api.LoginRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}

	token, expiry, err := auth.Login(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.LoginResponse{
			Token:     token,
			TokenType: "Bearer",
			ExpiresAt: expiry,
		},
	}, nil
}
