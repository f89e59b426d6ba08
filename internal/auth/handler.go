// AngelaMos | 2026
// handler.go

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/middleware"
	"github.com/apptnu/portal/internal/rpc"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Procedures() []rpc.Procedure {
	return []rpc.Procedure{
		rpc.Mutation("login", rpc.Public, h.Login),
		rpc.Mutation("logout", rpc.Authenticated, h.Logout),
	}
}

func (h *Handler) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	resp, err := h.service.Login(ctx, req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, core.NewAppError(
				err,
				"invalid email or password",
				http.StatusUnauthorized,
				"INVALID_CREDENTIALS",
			)
		}
		return nil, err
	}

	return resp, nil
}

func (h *Handler) Logout(
	ctx context.Context,
	_ rpc.Empty,
) (*LogoutResponse, error) {
	if err := h.service.Logout(ctx, middleware.GetClaims(ctx)); err != nil {
		return nil, err
	}

	return &LogoutResponse{Revoked: true}, nil
}
