// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"errors"

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
		rpc.Mutation("createUser", rpc.Public, h.CreateUser),
		rpc.Query("me", rpc.Authenticated, h.Me),
	}
}

// CreateUser is open to anonymous callers, but only an admin may create
// another admin.
func (h *Handler) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*UserResponse, error) {
	if req.Role == RoleAdmin {
		caller, ok := middleware.GetCaller(ctx)
		if !ok || !caller.IsAdmin() {
			return nil, core.ForbiddenError("only admins can create admin accounts")
		}
	}

	user, err := h.service.Create(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("email")
		}
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (h *Handler) Me(ctx context.Context, _ rpc.Empty) (*UserResponse, error) {
	caller, err := rpc.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.service.GetUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}
