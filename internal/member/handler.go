// AngelaMos | 2026
// handler.go

package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/apptnu/portal/internal/core"
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
		rpc.Mutation("createMember", rpc.Authenticated, h.CreateMember),
		rpc.Query("getMemberByUserId", rpc.Authenticated, h.GetMemberByUserID),
		rpc.Query("getAllMembers", rpc.AdminOnly, h.GetAllMembers),
		rpc.Mutation("updateMember", rpc.AdminOnly, h.UpdateMember),
	}
}

func (h *Handler) CreateMember(
	ctx context.Context,
	req CreateMemberRequest,
) (*MemberResponse, error) {
	if err := rpc.RequireOwner(ctx, req.UserID); err != nil {
		return nil, err
	}

	m, err := h.service.Create(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrForeignKey):
			return nil, core.ForeignKeyError(
				fmt.Sprintf("user with id %d does not exist", req.UserID),
			)
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.DuplicateError("member for this user")
		}
		return nil, err
	}

	return ToMemberResponse(m), nil
}

func (h *Handler) GetMemberByUserID(
	ctx context.Context,
	req GetByUserIDRequest,
) (*MemberResponse, error) {
	if err := rpc.RequireOwner(ctx, req.UserID); err != nil {
		return nil, err
	}

	m, err := h.service.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return ToMemberResponse(m), nil
}

func (h *Handler) GetAllMembers(
	ctx context.Context,
	_ rpc.Empty,
) ([]MemberResponse, error) {
	members, err := h.service.List(ctx)
	if err != nil {
		return nil, err
	}

	return ToMemberResponseList(members), nil
}

func (h *Handler) UpdateMember(
	ctx context.Context,
	req UpdateMemberRequest,
) (*MemberResponse, error) {
	m, err := h.service.Update(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError(fmt.Sprintf("member with id %d", req.ID))
		}
		return nil, err
	}

	return ToMemberResponse(m), nil
}
