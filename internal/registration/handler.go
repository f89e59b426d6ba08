// AngelaMos | 2026
// handler.go

package registration

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/member"
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
		rpc.Mutation("createRegistration", rpc.Authenticated, h.CreateRegistration),
		rpc.Query("getRegistrationsByMemberId", rpc.Authenticated, h.GetRegistrationsByMemberID),
		rpc.Query("getAllRegistrations", rpc.AdminOnly, h.GetAllRegistrations),
		rpc.Query("getMemberWithRegistrations", rpc.Authenticated, h.GetMemberWithRegistrations),
		rpc.Mutation("updatePaymentStatus", rpc.AdminOnly, h.UpdatePaymentStatus),
		rpc.Mutation("uploadDocument", rpc.AdminOnly, h.UploadDocument),
	}
}

func (h *Handler) CreateRegistration(
	ctx context.Context,
	req CreateRegistrationRequest,
) (*RegistrationResponse, error) {
	reg, err := h.service.Create(ctx, req, ownerOf(ctx))
	if err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound):
			return nil, memberNotFoundError(req.MemberID)
		case errors.Is(err, core.ErrForeignKey):
			return nil, core.ForeignKeyError(
				fmt.Sprintf("member with id %d does not exist", req.MemberID),
			)
		}
		return nil, err
	}

	return ToRegistrationResponse(reg), nil
}

func (h *Handler) GetRegistrationsByMemberID(
	ctx context.Context,
	req GetByMemberIDRequest,
) ([]RegistrationResponse, error) {
	regs, err := h.service.ListByMember(ctx, req.MemberID, ownerOf(ctx))
	if err != nil {
		return nil, err
	}

	return ToRegistrationResponseList(regs), nil
}

func (h *Handler) GetAllRegistrations(
	ctx context.Context,
	_ rpc.Empty,
) ([]RegistrationResponse, error) {
	regs, err := h.service.List(ctx)
	if err != nil {
		return nil, err
	}

	return ToRegistrationResponseList(regs), nil
}

func (h *Handler) GetMemberWithRegistrations(
	ctx context.Context,
	req GetByUserIDRequest,
) (*MemberWithRegistrationsResponse, error) {
	if err := rpc.RequireOwner(ctx, req.UserID); err != nil {
		return nil, err
	}

	result, err := h.service.GetMemberWithRegistrations(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	return &MemberWithRegistrationsResponse{
		Member:        member.ToMemberResponse(result.Member),
		Registrations: ToRegistrationResponseList(result.Registrations),
	}, nil
}

func (h *Handler) UpdatePaymentStatus(
	ctx context.Context,
	req UpdatePaymentStatusRequest,
) (*RegistrationResponse, error) {
	reg, err := h.service.UpdatePaymentStatus(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError(
				fmt.Sprintf("registration with id %d", req.RegistrationID),
			)
		}
		return nil, err
	}

	return ToRegistrationResponse(reg), nil
}

func (h *Handler) UploadDocument(
	ctx context.Context,
	req UploadDocumentRequest,
) (*RegistrationResponse, error) {
	reg, err := h.service.UploadDocument(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError(
				fmt.Sprintf("registration with id %d", req.RegistrationID),
			)
		}
		return nil, err
	}

	return ToRegistrationResponse(reg), nil
}

// ownerOf returns nil for admins so their requests skip the member lookup.
func ownerOf(ctx context.Context) Authorizer {
	caller, err := rpc.CallerFrom(ctx)
	if err == nil && caller.IsAdmin() {
		return nil
	}

	return func(m *member.Member) error {
		return rpc.RequireOwner(ctx, m.UserID)
	}
}

func memberNotFoundError(memberID int64) *core.AppError {
	return core.NewAppError(
		ErrMemberNotFound,
		fmt.Sprintf("member with id %d does not exist", memberID),
		http.StatusNotFound,
		"MEMBER_NOT_FOUND",
	)
}
