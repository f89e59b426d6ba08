// AngelaMos | 2026
// service.go

package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/events"
	"github.com/apptnu/portal/internal/member"
)

var ErrMemberNotFound = errors.New("member not found")

type MemberFinder interface {
	GetByID(ctx context.Context, id int64) (*member.Member, error)
	GetByUserID(ctx context.Context, userID int64) (*member.Member, error)
}

// Authorizer decides whether the caller may act on a member's records.
// A nil Authorizer allows everything.
type Authorizer func(m *member.Member) error

type MemberWithRegistrations struct {
	Member        *member.Member
	Registrations []Registration
}

type Service struct {
	repo    Repository
	members MemberFinder
	emitter *events.Emitter
}

func NewService(
	repo Repository,
	members MemberFinder,
	emitter *events.Emitter,
) *Service {
	return &Service{repo: repo, members: members, emitter: emitter}
}

// Create checks that the member exists before inserting, so a missing
// member is reported as ErrMemberNotFound rather than a constraint
// violation. The foreign key still guards the gap between the two.
func (s *Service) Create(
	ctx context.Context,
	req CreateRegistrationRequest,
	authorize Authorizer,
) (*Registration, error) {
	core.TagMember(ctx, req.MemberID)

	m, err := s.members.GetByID(ctx, req.MemberID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf(
			"member with id %d does not exist: %w",
			req.MemberID,
			ErrMemberNotFound,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if authorize != nil {
		if err := authorize(m); err != nil {
			return nil, err
		}
	}

	reg := &Registration{
		MemberID:         req.MemberID,
		RegistrationType: req.RegistrationType,
		PaymentProofURL:  req.PaymentProofURL,
		PaymentStatus:    PaymentPending,
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	core.TagRegistration(ctx, reg.ID)

	s.emitter.Emit(ctx, events.RegistrationCreated, events.RegistrationCreatedData{
		RegistrationID:   reg.ID,
		MemberID:         reg.MemberID,
		RegistrationType: string(reg.RegistrationType),
	})

	return reg, nil
}

// ListByMember returns the member's registrations in id order. When an
// authorizer is given the member is resolved first; an unknown member
// yields an empty list.
func (s *Service) ListByMember(
	ctx context.Context,
	memberID int64,
	authorize Authorizer,
) ([]Registration, error) {
	if authorize != nil {
		m, err := s.members.GetByID(ctx, memberID)
		if errors.Is(err, core.ErrNotFound) {
			return []Registration{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		if err := authorize(m); err != nil {
			return nil, err
		}
	}

	return s.repo.ListByMemberID(ctx, memberID)
}

func (s *Service) List(ctx context.Context) ([]Registration, error) {
	return s.repo.List(ctx)
}

// GetMemberWithRegistrations returns nil when the user has no member.
// Registrations are only read once a member is found.
func (s *Service) GetMemberWithRegistrations(
	ctx context.Context,
	userID int64,
) (*MemberWithRegistrations, error) {
	m, err := s.members.GetByUserID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member with registrations: %w", err)
	}
	if m == nil {
		return nil, nil
	}

	regs, err := s.repo.ListByMemberID(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &MemberWithRegistrations{Member: m, Registrations: regs}, nil
}

func (s *Service) UpdatePaymentStatus(
	ctx context.Context,
	req UpdatePaymentStatusRequest,
) (*Registration, error) {
	core.TagRegistration(ctx, req.RegistrationID)

	reg, err := s.repo.UpdatePaymentStatus(
		ctx,
		req.RegistrationID,
		req.PaymentStatus,
		req.AdminNotes,
	)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.RegistrationPaymentUpdated, events.PaymentUpdatedData{
		RegistrationID: reg.ID,
		MemberID:       reg.MemberID,
		PaymentStatus:  string(reg.PaymentStatus),
		AdminNotes:     reg.AdminNotes,
	})

	return reg, nil
}

func (s *Service) UploadDocument(
	ctx context.Context,
	req UploadDocumentRequest,
) (*Registration, error) {
	core.TagRegistration(ctx, req.RegistrationID)

	reg, err := s.repo.SetDocument(
		ctx,
		req.RegistrationID,
		req.DocumentType,
		req.DocumentURL,
	)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.RegistrationDocumentUploaded, events.DocumentUploadedData{
		RegistrationID: reg.ID,
		MemberID:       reg.MemberID,
		DocumentType:   string(req.DocumentType),
		DocumentURL:    req.DocumentURL,
	})

	return reg, nil
}
