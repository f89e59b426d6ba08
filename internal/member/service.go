// AngelaMos | 2026
// service.go

package member

import (
	"context"
	"errors"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/events"
)

type Service struct {
	repo    Repository
	emitter *events.Emitter
}

func NewService(repo Repository, emitter *events.Emitter) *Service {
	return &Service{repo: repo, emitter: emitter}
}

func (s *Service) Create(
	ctx context.Context,
	req CreateMemberRequest,
) (*Member, error) {
	m := &Member{
		UserID:              req.UserID,
		UniversityName:      req.UniversityName,
		LibraryHeadName:     req.LibraryHeadName,
		LibraryHeadPhone:    req.LibraryHeadPhone,
		PicName:             req.PicName,
		PicPhone:            req.PicPhone,
		InstitutionAddress:  req.InstitutionAddress,
		Province:            req.Province,
		InstitutionEmail:    req.InstitutionEmail,
		LibraryWebsiteURL:   req.LibraryWebsiteURL,
		OpacURL:             req.OpacURL,
		RepositoryStatus:    req.RepositoryStatus,
		AccreditationStatus: req.AccreditationStatus,
		MembershipStatus:    MembershipPending,
	}
	if req.BookCollectionCount != nil {
		m.BookCollectionCount = *req.BookCollectionCount
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	core.TagMember(ctx, m.ID)

	s.emitter.Emit(ctx, events.MemberCreated, events.MemberCreatedData{
		MemberID:       m.ID,
		UserID:         m.UserID,
		UniversityName: m.UniversityName,
	})

	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUserID returns nil without an error when the user has no member.
func (s *Service) GetByUserID(
	ctx context.Context,
	userID int64,
) (*Member, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Member, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(
	ctx context.Context,
	req UpdateMemberRequest,
) (*Member, error) {
	core.TagMember(ctx, req.ID)

	m, err := s.repo.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events.MemberUpdated, events.MemberUpdatedData{
		MemberID:         m.ID,
		MembershipStatus: string(m.MembershipStatus),
	})

	return m, nil
}
