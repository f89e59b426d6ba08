// AngelaMos | 2026
// dashboard.go

package admin

import (
	"context"
	"fmt"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/member"
	"github.com/apptnu/portal/internal/registration"
)

type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

type StatsRepository interface {
	MemberStatusCounts(ctx context.Context) ([]StatusCount, error)
	PaymentStatusCounts(ctx context.Context) ([]StatusCount, error)
	RegistrationsWithDocuments(ctx context.Context) (int64, error)
}

type statsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) MemberStatusCounts(
	ctx context.Context,
) ([]StatusCount, error) {
	query := `
		SELECT membership_status::text AS status, COUNT(*) AS count
		FROM members
		GROUP BY membership_status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count members by status: %w", err)
	}

	return counts, nil
}

func (r *statsRepository) PaymentStatusCounts(
	ctx context.Context,
) ([]StatusCount, error) {
	query := `
		SELECT payment_status::text AS status, COUNT(*) AS count
		FROM registrations
		GROUP BY payment_status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count registrations by payment status: %w", err)
	}

	return counts, nil
}

func (r *statsRepository) RegistrationsWithDocuments(
	ctx context.Context,
) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE receipt_url IS NOT NULL OR certificate_url IS NOT NULL`

	var n int64
	if err := r.db.GetContext(ctx, &n, query); err != nil {
		return 0, fmt.Errorf("count registrations with documents: %w", err)
	}

	return n, nil
}

type DashboardService struct {
	repo StatsRepository
}

func NewDashboardService(repo StatsRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// Stats reports every known status, including those with no rows.
func (s *DashboardService) Stats(
	ctx context.Context,
) (*DashboardStatsResponse, error) {
	memberCounts, err := s.repo.MemberStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	paymentCounts, err := s.repo.PaymentStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	withDocs, err := s.repo.RegistrationsWithDocuments(ctx)
	if err != nil {
		return nil, err
	}

	resp := &DashboardStatsResponse{
		MembersByStatus:            make(map[string]int64, len(member.MembershipStatuses)),
		RegistrationsByPayment:     make(map[string]int64, len(registration.PaymentStatuses)),
		RegistrationsWithDocuments: withDocs,
	}

	for _, st := range member.MembershipStatuses {
		resp.MembersByStatus[string(st)] = 0
	}
	for _, c := range memberCounts {
		resp.MembersByStatus[c.Status] += c.Count
		resp.TotalMembers += c.Count
	}

	for _, st := range registration.PaymentStatuses {
		resp.RegistrationsByPayment[string(st)] = 0
	}
	for _, c := range paymentCounts {
		resp.RegistrationsByPayment[c.Status] += c.Count
		resp.TotalRegistrations += c.Count
	}

	return resp, nil
}
