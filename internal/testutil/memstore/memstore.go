// AngelaMos | 2026
// memstore.go

// Package memstore is an in-memory stand-in for the Postgres
// repositories. It enforces the same unique and foreign key constraints
// and never hands out pointers into its own state.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apptnu/portal/internal/admin"
	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/member"
	"github.com/apptnu/portal/internal/registration"
	"github.com/apptnu/portal/internal/user"
)

type Store struct {
	mu sync.Mutex

	users         []user.User
	members       []member.Member
	registrations []registration.Registration

	lastTick time.Time
}

func New() *Store {
	return &Store{}
}

func (s *Store) Users() user.Repository {
	return &users{s: s}
}

func (s *Store) Members() member.Repository {
	return &members{s: s}
}

func (s *Store) Registrations() registration.Repository {
	return &registrations{s: s}
}

func (s *Store) Stats() admin.StatsRepository {
	return &stats{s: s}
}

// now is strictly increasing so updated_at always advances.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastTick) {
		t = s.lastTick.Add(time.Microsecond)
	}
	s.lastTick = t
	return t
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type users struct {
	s *Store
}

func (r *users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	now := r.s.now()
	u.ID = int64(len(r.s.users) + 1)
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r *users) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (r *users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (r *users) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].PasswordHash = hash
			r.s.users[i].UpdatedAt = r.s.now()
			return nil
		}
	}
	return fmt.Errorf("update password: %w", core.ErrNotFound)
}

type members struct {
	s *Store
}

func (s *Store) userExists(id int64) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func cloneMember(m member.Member) *member.Member {
	m.LibraryWebsiteURL = cloneString(m.LibraryWebsiteURL)
	m.OpacURL = cloneString(m.OpacURL)
	return &m
}

func (r *members) Create(_ context.Context, m *member.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.userExists(m.UserID) {
		return fmt.Errorf("create member: %w", core.ErrForeignKey)
	}
	for _, existing := range r.s.members {
		if existing.UserID == m.UserID {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
	}

	now := r.s.now()
	m.ID = int64(len(r.s.members) + 1)
	m.CreatedAt = now
	m.UpdatedAt = now
	r.s.members = append(r.s.members, *cloneMember(*m))
	return nil
}

func (r *members) GetByID(_ context.Context, id int64) (*member.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.members {
		if m.ID == id {
			return cloneMember(m), nil
		}
	}
	return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
}

func (r *members) GetByUserID(
	_ context.Context,
	userID int64,
) (*member.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, m := range r.s.members {
		if m.UserID == userID {
			return cloneMember(m), nil
		}
	}
	return nil, fmt.Errorf("get member by user: %w", core.ErrNotFound)
}

func (r *members) List(_ context.Context) ([]member.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]member.Member, 0, len(r.s.members))
	for _, m := range r.s.members {
		out = append(out, *cloneMember(m))
	}
	return out, nil
}

func (r *members) Update(
	_ context.Context,
	req member.UpdateMemberRequest,
) (*member.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.members {
		m := &r.s.members[i]
		if m.ID != req.ID {
			continue
		}

		applyString(&m.UniversityName, req.UniversityName)
		applyString(&m.LibraryHeadName, req.LibraryHeadName)
		applyString(&m.LibraryHeadPhone, req.LibraryHeadPhone)
		applyString(&m.PicName, req.PicName)
		applyString(&m.PicPhone, req.PicPhone)
		applyString(&m.InstitutionAddress, req.InstitutionAddress)
		applyString(&m.InstitutionEmail, req.InstitutionEmail)
		if req.Province.HasValue() {
			m.Province = req.Province.Value
		}
		if req.LibraryWebsiteURL.Set {
			m.LibraryWebsiteURL = req.LibraryWebsiteURL.Ptr()
		}
		if req.OpacURL.Set {
			m.OpacURL = req.OpacURL.Ptr()
		}
		if req.RepositoryStatus.HasValue() {
			m.RepositoryStatus = req.RepositoryStatus.Value
		}
		if req.BookCollectionCount.HasValue() {
			m.BookCollectionCount = req.BookCollectionCount.Value
		}
		if req.AccreditationStatus.HasValue() {
			m.AccreditationStatus = req.AccreditationStatus.Value
		}
		if req.MembershipStatus.HasValue() {
			m.MembershipStatus = req.MembershipStatus.Value
		}
		m.UpdatedAt = r.s.now()

		return cloneMember(*m), nil
	}

	return nil, fmt.Errorf("update member: %w", core.ErrNotFound)
}

func applyString(dst *string, o core.Optional[string]) {
	if o.HasValue() {
		*dst = o.Value
	}
}

type registrations struct {
	s *Store
}

func cloneRegistration(reg registration.Registration) *registration.Registration {
	reg.PaymentProofURL = cloneString(reg.PaymentProofURL)
	reg.AdminNotes = cloneString(reg.AdminNotes)
	reg.ReceiptURL = cloneString(reg.ReceiptURL)
	reg.CertificateURL = cloneString(reg.CertificateURL)
	return &reg
}

func (r *registrations) Create(_ context.Context, reg *registration.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := false
	for _, m := range r.s.members {
		if m.ID == reg.MemberID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("create registration: %w", core.ErrForeignKey)
	}

	now := r.s.now()
	reg.ID = int64(len(r.s.registrations) + 1)
	reg.CreatedAt = now
	reg.UpdatedAt = now
	r.s.registrations = append(r.s.registrations, *cloneRegistration(*reg))
	return nil
}

func (r *registrations) GetByID(
	_ context.Context,
	id int64,
) (*registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, reg := range r.s.registrations {
		if reg.ID == id {
			return cloneRegistration(reg), nil
		}
	}
	return nil, fmt.Errorf("get registration: %w", core.ErrNotFound)
}

func (r *registrations) ListByMemberID(
	_ context.Context,
	memberID int64,
) ([]registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []registration.Registration{}
	for _, reg := range r.s.registrations {
		if reg.MemberID == memberID {
			out = append(out, *cloneRegistration(reg))
		}
	}
	return out, nil
}

func (r *registrations) List(_ context.Context) ([]registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]registration.Registration, 0, len(r.s.registrations))
	for _, reg := range r.s.registrations {
		out = append(out, *cloneRegistration(reg))
	}
	return out, nil
}

func (r *registrations) UpdatePaymentStatus(
	_ context.Context,
	id int64,
	status registration.PaymentStatus,
	notes core.Optional[string],
) (*registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.registrations {
		reg := &r.s.registrations[i]
		if reg.ID != id {
			continue
		}
		reg.PaymentStatus = status
		if notes.Set {
			reg.AdminNotes = notes.Ptr()
		}
		reg.UpdatedAt = r.s.now()
		return cloneRegistration(*reg), nil
	}
	return nil, fmt.Errorf("update payment status: %w", core.ErrNotFound)
}

func (r *registrations) SetDocument(
	_ context.Context,
	id int64,
	docType registration.DocumentType,
	url string,
) (*registration.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.registrations {
		reg := &r.s.registrations[i]
		if reg.ID != id {
			continue
		}
		switch docType {
		case registration.DocumentReceipt:
			reg.ReceiptURL = &url
		case registration.DocumentCertificate:
			reg.CertificateURL = &url
		default:
			return nil, fmt.Errorf("set document %q: %w", docType, core.ErrInvalidInput)
		}
		reg.UpdatedAt = r.s.now()
		return cloneRegistration(*reg), nil
	}
	return nil, fmt.Errorf("set document: %w", core.ErrNotFound)
}

type stats struct {
	s *Store
}

func (r *stats) MemberStatusCounts(_ context.Context) ([]admin.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[string]int64{}
	for _, m := range r.s.members {
		counts[string(m.MembershipStatus)]++
	}
	return toStatusCounts(counts), nil
}

func (r *stats) PaymentStatusCounts(_ context.Context) ([]admin.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[string]int64{}
	for _, reg := range r.s.registrations {
		counts[string(reg.PaymentStatus)]++
	}
	return toStatusCounts(counts), nil
}

func (r *stats) RegistrationsWithDocuments(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, reg := range r.s.registrations {
		if reg.ReceiptURL != nil || reg.CertificateURL != nil {
			n++
		}
	}
	return n, nil
}

func toStatusCounts(counts map[string]int64) []admin.StatusCount {
	out := make([]admin.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, admin.StatusCount{Status: status, Count: n})
	}
	return out
}
