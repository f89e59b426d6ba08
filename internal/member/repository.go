// AngelaMos | 2026
// repository.go

package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/apptnu/portal/internal/core"
)

const memberColumns = `
	id, user_id, university_name, library_head_name, library_head_phone,
	pic_name, pic_phone, institution_address, province, institution_email,
	library_website_url, opac_url, repository_status, book_collection_count,
	accreditation_status, membership_status, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	Update(ctx context.Context, req UpdateMemberRequest) (*Member, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (
			user_id, university_name, library_head_name, library_head_phone,
			pic_name, pic_phone, institution_address, province,
			institution_email, library_website_url, opac_url,
			repository_status, book_collection_count, accreditation_status,
			membership_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, m, query,
		m.UserID,
		m.UniversityName,
		m.LibraryHeadName,
		m.LibraryHeadPhone,
		m.PicName,
		m.PicPhone,
		m.InstitutionAddress,
		m.Province,
		m.InstitutionEmail,
		m.LibraryWebsiteURL,
		m.OpacURL,
		m.RepositoryStatus,
		m.BookCollectionCount,
		m.AccreditationStatus,
		m.MembershipStatus,
	)
	if err != nil {
		return fmt.Errorf("create member: %w", core.MapConstraintError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var m Member
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1`

	var m Member
	err := r.db.GetContext(ctx, &m, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member by user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user: %w", err)
	}

	return &m, nil
}

func (r *repository) List(ctx context.Context) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY id`

	members := []Member{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

// Update writes only the fields present in req and always advances
// updated_at, even when no other field is set.
func (r *repository) Update(
	ctx context.Context,
	req UpdateMemberRequest,
) (*Member, error) {
	var set setClause

	setString(&set, "university_name", req.UniversityName)
	setString(&set, "library_head_name", req.LibraryHeadName)
	setString(&set, "library_head_phone", req.LibraryHeadPhone)
	setString(&set, "pic_name", req.PicName)
	setString(&set, "pic_phone", req.PicPhone)
	setString(&set, "institution_address", req.InstitutionAddress)
	if req.Province.HasValue() {
		set.add("province", req.Province.Value)
	}
	setString(&set, "institution_email", req.InstitutionEmail)
	if req.LibraryWebsiteURL.Set {
		set.add("library_website_url", req.LibraryWebsiteURL.Ptr())
	}
	if req.OpacURL.Set {
		set.add("opac_url", req.OpacURL.Ptr())
	}
	if req.RepositoryStatus.HasValue() {
		set.add("repository_status", req.RepositoryStatus.Value)
	}
	if req.BookCollectionCount.HasValue() {
		set.add("book_collection_count", req.BookCollectionCount.Value)
	}
	if req.AccreditationStatus.HasValue() {
		set.add("accreditation_status", req.AccreditationStatus.Value)
	}
	if req.MembershipStatus.HasValue() {
		set.add("membership_status", req.MembershipStatus.Value)
	}

	set.columns = append(set.columns,
		"updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')")
	set.args = append(set.args, req.ID)

	query := fmt.Sprintf(`
		UPDATE members
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(set.columns, ", "), len(set.args), memberColumns)

	var m Member
	err := r.db.GetContext(ctx, &m, query, set.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update member: %w", core.MapConstraintError(err))
	}

	return &m, nil
}

type setClause struct {
	columns []string
	args    []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.columns = append(s.columns, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func setString(s *setClause, column string, o core.Optional[string]) {
	if o.HasValue() {
		s.add(column, o.Value)
	}
}
