// AngelaMos | 2026
// repository.go

package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/apptnu/portal/internal/core"
)

const registrationColumns = `
	id, member_id, registration_type, payment_proof_url, payment_status,
	admin_notes, receipt_url, certificate_url, created_at, updated_at`

const touchUpdatedAt = `updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')`

type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id int64) (*Registration, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]Registration, error)
	List(ctx context.Context) ([]Registration, error)
	UpdatePaymentStatus(
		ctx context.Context,
		id int64,
		status PaymentStatus,
		notes core.Optional[string],
	) (*Registration, error)
	SetDocument(
		ctx context.Context,
		id int64,
		docType DocumentType,
		url string,
	) (*Registration, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO registrations (
			member_id, registration_type, payment_proof_url, payment_status,
			admin_notes, receipt_url, certificate_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, reg, query,
		reg.MemberID,
		reg.RegistrationType,
		reg.PaymentProofURL,
		reg.PaymentStatus,
		reg.AdminNotes,
		reg.ReceiptURL,
		reg.CertificateURL,
	)
	if err != nil {
		return fmt.Errorf("create registration: %w", core.MapConstraintError(err))
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get registration: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) ListByMemberID(
	ctx context.Context,
	memberID int64,
) ([]Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE member_id = $1
		ORDER BY id`

	regs := []Registration{}
	if err := r.db.SelectContext(ctx, &regs, query, memberID); err != nil {
		return nil, fmt.Errorf("list registrations by member: %w", err)
	}

	return regs, nil
}

func (r *repository) List(ctx context.Context) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY id`

	regs := []Registration{}
	if err := r.db.SelectContext(ctx, &regs, query); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return regs, nil
}

func (r *repository) UpdatePaymentStatus(
	ctx context.Context,
	id int64,
	status PaymentStatus,
	notes core.Optional[string],
) (*Registration, error) {
	query := `
		UPDATE registrations
		SET payment_status = $2,
		    admin_notes = CASE WHEN $3::boolean THEN $4::text ELSE admin_notes END,
		    ` + touchUpdatedAt + `
		WHERE id = $1
		RETURNING ` + registrationColumns

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, id, status, notes.Set, notes.Ptr())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update payment status: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	return &reg, nil
}

func (r *repository) SetDocument(
	ctx context.Context,
	id int64,
	docType DocumentType,
	url string,
) (*Registration, error) {
	var query string
	switch docType {
	case DocumentReceipt:
		query = `
			UPDATE registrations
			SET receipt_url = $2, ` + touchUpdatedAt + `
			WHERE id = $1
			RETURNING ` + registrationColumns
	case DocumentCertificate:
		query = `
			UPDATE registrations
			SET certificate_url = $2, ` + touchUpdatedAt + `
			WHERE id = $1
			RETURNING ` + registrationColumns
	default:
		return nil, fmt.Errorf(
			"set document: unknown document type %q: %w",
			docType,
			core.ErrInvalidInput,
		)
	}

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, id, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set document: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}

	return &reg, nil
}
