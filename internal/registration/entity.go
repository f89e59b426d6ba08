// AngelaMos | 2026
// entity.go

package registration

import (
	"time"
)

type RegistrationType string

const (
	TypeNew     RegistrationType = "Pendaftaran Baru"
	TypeRenewal RegistrationType = "Perpanjangan"
)

func (t RegistrationType) Valid() bool {
	switch t {
	case TypeNew, TypeRenewal:
		return true
	}
	return false
}

// PaymentStatus has no enforced transitions; a confirmed payment may be
// set back to Pending.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentConfirmed PaymentStatus = "Confirmed"
	PaymentRejected  PaymentStatus = "Rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}

var PaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentConfirmed,
	PaymentRejected,
}

type DocumentType string

const (
	DocumentReceipt     DocumentType = "receipt"
	DocumentCertificate DocumentType = "certificate"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentReceipt, DocumentCertificate:
		return true
	}
	return false
}

type Registration struct {
	ID               int64            `db:"id"`
	MemberID         int64            `db:"member_id"`
	RegistrationType RegistrationType `db:"registration_type"`
	PaymentProofURL  *string          `db:"payment_proof_url"`
	PaymentStatus    PaymentStatus    `db:"payment_status"`
	AdminNotes       *string          `db:"admin_notes"`
	ReceiptURL       *string          `db:"receipt_url"`
	CertificateURL   *string          `db:"certificate_url"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}
