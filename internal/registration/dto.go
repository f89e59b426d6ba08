// AngelaMos | 2026
// dto.go

package registration

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/member"
)

// CreateRegistrationRequest opens an application. Status, notes and
// documents are never taken from input.
type CreateRegistrationRequest struct {
	MemberID         int64            `json:"member_id"         validate:"required,gt=0"`
	RegistrationType RegistrationType `json:"registration_type" validate:"required,enum"`
	PaymentProofURL  *string          `json:"payment_proof_url" validate:"omitempty,max=2048"`
}

type GetByMemberIDRequest struct {
	MemberID int64 `json:"member_id" validate:"required,gt=0"`
}

type GetByUserIDRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// UpdatePaymentStatusRequest leaves admin_notes untouched when the field
// is absent and clears it on an explicit null.
type UpdatePaymentStatusRequest struct {
	RegistrationID int64                 `json:"registration_id" validate:"required,gt=0"`
	PaymentStatus  PaymentStatus         `json:"payment_status"  validate:"required,enum"`
	AdminNotes     core.Optional[string] `json:"admin_notes"`
}

func (r *UpdatePaymentStatusRequest) Validate(v *validator.Validate) error {
	return core.ValidateOptional(v, "admin_notes", r.AdminNotes, "max=2000", true)
}

type UploadDocumentRequest struct {
	RegistrationID int64        `json:"registration_id" validate:"required,gt=0"`
	DocumentType   DocumentType `json:"document_type"   validate:"required,enum"`
	DocumentURL    string       `json:"document_url"    validate:"required,url,max=2048"`
}

type RegistrationResponse struct {
	ID               int64            `json:"id"`
	MemberID         int64            `json:"member_id"`
	RegistrationType RegistrationType `json:"registration_type"`
	PaymentProofURL  *string          `json:"payment_proof_url"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	AdminNotes       *string          `json:"admin_notes"`
	ReceiptURL       *string          `json:"receipt_url"`
	CertificateURL   *string          `json:"certificate_url"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type MemberWithRegistrationsResponse struct {
	Member        *member.MemberResponse `json:"member"`
	Registrations []RegistrationResponse `json:"registrations"`
}

func ToRegistrationResponse(r *Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:               r.ID,
		MemberID:         r.MemberID,
		RegistrationType: r.RegistrationType,
		PaymentProofURL:  r.PaymentProofURL,
		PaymentStatus:    r.PaymentStatus,
		AdminNotes:       r.AdminNotes,
		ReceiptURL:       r.ReceiptURL,
		CertificateURL:   r.CertificateURL,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func ToRegistrationResponseList(regs []Registration) []RegistrationResponse {
	responses := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		responses = append(responses, *ToRegistrationResponse(&regs[i]))
	}
	return responses
}
