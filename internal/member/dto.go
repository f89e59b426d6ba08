// AngelaMos | 2026
// dto.go

package member

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/apptnu/portal/internal/core"
)

// CreateMemberRequest carries the institutional profile. Any
// membership_status in the payload is ignored; new members are Pending.
type CreateMemberRequest struct {
	UserID              int64               `json:"user_id"               validate:"required,gt=0"`
	UniversityName      string              `json:"university_name"       validate:"required,max=255"`
	LibraryHeadName     string              `json:"library_head_name"     validate:"required,max=255"`
	LibraryHeadPhone    string              `json:"library_head_phone"    validate:"required,max=20"`
	PicName             string              `json:"pic_name"              validate:"required,max=255"`
	PicPhone            string              `json:"pic_phone"             validate:"required,max=20"`
	InstitutionAddress  string              `json:"institution_address"   validate:"required"`
	Province            Province            `json:"province"              validate:"required,enum"`
	InstitutionEmail    string              `json:"institution_email"     validate:"required,email,max=255"`
	LibraryWebsiteURL   *string             `json:"library_website_url"   validate:"omitempty,url"`
	OpacURL             *string             `json:"opac_url"              validate:"omitempty,url"`
	RepositoryStatus    RepositoryStatus    `json:"repository_status"     validate:"required,enum"`
	BookCollectionCount *int                `json:"book_collection_count" validate:"required,gte=0"`
	AccreditationStatus AccreditationStatus `json:"accreditation_status"  validate:"required,enum"`
}

type GetByUserIDRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// UpdateMemberRequest is a partial update. Absent fields are untouched,
// null clears the nullable URL fields, and a value overwrites.
type UpdateMemberRequest struct {
	ID                  int64                              `json:"id" validate:"required,gt=0"`
	UniversityName      core.Optional[string]              `json:"university_name"`
	LibraryHeadName     core.Optional[string]              `json:"library_head_name"`
	LibraryHeadPhone    core.Optional[string]              `json:"library_head_phone"`
	PicName             core.Optional[string]              `json:"pic_name"`
	PicPhone            core.Optional[string]              `json:"pic_phone"`
	InstitutionAddress  core.Optional[string]              `json:"institution_address"`
	Province            core.Optional[Province]            `json:"province"`
	InstitutionEmail    core.Optional[string]              `json:"institution_email"`
	LibraryWebsiteURL   core.Optional[string]              `json:"library_website_url"`
	OpacURL             core.Optional[string]              `json:"opac_url"`
	RepositoryStatus    core.Optional[RepositoryStatus]    `json:"repository_status"`
	BookCollectionCount core.Optional[int]                 `json:"book_collection_count"`
	AccreditationStatus core.Optional[AccreditationStatus] `json:"accreditation_status"`
	MembershipStatus    core.Optional[MembershipStatus]    `json:"membership_status"`
}

func (r *UpdateMemberRequest) Validate(v *validator.Validate) error {
	checks := []error{
		core.ValidateOptional(v, "university_name", r.UniversityName, "required,max=255", false),
		core.ValidateOptional(v, "library_head_name", r.LibraryHeadName, "required,max=255", false),
		core.ValidateOptional(v, "library_head_phone", r.LibraryHeadPhone, "required,max=20", false),
		core.ValidateOptional(v, "pic_name", r.PicName, "required,max=255", false),
		core.ValidateOptional(v, "pic_phone", r.PicPhone, "required,max=20", false),
		core.ValidateOptional(v, "institution_address", r.InstitutionAddress, "required", false),
		core.ValidateOptional(v, "province", r.Province, "enum", false),
		core.ValidateOptional(v, "institution_email", r.InstitutionEmail, "required,email,max=255", false),
		core.ValidateOptional(v, "library_website_url", r.LibraryWebsiteURL, "url", true),
		core.ValidateOptional(v, "opac_url", r.OpacURL, "url", true),
		core.ValidateOptional(v, "repository_status", r.RepositoryStatus, "enum", false),
		core.ValidateOptional(v, "book_collection_count", r.BookCollectionCount, "gte=0", false),
		core.ValidateOptional(v, "accreditation_status", r.AccreditationStatus, "enum", false),
		core.ValidateOptional(v, "membership_status", r.MembershipStatus, "enum", false),
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

type MemberResponse struct {
	ID                  int64               `json:"id"`
	UserID              int64               `json:"user_id"`
	UniversityName      string              `json:"university_name"`
	LibraryHeadName     string              `json:"library_head_name"`
	LibraryHeadPhone    string              `json:"library_head_phone"`
	PicName             string              `json:"pic_name"`
	PicPhone            string              `json:"pic_phone"`
	InstitutionAddress  string              `json:"institution_address"`
	Province            Province            `json:"province"`
	InstitutionEmail    string              `json:"institution_email"`
	LibraryWebsiteURL   *string             `json:"library_website_url"`
	OpacURL             *string             `json:"opac_url"`
	RepositoryStatus    RepositoryStatus    `json:"repository_status"`
	BookCollectionCount int                 `json:"book_collection_count"`
	AccreditationStatus AccreditationStatus `json:"accreditation_status"`
	MembershipStatus    MembershipStatus    `json:"membership_status"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func ToMemberResponse(m *Member) *MemberResponse {
	if m == nil {
		return nil
	}
	return &MemberResponse{
		ID:                  m.ID,
		UserID:              m.UserID,
		UniversityName:      m.UniversityName,
		LibraryHeadName:     m.LibraryHeadName,
		LibraryHeadPhone:    m.LibraryHeadPhone,
		PicName:             m.PicName,
		PicPhone:            m.PicPhone,
		InstitutionAddress:  m.InstitutionAddress,
		Province:            m.Province,
		InstitutionEmail:    m.InstitutionEmail,
		LibraryWebsiteURL:   m.LibraryWebsiteURL,
		OpacURL:             m.OpacURL,
		RepositoryStatus:    m.RepositoryStatus,
		BookCollectionCount: m.BookCollectionCount,
		AccreditationStatus: m.AccreditationStatus,
		MembershipStatus:    m.MembershipStatus,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func ToMemberResponseList(members []Member) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, *ToMemberResponse(&members[i]))
	}
	return responses
}
