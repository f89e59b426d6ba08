// AngelaMos | 2026
// entity.go

package member

import (
	"time"
)

type Province string

const (
	ProvinceJawaTimur  Province = "Jawa Timur"
	ProvinceJawaBarat  Province = "Jawa Barat"
	ProvinceJawaTengah Province = "Jawa Tengah"
)

func (p Province) Valid() bool {
	switch p {
	case ProvinceJawaTimur, ProvinceJawaBarat, ProvinceJawaTengah:
		return true
	}
	return false
}

type RepositoryStatus string

const (
	RepositoryBelum RepositoryStatus = "Belum"
	RepositorySudah RepositoryStatus = "Sudah"
)

func (s RepositoryStatus) Valid() bool {
	switch s {
	case RepositoryBelum, RepositorySudah:
		return true
	}
	return false
}

type AccreditationStatus string

const (
	AccreditationA    AccreditationStatus = "Akreditasi A"
	AccreditationB    AccreditationStatus = "Akreditasi B"
	AccreditationNone AccreditationStatus = "Belum Akreditasi"
)

func (s AccreditationStatus) Valid() bool {
	switch s {
	case AccreditationA, AccreditationB, AccreditationNone:
		return true
	}
	return false
}

// MembershipStatus has no enforced transitions. An admin may move a
// member between any two states.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "Pending"
	MembershipActive   MembershipStatus = "Active"
	MembershipInactive MembershipStatus = "Inactive"
	MembershipRejected MembershipStatus = "Rejected"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipPending, MembershipActive, MembershipInactive, MembershipRejected:
		return true
	}
	return false
}

var MembershipStatuses = []MembershipStatus{
	MembershipPending,
	MembershipActive,
	MembershipInactive,
	MembershipRejected,
}

type Member struct {
	ID                  int64               `db:"id"`
	UserID              int64               `db:"user_id"`
	UniversityName      string              `db:"university_name"`
	LibraryHeadName     string              `db:"library_head_name"`
	LibraryHeadPhone    string              `db:"library_head_phone"`
	PicName             string              `db:"pic_name"`
	PicPhone            string              `db:"pic_phone"`
	InstitutionAddress  string              `db:"institution_address"`
	Province            Province            `db:"province"`
	InstitutionEmail    string              `db:"institution_email"`
	LibraryWebsiteURL   *string             `db:"library_website_url"`
	OpacURL             *string             `db:"opac_url"`
	RepositoryStatus    RepositoryStatus    `db:"repository_status"`
	BookCollectionCount int                 `db:"book_collection_count"`
	AccreditationStatus AccreditationStatus `db:"accreditation_status"`
	MembershipStatus    MembershipStatus    `db:"membership_status"`
	CreatedAt           time.Time           `db:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at"`
}
