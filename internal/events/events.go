// AngelaMos | 2026
// events.go

package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys on the portal topic exchange.
const (
	MemberCreated                = "member.created"
	MemberUpdated                = "member.updated"
	RegistrationCreated          = "registration.created"
	RegistrationPaymentUpdated   = "registration.payment_updated"
	RegistrationDocumentUploaded = "registration.document_uploaded"
)

type MemberCreatedData struct {
	MemberID       int64  `json:"member_id"`
	UserID         int64  `json:"user_id"`
	UniversityName string `json:"university_name"`
}

type MemberUpdatedData struct {
	MemberID         int64  `json:"member_id"`
	MembershipStatus string `json:"membership_status"`
}

type RegistrationCreatedData struct {
	RegistrationID   int64  `json:"registration_id"`
	MemberID         int64  `json:"member_id"`
	RegistrationType string `json:"registration_type"`
}

type PaymentUpdatedData struct {
	RegistrationID int64   `json:"registration_id"`
	MemberID       int64   `json:"member_id"`
	PaymentStatus  string  `json:"payment_status"`
	AdminNotes     *string `json:"admin_notes"`
}

type DocumentUploadedData struct {
	RegistrationID int64  `json:"registration_id"`
	MemberID       int64  `json:"member_id"`
	DocumentType   string `json:"document_type"`
	DocumentURL    string `json:"document_url"`
}

func Decode[T any](body []byte) (T, error) {
	var t T
	if err := json.Unmarshal(body, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
