// AngelaMos | 2026
// registration_test.go

package registration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/events"
	"github.com/apptnu/portal/internal/member"
	"github.com/apptnu/portal/internal/middleware"
	"github.com/apptnu/portal/internal/registration"
	"github.com/apptnu/portal/internal/rpc"
	"github.com/apptnu/portal/internal/testutil/memstore"
	"github.com/apptnu/portal/internal/user"
)

type fixture struct {
	store   *memstore.Store
	events  *events.MemoryPublisher
	members *member.Service
	service *registration.Service
	handler *registration.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	pub := events.NewMemoryPublisher()
	emitter := events.NewEmitter(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	members := member.NewService(store.Members(), emitter)
	svc := registration.NewService(store.Registrations(), members, emitter)

	return &fixture{
		store:   store,
		events:  pub,
		members: members,
		service: svc,
		handler: registration.NewHandler(svc),
	}
}

// addMember creates a user and a member for it, returning both ids.
func (f *fixture) addMember(t *testing.T, email string) (userID, memberID int64) {
	t.Helper()
	ctx := context.Background()

	u := &user.User{Email: email, PasswordHash: "x", Role: user.RoleMember}
	require.NoError(t, f.store.Users().Create(ctx, u))

	books := 500
	m, err := f.members.Create(ctx, member.CreateMemberRequest{
		UserID:              u.ID,
		UniversityName:      "Universitas " + email,
		LibraryHeadName:     "Head",
		LibraryHeadPhone:    "0811",
		PicName:             "Pic",
		PicPhone:            "0812",
		InstitutionAddress:  "Address",
		Province:            member.ProvinceJawaBarat,
		InstitutionEmail:    email,
		RepositoryStatus:    member.RepositoryBelum,
		BookCollectionCount: &books,
		AccreditationStatus: member.AccreditationNone,
	})
	require.NoError(t, err)

	return u.ID, m.ID
}

func (f *fixture) addRegistration(t *testing.T, memberID int64) *registration.RegistrationResponse {
	t.Helper()

	proof := "https://x/proof.jpg"
	reg, err := f.handler.CreateRegistration(asAdmin(), registration.CreateRegistrationRequest{
		MemberID:         memberID,
		RegistrationType: registration.TypeNew,
		PaymentProofURL:  &proof,
	})
	require.NoError(t, err)
	return reg
}

func asUser(id int64) context.Context {
	return middleware.WithClaims(context.Background(),
		&middleware.AccessTokenClaims{UserID: id, Role: "Member"})
}

func asAdmin() context.Context {
	return middleware.WithClaims(context.Background(),
		&middleware.AccessTokenClaims{UserID: 1000, Role: middleware.RoleAdmin})
}

func patch(t *testing.T, body string) registration.UpdatePaymentStatusRequest {
	t.Helper()

	var req registration.UpdatePaymentStatusRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestCreateRegistrationStartsClean(t *testing.T) {
	f := newFixture(t)
	uid, mid := f.addMember(t, "lib@uni.edu")

	proof := "https://x/proof.jpg"
	reg, err := f.handler.CreateRegistration(asUser(uid), registration.CreateRegistrationRequest{
		MemberID:         mid,
		RegistrationType: registration.TypeRenewal,
		PaymentProofURL:  &proof,
	})
	require.NoError(t, err)

	assert.Equal(t, registration.PaymentPending, reg.PaymentStatus)
	assert.Equal(t, registration.TypeRenewal, reg.RegistrationType)
	assert.Nil(t, reg.AdminNotes)
	assert.Nil(t, reg.ReceiptURL)
	assert.Nil(t, reg.CertificateURL)
	require.NotNil(t, reg.PaymentProofURL)
	assert.Equal(t, proof, *reg.PaymentProofURL)

	assert.Contains(t, f.events.Keys(), events.RegistrationCreated)
}

func TestCreateRegistrationUnknownMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.CreateRegistration(asAdmin(), registration.CreateRegistrationRequest{
		MemberID:         77,
		RegistrationType: registration.TypeNew,
	})
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "MEMBER_NOT_FOUND", appErr.Code)
	assert.Equal(t, "member with id 77 does not exist", appErr.Message)
	assert.ErrorIs(t, err, registration.ErrMemberNotFound)

	all, err := f.service.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRegistrationForeignMemberForbidden(t *testing.T) {
	f := newFixture(t)
	_, mid := f.addMember(t, "a@uni.edu")
	other, _ := f.addMember(t, "b@uni.edu")

	_, err := f.handler.CreateRegistration(asUser(other), registration.CreateRegistrationRequest{
		MemberID:         mid,
		RegistrationType: registration.TypeNew,
	})
	assert.ErrorIs(t, err, core.ErrForbidden)

	regs, err := f.service.ListByMember(context.Background(), mid, nil)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestUpdatePaymentStatusAdminNotes(t *testing.T) {
	f := newFixture(t)
	_, mid := f.addMember(t, "lib@uni.edu")
	reg := f.addRegistration(t, mid)
	ctx := asAdmin()

	set, err := f.handler.UpdatePaymentStatus(ctx, patch(t,
		`{"registration_id":1,"payment_status":"Confirmed","admin_notes":"verified"}`))
	require.NoError(t, err)
	require.NotNil(t, set.AdminNotes)
	assert.Equal(t, "verified", *set.AdminNotes)
	assert.Equal(t, registration.PaymentConfirmed, set.PaymentStatus)
	assert.True(t, set.UpdatedAt.After(reg.UpdatedAt))

	kept, err := f.handler.UpdatePaymentStatus(ctx, patch(t,
		`{"registration_id":1,"payment_status":"Rejected"}`))
	require.NoError(t, err)
	require.NotNil(t, kept.AdminNotes)
	assert.Equal(t, "verified", *kept.AdminNotes)
	assert.Equal(t, registration.PaymentRejected, kept.PaymentStatus)
	assert.True(t, kept.UpdatedAt.After(set.UpdatedAt))

	cleared, err := f.handler.UpdatePaymentStatus(ctx, patch(t,
		`{"registration_id":1,"payment_status":"Pending","admin_notes":null}`))
	require.NoError(t, err)
	assert.Nil(t, cleared.AdminNotes)
	assert.Equal(t, registration.PaymentPending, cleared.PaymentStatus)
	assert.True(t, cleared.UpdatedAt.After(kept.UpdatedAt))
}

func TestUpdatePaymentStatusNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.UpdatePaymentStatus(asAdmin(), patch(t,
		`{"registration_id":9,"payment_status":"Confirmed"}`))
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Contains(t, appErr.Message, "registration with id 9")
}

func TestUploadDocumentTouchesOnlyItsColumn(t *testing.T) {
	f := newFixture(t)
	_, mid := f.addMember(t, "lib@uni.edu")
	f.addRegistration(t, mid)
	ctx := asAdmin()

	receipt, err := f.handler.UploadDocument(ctx, registration.UploadDocumentRequest{
		RegistrationID: 1,
		DocumentType:   registration.DocumentReceipt,
		DocumentURL:    "https://x/receipt.pdf",
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.ReceiptURL)
	assert.Equal(t, "https://x/receipt.pdf", *receipt.ReceiptURL)
	assert.Nil(t, receipt.CertificateURL)

	cert, err := f.handler.UploadDocument(ctx, registration.UploadDocumentRequest{
		RegistrationID: 1,
		DocumentType:   registration.DocumentCertificate,
		DocumentURL:    "https://x/cert.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/receipt.pdf", *cert.ReceiptURL)
	assert.Equal(t, "https://x/cert.pdf", *cert.CertificateURL)

	again, err := f.handler.UploadDocument(ctx, registration.UploadDocumentRequest{
		RegistrationID: 1,
		DocumentType:   registration.DocumentReceipt,
		DocumentURL:    "https://x/receipt-v2.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/receipt-v2.pdf", *again.ReceiptURL)
	assert.Equal(t, "https://x/cert.pdf", *again.CertificateURL)
	assert.True(t, again.UpdatedAt.After(cert.UpdatedAt))
}

func TestUploadDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.UploadDocument(asAdmin(), registration.UploadDocumentRequest{
		RegistrationID: 3,
		DocumentType:   registration.DocumentReceipt,
		DocumentURL:    "https://x/r.pdf",
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetRegistrationsByMemberID(t *testing.T) {
	f := newFixture(t)
	uid, mid := f.addMember(t, "a@uni.edu")
	otherUID, otherMID := f.addMember(t, "b@uni.edu")

	f.addRegistration(t, mid)
	f.addRegistration(t, otherMID)
	f.addRegistration(t, mid)

	regs, err := f.handler.GetRegistrationsByMemberID(asUser(uid),
		registration.GetByMemberIDRequest{MemberID: mid})
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, int64(1), regs[0].ID)
	assert.Equal(t, int64(3), regs[1].ID)

	_, err = f.handler.GetRegistrationsByMemberID(asUser(otherUID),
		registration.GetByMemberIDRequest{MemberID: mid})
	assert.ErrorIs(t, err, core.ErrForbidden)

	empty, err := f.handler.GetRegistrationsByMemberID(asUser(uid),
		registration.GetByMemberIDRequest{MemberID: 404})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	all, err := f.handler.GetAllRegistrations(asAdmin(), rpc.Empty{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetMemberWithRegistrations(t *testing.T) {
	f := newFixture(t)
	uid, mid := f.addMember(t, "a@uni.edu")
	_, otherMID := f.addMember(t, "b@uni.edu")

	lonely := &user.User{Email: "c@uni.edu", PasswordHash: "x", Role: user.RoleMember}
	require.NoError(t, f.store.Users().Create(context.Background(), lonely))

	none, err := f.handler.GetMemberWithRegistrations(asUser(lonely.ID),
		registration.GetByUserIDRequest{UserID: lonely.ID})
	require.NoError(t, err)
	assert.Nil(t, none)

	f.addRegistration(t, mid)
	f.addRegistration(t, otherMID)

	got, err := f.handler.GetMemberWithRegistrations(asUser(uid),
		registration.GetByUserIDRequest{UserID: uid})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mid, got.Member.ID)
	require.Len(t, got.Registrations, 1)
	assert.Equal(t, mid, got.Registrations[0].MemberID)

	_, err = f.handler.GetMemberWithRegistrations(asUser(lonely.ID),
		registration.GetByUserIDRequest{UserID: uid})
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestPaymentEventsCarryNotes(t *testing.T) {
	f := newFixture(t)
	_, mid := f.addMember(t, "lib@uni.edu")
	f.addRegistration(t, mid)

	_, err := f.handler.UpdatePaymentStatus(asAdmin(), patch(t,
		`{"registration_id":1,"payment_status":"Confirmed","admin_notes":"ok"}`))
	require.NoError(t, err)

	msgs := f.events.Messages()
	last := msgs[len(msgs)-1]
	require.Equal(t, events.RegistrationPaymentUpdated, last.RoutingKey)

	data, err := events.Decode[events.PaymentUpdatedData](last.Body)
	require.NoError(t, err)
	assert.Equal(t, mid, data.MemberID)
	assert.Equal(t, "Confirmed", data.PaymentStatus)
	require.NotNil(t, data.AdminNotes)
	assert.Equal(t, "ok", *data.AdminNotes)
}

func TestUpdatePaymentStatusValidation(t *testing.T) {
	v := core.NewValidator()

	req := patch(t, `{"registration_id":1,"payment_status":"Refunded"}`)
	assert.Error(t, v.Struct(req))

	req = patch(t, `{"registration_id":1,"payment_status":"Confirmed","admin_notes":null}`)
	require.NoError(t, v.Struct(req))
	assert.NoError(t, req.Validate(v))
}
