// AngelaMos | 2026
// admin_test.go

package admin_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/admin"
	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/member"
	"github.com/apptnu/portal/internal/registration"
	"github.com/apptnu/portal/internal/rpc"
	"github.com/apptnu/portal/internal/testutil/memstore"
	"github.com/apptnu/portal/internal/user"
)

func seed(t *testing.T, store *memstore.Store) {
	t.Helper()
	ctx := context.Background()

	books := 10
	for _, email := range []string{"a@uni.edu", "b@uni.edu", "c@uni.edu"} {
		u := &user.User{Email: email, PasswordHash: "x", Role: user.RoleMember}
		require.NoError(t, store.Users().Create(ctx, u))

		require.NoError(t, store.Members().Create(ctx, &member.Member{
			UserID:              u.ID,
			UniversityName:      email,
			Province:            member.ProvinceJawaTengah,
			RepositoryStatus:    member.RepositoryBelum,
			BookCollectionCount: books,
			AccreditationStatus: member.AccreditationB,
			MembershipStatus:    member.MembershipPending,
		}))
	}

	_, err := store.Members().Update(ctx, member.UpdateMemberRequest{
		ID:               2,
		MembershipStatus: core.Some(member.MembershipActive),
	})
	require.NoError(t, err)

	regs := store.Registrations()
	for _, mid := range []int64{1, 2, 2} {
		require.NoError(t, regs.Create(ctx, &registration.Registration{
			MemberID:         mid,
			RegistrationType: registration.TypeNew,
			PaymentStatus:    registration.PaymentPending,
		}))
	}

	_, err = regs.UpdatePaymentStatus(ctx, 2, registration.PaymentConfirmed, core.Optional[string]{})
	require.NoError(t, err)
	_, err = regs.SetDocument(ctx, 2, registration.DocumentReceipt, "https://x/r.pdf")
	require.NoError(t, err)
}

func TestDashboardStats(t *testing.T) {
	store := memstore.New()
	seed(t, store)

	h := admin.NewHandler(admin.HandlerConfig{
		Dashboard: admin.NewDashboardService(store.Stats()),
	})

	stats, err := h.GetDashboardStats(context.Background(), rpc.Empty{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalMembers)
	assert.Equal(t, map[string]int64{
		"Pending":  2,
		"Active":   1,
		"Inactive": 0,
		"Rejected": 0,
	}, stats.MembersByStatus)

	assert.Equal(t, int64(3), stats.TotalRegistrations)
	assert.Equal(t, map[string]int64{
		"Pending":   2,
		"Confirmed": 1,
		"Rejected":  0,
	}, stats.RegistrationsByPayment)
	assert.Equal(t, int64(1), stats.RegistrationsWithDocuments)
}

func TestDashboardStatsEmptyStore(t *testing.T) {
	svc := admin.NewDashboardService(memstore.New().Stats())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMembers)
	assert.Len(t, stats.MembersByStatus, len(member.MembershipStatuses))
	assert.Len(t, stats.RegistrationsByPayment, len(registration.PaymentStatuses))
}

type failingStats struct{}

func (failingStats) MemberStatusCounts(context.Context) ([]admin.StatusCount, error) {
	return nil, errors.New("db down")
}

func (failingStats) PaymentStatusCounts(context.Context) ([]admin.StatusCount, error) {
	return nil, nil
}

func (failingStats) RegistrationsWithDocuments(context.Context) (int64, error) {
	return 0, nil
}

func TestDashboardStatsPropagatesErrors(t *testing.T) {
	_, err := admin.NewDashboardService(failingStats{}).Stats(context.Background())
	assert.EqualError(t, err, "db down")
}

func passthrough(next http.Handler) http.Handler { return next }

func TestSystemStatsEndpoint(t *testing.T) {
	h := admin.NewHandler(admin.HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{OpenConnections: 3} },
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("no redis") },
	})

	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data admin.SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Database.Healthy)
	require.NotNil(t, body.Data.Database.Stats)
	assert.Equal(t, 3, body.Data.Database.Stats.OpenConnections)
	assert.False(t, body.Data.Redis.Healthy)
	assert.Nil(t, body.Data.Redis.Stats)
	assert.Positive(t, body.Data.Runtime.GOMAXPROCS)
}
