// AngelaMos | 2026
// router_test.go

package rpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/middleware"
	"github.com/apptnu/portal/internal/rpc"
)

type greetInput struct {
	Name string `json:"name" validate:"required"`
}

type greeting struct {
	Message string `json:"message"`
}

type rangeInput struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func (in *rangeInput) Validate(_ *validator.Validate) error {
	if in.Low > in.High {
		return core.ValidationError("low must not exceed high")
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *core.ErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rt := rpc.NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rt.Register(
		rpc.Query("greet", rpc.Public,
			func(_ context.Context, in greetInput) (greeting, error) {
				return greeting{Message: "hello " + in.Name}, nil
			}),
		rpc.Mutation("echo", rpc.Authenticated,
			func(ctx context.Context, in greetInput) (greeting, error) {
				caller, err := rpc.CallerFrom(ctx)
				if err != nil {
					return greeting{}, err
				}
				return greeting{Message: fmt.Sprintf("%d:%s", caller.UserID, in.Name)}, nil
			}),
		rpc.Query("adminOnly", rpc.AdminOnly,
			func(_ context.Context, _ rpc.Empty) (string, error) {
				return "secret", nil
			}),
		rpc.Query("maybe", rpc.Public,
			func(_ context.Context, _ rpc.Empty) (*greeting, error) {
				return nil, nil
			}),
		rpc.Query("span", rpc.Public,
			func(_ context.Context, in rangeInput) (int, error) {
				return in.High - in.Low, nil
			}),
		rpc.Query("fail", rpc.Public,
			func(_ context.Context, in greetInput) (string, error) {
				switch in.Name {
				case "missing":
					return "", fmt.Errorf("lookup: %w", core.ErrNotFound)
				case "dup":
					return "", fmt.Errorf("insert: %w", core.ErrDuplicateKey)
				case "fk":
					return "", fmt.Errorf("insert: %w", core.ErrForeignKey)
				}
				return "", errors.New("connection reset")
			}),
	)

	r := chi.NewRouter()
	r.Use(middleware.Identify(stubVerifier{}))
	r.Route("/rpc", rt.Mount)
	return r
}

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	switch token {
	case "member":
		return &middleware.AccessTokenClaims{UserID: 5, Role: "Member"}, nil
	case "admin":
		return &middleware.AccessTokenClaims{UserID: 1, Role: middleware.RoleAdmin}, nil
	}
	return nil, core.ErrTokenInvalid
}

func do(
	t *testing.T,
	h http.Handler,
	method, target, body, token string,
) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func queryURL(name, input string) string {
	return "/rpc/" + name + "?input=" + url.QueryEscape(input)
}

func TestQueryDecodesInputParameter(t *testing.T) {
	h := newTestRouter(t)

	code, env := do(t, h, http.MethodGet, queryURL("greet", `{"name":"ana"}`), "", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"message":"hello ana"}`, string(env.Data))
}

func TestMutationDecodesBody(t *testing.T) {
	h := newTestRouter(t)

	code, env := do(t, h, http.MethodPost, "/rpc/echo", `{"name":"x"}`, "member")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"5:x"}`, string(env.Data))
}

func TestUnknownProcedure(t *testing.T) {
	code, env := do(t, newTestRouter(t), http.MethodGet, "/rpc/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PROCEDURE_NOT_FOUND", env.Error.Code)
}

func TestWrongMethod(t *testing.T) {
	h := newTestRouter(t)

	code, env := do(t, h, http.MethodPost, "/rpc/greet", `{"name":"a"}`, "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error.Code)

	code, _ = do(t, h, http.MethodGet, "/rpc/echo", "", "member")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestValidationFailures(t *testing.T) {
	h := newTestRouter(t)

	code, env := do(t, h, http.MethodGet, queryURL("greet", `{}`), "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Message, "name is required")

	code, env = do(t, h, http.MethodGet, queryURL("greet", `{"name":`), "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, env = do(t, h, http.MethodGet, queryURL("span", `{"low":5,"high":1}`), "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "low must not exceed high", env.Error.Message)

	code, env = do(t, h, http.MethodGet, queryURL("span", `{"low":1,"high":5}`), "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "4", string(env.Data))
}

func TestAccessLevels(t *testing.T) {
	h := newTestRouter(t)

	code, env := do(t, h, http.MethodPost, "/rpc/echo", `{"name":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, env = do(t, h, http.MethodGet, "/rpc/adminOnly", "", "member")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = do(t, h, http.MethodGet, "/rpc/adminOnly", "", "admin")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `"secret"`, string(env.Data))
}

func TestAccessCheckedBeforeInputIsDecoded(t *testing.T) {
	code, env := do(t, newTestRouter(t), http.MethodPost, "/rpc/echo", `{`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestNullOutput(t *testing.T) {
	code, env := do(t, newTestRouter(t), http.MethodGet, "/rpc/maybe", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
}

func TestErrorMapping(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"missing", http.StatusNotFound, "NOT_FOUND"},
		{"dup", http.StatusConflict, "DUPLICATE"},
		{"fk", http.StatusUnprocessableEntity, "FOREIGN_KEY_VIOLATION"},
		{"other", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := fmt.Sprintf(`{"name":%q}`, tt.name)
			code, env := do(t, h, http.MethodGet, queryURL("fail", input), "", "")
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	_, env := do(t, newTestRouter(t), http.MethodGet,
		queryURL("fail", `{"name":"boom"}`), "", "")
	assert.Equal(t, "internal server error", env.Error.Message)
}

func TestRegisterTwicePanics(t *testing.T) {
	rt := rpc.NewRouter(slog.Default())
	p := rpc.Query("dup", rpc.Public,
		func(_ context.Context, _ rpc.Empty) (string, error) { return "", nil })

	rt.Register(p)
	assert.Panics(t, func() { rt.Register(p) })
	assert.Equal(t, []string{"dup"}, rt.Names())
}

func TestRequireOwner(t *testing.T) {
	ctx := middleware.WithClaims(context.Background(),
		&middleware.AccessTokenClaims{UserID: 3, Role: "Member"})

	assert.NoError(t, rpc.RequireOwner(ctx, 3))

	err := rpc.RequireOwner(ctx, 4)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)

	err = rpc.RequireOwner(context.Background(), 3)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}
