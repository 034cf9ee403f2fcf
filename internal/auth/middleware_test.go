package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hospital-directory/internal/domain"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

type fakeLookup struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (f *fakeLookup) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("lookup without deadline")
	}
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func newTestApp(t *testing.T, lookup IdentityLookup, tm *TokenManager, guards ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"message": domainErr.Message,
				"code":    domainErr.Code,
			})
		},
	})
	mw := NewAuthMiddleware(tm, lookup, time.Second)
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{"id": principal.User.ID, "role": principal.User.Role})
	})
	app.Get("/protected", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, errorBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	valid, err := tm.Issue("user-1")
	require.NoError(t, err)
	orphan, err := tm.Issue("ghost")
	require.NoError(t, err)

	lookup := &fakeLookup{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser},
	}}
	app := newTestApp(t, lookup, tm)

	cases := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", MsgNoToken},
		{"no scheme", valid.Value, MsgInvalidFormat},
		{"wrong scheme", "Token " + valid.Value, MsgInvalidFormat},
		{"empty token", "Bearer ", MsgInvalidFormat},
		{"extra parts", "Bearer " + valid.Value + " extra", MsgInvalidFormat},
		{"bad token", "Bearer not-a-token", MsgInvalidToken},
		{"unknown subject", "Bearer " + orphan.Value, MsgUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.message, body.Message)
			assert.Equal(t, apperrors.CodeUnauthorized, body.Code)
		})
	}
}

func TestAuthMiddleware_BindsPrincipal(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	token, err := tm.Issue("user-1")
	require.NoError(t, err)

	lookup := &fakeLookup{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser},
	}}
	app := newTestApp(t, lookup, tm)

	for _, scheme := range []string{"Bearer", "bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", scheme+" "+token.Value)
		resp, err := app.Test(req)
		require.NoError(t, err)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-1", body["id"])
		assert.Equal(t, "user", body["role"])
	}
}

func TestAuthMiddleware_SkipsLookupForBadToken(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	lookup := &fakeLookup{}
	app := newTestApp(t, lookup, tm)

	status, _ := doRequest(t, app, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, lookup.calls)
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	token, err := tm.Issue("user-1")
	require.NoError(t, err)

	app := newTestApp(t, &fakeLookup{err: errors.New("connection refused")}, tm)

	status, body := doRequest(t, app, "Bearer "+token.Value)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, apperrors.CodeStoreUnavailable, body.Code)
}

func TestAuthMiddleware_RoleFromStoreNotToken(t *testing.T) {
	tm, err := NewTokenManager("secret")
	require.NoError(t, err)
	token, err := tm.Issue("user-1")
	require.NoError(t, err)

	lookup := &fakeLookup{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Role: domain.RoleUser},
	}}
	app := newTestApp(t, lookup, tm, RequireAdmin())

	status, body := doRequest(t, app, "Bearer "+token.Value)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, MsgAccessDenied, body.Message)

	lookup.users["user-1"].Role = domain.RoleAdmin
	status, _ = doRequest(t, app, "Bearer "+token.Value)
	assert.Equal(t, http.StatusOK, status)
}
