package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func notFound() error {
	return fmt.Errorf("store.GetByEmail: %w", store.ErrNotFound)
}

func TestAuthenticator_Authenticate(t *testing.T) {
	h := newTestHasher(t)
	hash, err := h.Hash("correct-horse")
	require.NoError(t, err)
	alice := models.User{ID: 1, Email: "alice@example.com", PasswordHash: hash, Rol: models.RoleUser}

	users := new(mockUserLookup)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(alice, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(models.User{}, notFound())
	users.On("GetByEmail", mock.Anything, "down@example.com").Return(models.User{}, errors.New("db down"))

	a, err := NewAuthenticator(users, h)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := a.Authenticate(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, wrongPw := a.Authenticate(ctx, "alice@example.com", "wrong")
	_, unknown := a.Authenticate(ctx, "ghost@example.com", "correct-horse")
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())

	_, err = a.Authenticate(ctx, "down@example.com", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	users.AssertExpectations(t)
}

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.Email))
	})
}

func TestGuard_Handler(t *testing.T) {
	now := time.Now()
	ti := newTestIssuer("k", now)
	alice := models.User{ID: 1, Email: "alice@example.com", Rol: models.RoleUser}

	valid, _, err := ti.Issue(alice.Email)
	require.NoError(t, err)
	deleted, _, err := ti.Issue("gone@example.com")
	require.NoError(t, err)
	broken, _, err := ti.Issue("broken@example.com")
	require.NoError(t, err)
	foreign, _, err := newTestIssuer("other", now).Issue(alice.Email)
	require.NoError(t, err)
	expired, _, err := newTestIssuer("k", now.Add(-time.Hour)).IssueWithTTL(alice.Email, time.Minute)
	require.NoError(t, err)

	users := new(mockUserLookup)
	users.On("GetByEmail", mock.Anything, alice.Email).Return(alice, nil)
	users.On("GetByEmail", mock.Anything, "gone@example.com").Return(models.User{}, notFound())
	users.On("GetByEmail", mock.Anything, "broken@example.com").Return(models.User{}, errors.New("db down"))

	h := NewGuard(ti, users).Handler(protectedHandler())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: alice.Email},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantBody: alice.Email},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "foreign secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + deleted, wantStatus: http.StatusUnauthorized},
		{name: "storage fault", header: "Bearer " + broken, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/usuarios/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rec.Body.String(), `"detail"`)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGuard_FailureKindsLookAlike(t *testing.T) {
	now := time.Now()
	ti := newTestIssuer("k", now)
	users := new(mockUserLookup)
	users.On("GetByEmail", mock.Anything, "gone@example.com").Return(models.User{}, notFound())
	h := NewGuard(ti, users).Handler(protectedHandler())

	foreign, _, _ := newTestIssuer("other", now).Issue("a@example.com")
	expired, _, _ := newTestIssuer("k", now.Add(-time.Hour)).IssueWithTTL("a@example.com", time.Minute)
	deleted, _, _ := ti.Issue("gone@example.com")

	var bodies []string
	for _, token := range []string{foreign, expired, "x.y.z", deleted} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{name: "admin", user: &models.User{Rol: models.RoleAdmin}, wantStatus: http.StatusNoContent},
		{name: "plain user", user: &models.User{Rol: models.RoleUser}, wantStatus: http.StatusForbidden},
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/usuarios", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tt.user))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
