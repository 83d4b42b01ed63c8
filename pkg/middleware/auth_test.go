package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSessions struct {
	sessions map[string]*entity.Session
	err      error
}

func (s stubSessions) Create(context.Context, *entity.Session) error { return nil }

func (s stubSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func (s stubSessions) Revoke(context.Context, string) error { return nil }

func (s stubSessions) RevokeAllUserSessions(context.Context, uuid.UUID) error { return nil }

func (s stubSessions) CleanExpiredSessions(context.Context) error { return nil }

func echoCaller(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetRoleFromContext(r.Context())
	w.Header().Set("X-User", userID.String())
	w.Header().Set("X-Role", role)
	w.WriteHeader(http.StatusOK)
}

func TestAuthSession(t *testing.T) {
	userID := uuid.New()
	token := uuid.NewString()
	repo := stubSessions{sessions: map[string]*entity.Session{
		token: {UserID: userID, Role: entity.RoleStaff},
	}}
	handler := AuthSession(repo, zap.NewNop())(http.HandlerFunc(echoCaller))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", token, http.StatusUnauthorized},
		{"unknown token", "Bearer " + uuid.NewString(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Header().Get("X-User"))
				assert.Equal(t, "staff", rec.Header().Get("X-Role"))
			}
		})
	}
}

func TestAuthSession_StoreErrorIs500(t *testing.T) {
	handler := AuthSession(stubSessions{err: errors.New("db down")}, zap.NewNop())(http.HandlerFunc(echoCaller))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(entity.RoleStaff, zap.NewNop())(http.HandlerFunc(echoCaller))

	tests := []struct {
		role   entity.UserRole
		status int
	}{
		{entity.RoleCustomer, http.StatusForbidden},
		{entity.RoleStaff, http.StatusOK},
		{entity.RoleAdmin, http.StatusOK},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/bookings/x/complete", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), string(tt.role)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tt.status, rec.Code, string(tt.role))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"internal"`)
}

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
