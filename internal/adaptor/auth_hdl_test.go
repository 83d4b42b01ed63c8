package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) LogoutAll(ctx context.Context, caller entity.Caller) error {
	return m.Called(ctx, caller).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, caller entity.Caller) (*response.UserResponse, error) {
	args := m.Called(ctx, caller)
	resp, _ := args.Get(0).(*response.UserResponse)
	return resp, args.Error(1)
}

func TestAuthHandler_LoginPassesClientInfo(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	svc.On("Login", mock.Anything, mock.MatchedBy(func(req *request.LoginRequest) bool {
		return req.Username == "asha" && req.UserAgent == "travel-app/2.1" && req.IPAddress == "198.51.100.4"
	})).Return(&response.AuthResponse{Token: uuid.NewString()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"asha","password":"s3cret-pass"}`))
	req.Header.Set("User-Agent", "travel-app/2.1")
	req.RemoteAddr = "198.51.100.4:41000"
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_LoginIgnoresClientInfoInBody(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	svc.On("Login", mock.Anything, mock.MatchedBy(func(req *request.LoginRequest) bool {
		return req.IPAddress == "192.0.2.1"
	})).Return(nil, apperror.Unauthenticated("invalid credentials"))

	body := `{"username":"asha","password":"nope","IPAddress":"10.10.10.10","UserAgent":"spoofed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"unauthenticated"`)
	svc.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc, zap.NewNop())

	userID := uuid.New()
	svc.On("LogoutAll", mock.Anything, entity.Caller{UserID: userID, Role: entity.RoleCustomer}).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/logout/all", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), userID, string(entity.RoleCustomer)))
	rec := httptest.NewRecorder()

	h.LogoutAll(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
