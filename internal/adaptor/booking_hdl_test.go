package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Create(ctx context.Context, caller entity.Caller, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) Get(ctx context.Context, caller entity.Caller, id string) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) ListMine(ctx context.Context, caller entity.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.BookingResponse])
	return resp, args.Error(1)
}

func (m *mockBookingService) Update(ctx context.Context, caller entity.Caller, id string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, caller entity.Caller, id string) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) Delete(ctx context.Context, caller entity.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockBookingService) Pay(ctx context.Context, caller entity.Caller, id string, req *request.PayBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id, req)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) Payments(ctx context.Context, caller entity.Caller, id string) ([]response.PaymentResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).([]response.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) Complete(ctx context.Context, caller entity.Caller, id string) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockBookingService) MarkNoShow(ctx context.Context, caller entity.Caller, id string) (*response.BookingResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*response.BookingResponse)
	return resp, args.Error(1)
}

func bookingRouter(svc *mockBookingService) http.Handler {
	h := NewBookingHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/bookings", h.Create)
	r.Get("/bookings/mine", h.ListMine)
	r.Patch("/bookings/{id}", h.Update)
	r.Post("/bookings/{id}/cancel", h.Cancel)
	r.Delete("/bookings/{id}", h.Delete)
	return r
}

func authed(req *http.Request, caller entity.Caller) *http.Request {
	ctx := utils.SetUserContext(req.Context(), caller.UserID, string(caller.Role))
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var customer = entity.Caller{UserID: uuid.New(), Role: entity.RoleCustomer}

func TestBookingHandler_CreateReturns201(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("Create", mock.Anything, customer, mock.MatchedBy(func(r *request.CreateBookingRequest) bool {
		return r.BookingType == "cab" && r.TotalPrice != nil && r.TotalPrice.String() == "250.5"
	})).Return(&response.BookingResponse{ID: "b1", FinalAmount: "250.50"}, nil)

	body := `{"booking_type":"cab","cab_id":"` + uuid.NewString() + `","total_price":"250.5"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)), customer)
	rec := httptest.NewRecorder()

	bookingRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["status"])
	assert.Equal(t, "250.50", env["data"].(map[string]any)["final_amount"])
	svc.AssertExpectations(t)
}

func TestBookingHandler_MalformedBodyIs400(t *testing.T) {
	svc := &mockBookingService{}
	req := authed(httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{")), customer)
	rec := httptest.NewRecorder()

	bookingRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_ErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", apperror.Validation("validation failed", map[string]string{"discount": "Must not exceed total_price"}), http.StatusBadRequest, "validation"},
		{"invalid state", apperror.InvalidState("cannot cancel a cancelled booking"), http.StatusBadRequest, "invalid_state"},
		{"forbidden", apperror.Forbidden("you do not own this booking"), http.StatusForbidden, "authorization"},
		{"not found", apperror.NotFound("booking not found"), http.StatusNotFound, "not_found"},
		{"unauthenticated", apperror.Unauthenticated("authentication required"), http.StatusUnauthorized, "unauthenticated"},
		{"conflict", apperror.New(apperror.KindConflict, "booking was modified concurrently, please retry"), http.StatusConflict, "conflict"},
		{"unknown", errors.New("pg: connection reset"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{}
			svc.On("Cancel", mock.Anything, customer, "b1").Return(nil, tt.err)

			req := authed(httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", nil), customer)
			rec := httptest.NewRecorder()
			bookingRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, false, env["status"])
			assert.Equal(t, tt.kind, env["kind"])
			assert.NotContains(t, rec.Body.String(), "pg: connection reset")
		})
	}
}

func TestBookingHandler_ValidationErrorsCarryFields(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("Update", mock.Anything, customer, "b1", mock.Anything).
		Return(nil, apperror.Validation("validation failed", map[string]string{"hotel_id": "Required for hotel bookings"}))

	req := authed(httptest.NewRequest(http.MethodPatch, "/bookings/b1", strings.NewReader(`{"booking_type":"hotel"}`)), customer)
	rec := httptest.NewRecorder()
	bookingRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Required for hotel bookings", env["errors"].(map[string]any)["hotel_id"])
}

func TestBookingHandler_DeleteReturns204(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("Delete", mock.Anything, customer, "b1").Return(nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/bookings/b1", nil), customer)
	rec := httptest.NewRecorder()
	bookingRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBookingHandler_ListMineReadsPagination(t *testing.T) {
	svc := &mockBookingService{}
	svc.On("ListMine", mock.Anything, customer, &request.PaginatedRequest{Page: 2, PerPage: 5}).
		Return(response.NewPaginatedResponse([]response.BookingResponse{}, 2, 5, 6), nil)

	req := authed(httptest.NewRequest(http.MethodGet, "/bookings/mine?page=2&per_page=5", nil), customer)
	rec := httptest.NewRecorder()
	bookingRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	pagination := decodeEnvelope(t, rec)["data"].(map[string]any)["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total_pages"])
	svc.AssertExpectations(t)
}

func TestCallerFromRequest_AnonymousIsZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, entity.Caller{}, callerFromRequest(req))

	req = authed(req, entity.Caller{UserID: customer.UserID, Role: entity.RoleStaff})
	assert.True(t, callerFromRequest(req).HasRole(entity.RoleStaff))
}
