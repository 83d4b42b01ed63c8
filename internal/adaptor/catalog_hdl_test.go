package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/apperror"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// mockCatalogService implements the calls these tests make; anything else panics on the nil interface.
type mockCatalogService struct {
	usecase.CatalogService
	mock.Mock
}

func (m *mockCatalogService) PopularDestinations(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.DestinationResponse], error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.DestinationResponse])
	return resp, args.Error(1)
}

func (m *mockCatalogService) GetDestination(ctx context.Context, id string) (*response.DestinationResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*response.DestinationResponse)
	return resp, args.Error(1)
}

func (m *mockCatalogService) DeleteDestination(ctx context.Context, caller entity.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockCatalogService) AvailableHotels(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.HotelResponse], error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*response.PaginatedResponse[response.HotelResponse])
	return resp, args.Error(1)
}

func (m *mockCatalogService) DeleteCab(ctx context.Context, caller entity.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func catalogRouter(svc *mockCatalogService) http.Handler {
	h := NewCatalogHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/destinations/popular", h.PopularDestinations)
	r.Get("/destinations/{id}", h.GetDestination)
	r.Delete("/destinations/{id}", h.DeleteDestination)
	r.Get("/hotels/available", h.AvailableHotels)
	r.Delete("/cabs/{id}", h.DeleteCab)
	return r
}

var staff = entity.Caller{UserID: uuid.New(), Role: entity.RoleStaff}

func TestCatalogHandler_PopularDestinationsIsNotAnID(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("PopularDestinations", mock.Anything, mock.MatchedBy(func(r *request.CatalogListRequest) bool {
		return r.Search == "beach" && r.Page == 2
	})).Return(response.NewPaginatedResponse([]response.DestinationResponse{{ID: "d1", Rating: 4.5}}, 2, 10, 11), nil)

	rec := httptest.NewRecorder()
	catalogRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/destinations/popular?search=beach&page=2&per_page=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Len(t, env["data"].(map[string]any)["data"], 1)
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "GetDestination", mock.Anything, mock.Anything)
}

func TestCatalogHandler_AvailableHotels(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("AvailableHotels", mock.Anything, mock.Anything).
		Return(response.NewPaginatedResponse([]response.HotelResponse{}, 1, 10, 0), nil)

	rec := httptest.NewRecorder()
	catalogRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/available", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestCatalogHandler_DeleteReturns204(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("DeleteDestination", mock.Anything, staff, "d1").Return(nil)

	req := authed(httptest.NewRequest(http.MethodDelete, "/destinations/d1", nil), staff)
	rec := httptest.NewRecorder()
	catalogRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCatalogHandler_DeleteReferencedIs409(t *testing.T) {
	svc := &mockCatalogService{}
	svc.On("DeleteCab", mock.Anything, staff, "c1").
		Return(apperror.New(apperror.KindConflict, "cab is referenced by bookings"))

	req := authed(httptest.NewRequest(http.MethodDelete, "/cabs/c1", nil), staff)
	rec := httptest.NewRecorder()
	catalogRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeEnvelope(t, rec)["kind"])
}
