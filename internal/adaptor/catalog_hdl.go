package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	errorResponder
	service usecase.CatalogService
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		errorResponder: errorResponder{log: log.With(zap.String("handler", "catalog"))},
		service:        service,
	}
}

func listRequestFromQuery(r *http.Request) *request.CatalogListRequest {
	return &request.CatalogListRequest{
		PaginatedRequest: paginationFromQuery(r),
		Search:           r.URL.Query().Get("search"),
	}
}

// ==================== DESTINATION ====================

// ListDestinations handles GET /destinations?search=&page=&per_page=
func (h *CatalogHandler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListDestinations(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "list destinations")
		return
	}
	utils.ResponseSuccess(w, "success", page)
}

// GetDestination handles GET /destinations/{id}
func (h *CatalogHandler) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDestination(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get destination")
		return
	}
	utils.ResponseSuccess(w, "success", d)
}

// CreateDestination handles POST /destinations (staff only)
func (h *CatalogHandler) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDestinationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := h.service.CreateDestination(r.Context(), callerFromRequest(r), &req)
	if err != nil {
		h.handleServiceError(w, err, "create destination")
		return
	}
	utils.ResponseCreated(w, "Destination created", d)
}

// PopularDestinations handles GET /destinations/popular?search=&page=&per_page=
func (h *CatalogHandler) PopularDestinations(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.PopularDestinations(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "list popular destinations")
		return
	}
	utils.ResponseSuccess(w, "success", page)
}

// DeleteDestination handles DELETE /destinations/{id} (staff only)
func (h *CatalogHandler) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDestination(r.Context(), callerFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete destination")
		return
	}
	utils.ResponseNoContent(w)
}

// ==================== HOTEL ====================

// ListHotels handles GET /hotels?search=&page=&per_page=
func (h *CatalogHandler) ListHotels(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListHotels(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "list hotels")
		return
	}
	utils.ResponseSuccess(w, "success", page)
}

// GetHotel handles GET /hotels/{id}
func (h *CatalogHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.service.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get hotel")
		return
	}
	utils.ResponseSuccess(w, "success", hotel)
}

// CreateHotel handles POST /hotels (staff only)
func (h *CatalogHandler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req request.CreateHotelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	hotel, err := h.service.CreateHotel(r.Context(), callerFromRequest(r), &req)
	if err != nil {
		h.handleServiceError(w, err, "create hotel")
		return
	}
	utils.ResponseCreated(w, "Hotel created", hotel)
}

// AvailableHotels handles GET /hotels/available?search=&page=&per_page=
func (h *CatalogHandler) AvailableHotels(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.AvailableHotels(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "list available hotels")
		return
	}
	utils.ResponseSuccess(w, "success", page)
}

// DeleteHotel handles DELETE /hotels/{id} (staff only)
func (h *CatalogHandler) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteHotel(r.Context(), callerFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete hotel")
		return
	}
	utils.ResponseNoContent(w)
}

// ==================== CAB ====================

// ListCabs handles GET /cabs?search=&page=&per_page=
func (h *CatalogHandler) ListCabs(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListCabs(r.Context(), listRequestFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "list cabs")
		return
	}
	utils.ResponseSuccess(w, "success", page)
}

// GetCab handles GET /cabs/{id}
func (h *CatalogHandler) GetCab(w http.ResponseWriter, r *http.Request) {
	cab, err := h.service.GetCab(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get cab")
		return
	}
	utils.ResponseSuccess(w, "success", cab)
}

// CreateCab handles POST /cabs (staff only)
func (h *CatalogHandler) CreateCab(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCabRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cab, err := h.service.CreateCab(r.Context(), callerFromRequest(r), &req)
	if err != nil {
		h.handleServiceError(w, err, "create cab")
		return
	}
	utils.ResponseCreated(w, "Cab created", cab)
}

// DeleteCab handles DELETE /cabs/{id} (staff only)
func (h *CatalogHandler) DeleteCab(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCab(r.Context(), callerFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete cab")
		return
	}
	utils.ResponseNoContent(w)
}
