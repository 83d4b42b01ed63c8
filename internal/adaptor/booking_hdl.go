package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	errorResponder
	service usecase.BookingService
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		errorResponder: errorResponder{log: log.With(zap.String("handler", "booking"))},
		service:        service,
	}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.Create(r.Context(), callerFromRequest(r), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// ListMine handles GET /bookings/mine
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	req := paginationFromQuery(r)

	bookings, err := h.service.ListMine(r.Context(), callerFromRequest(r), &req)
	if err != nil {
		h.handleServiceError(w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// Get handles GET /bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.Get(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// Update handles PATCH /bookings/{id}
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.Update(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update booking")
		return
	}

	utils.ResponseSuccess(w, "Booking updated", booking)
}

// Cancel handles POST /bookings/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.Cancel(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// Delete handles DELETE /bookings/{id}
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), callerFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete booking")
		return
	}

	utils.ResponseNoContent(w)
}

// Pay handles POST /bookings/{id}/pay
func (h *BookingHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req request.PayBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.Pay(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "pay booking")
		return
	}

	utils.ResponseSuccess(w, "Payment successful", booking)
}

// Payments handles GET /bookings/{id}/payments
func (h *BookingHandler) Payments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.Payments(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "list payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// ==================== STAFF METHODS ====================

// Complete handles POST /bookings/{id}/complete (staff only)
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.Complete(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "complete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking completed", booking)
}

// MarkNoShow handles POST /bookings/{id}/no-show (staff only)
func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.MarkNoShow(r.Context(), callerFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "mark no-show")
		return
	}

	utils.ResponseSuccess(w, "Booking marked as no-show", booking)
}
