package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth    *AuthHandler
	Booking *BookingHandler
	Catalog *CatalogHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Booking: NewBookingHandler(service.Booking, log),
		Catalog: NewCatalogHandler(service.Catalog, log),
	}
}

// errorResponder is embedded by every handler to turn service errors into responses
type errorResponder struct {
	log *zap.Logger
}

// handleServiceError maps an *apperror.Error to its status and kind. Anything else is logged
// and reported as a generic 500.
func (h errorResponder) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	h.log.Warn(operation+" failed",
		zap.String("kind", string(appErr.Kind)),
		zap.String("message", appErr.Message),
	)

	var fields any
	if len(appErr.Fields) > 0 {
		fields = appErr.Fields
	}
	utils.ResponseError(w, apperror.HTTPStatus(appErr.Kind), string(appErr.Kind), appErr.Message, fields)
}

// decodeBody reads a JSON body into dst and writes the 400 itself when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// callerFromRequest builds the principal set by the auth middleware. Anonymous requests get a zero Caller.
func callerFromRequest(r *http.Request) entity.Caller {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return entity.Caller{}
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return entity.Caller{UserID: userID, Role: entity.UserRole(role)}
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
	}
}
