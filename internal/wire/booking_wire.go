package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// every booking route requires a session
	r.Route("/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		r.Post("/", bookingHandler.Create)
		r.Get("/mine", bookingHandler.ListMine)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", bookingHandler.Get)
			r.Patch("/", bookingHandler.Update)
			r.Delete("/", bookingHandler.Delete)
			r.Post("/cancel", bookingHandler.Cancel)
			r.Post("/pay", bookingHandler.Pay)
			r.Get("/payments", bookingHandler.Payments)

			// ==================== STAFF ROUTES ====================
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(entity.RoleStaff, log))

				r.Post("/complete", bookingHandler.Complete)
				r.Post("/no-show", bookingHandler.MarkNoShow)
			})
		})
	})
}
