package wire

import (
	"net/http"

	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(
	r chi.Router,
	catalogHandler *adaptor.CatalogHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	staffOnly := chi.Chain(
		middleware.AuthSession(repo.Session, log),
		middleware.RequireRole(entity.RoleStaff, log),
	)

	type view struct {
		path    string
		handler http.HandlerFunc
	}

	routes := []struct {
		path                         string
		list, get                    http.HandlerFunc
		views                        []view
		createByStaff, deleteByStaff http.HandlerFunc
	}{
		{
			"/destinations", catalogHandler.ListDestinations, catalogHandler.GetDestination,
			[]view{{"/popular", catalogHandler.PopularDestinations}},
			catalogHandler.CreateDestination, catalogHandler.DeleteDestination,
		},
		{
			"/hotels", catalogHandler.ListHotels, catalogHandler.GetHotel,
			[]view{{"/available", catalogHandler.AvailableHotels}},
			catalogHandler.CreateHotel, catalogHandler.DeleteHotel,
		},
		{
			"/cabs", catalogHandler.ListCabs, catalogHandler.GetCab,
			nil,
			catalogHandler.CreateCab, catalogHandler.DeleteCab,
		},
	}

	for _, rt := range routes {
		r.Route(rt.path, func(r chi.Router) {
			// ==================== PUBLIC ROUTES ====================
			r.Get("/", rt.list)
			for _, v := range rt.views {
				r.Get(v.path, v.handler)
			}
			r.Get("/{id}", rt.get)

			// ==================== STAFF ROUTES ====================
			r.With(staffOnly...).Post("/", rt.createByStaff)
			r.With(staffOnly...).Delete("/{id}", rt.deleteByStaff)
		})
	}
}
