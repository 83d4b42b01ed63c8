package usecase

import (
	"travel-booking/internal/cache"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Booking BookingService
	Catalog CatalogService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	mirror Mirror,
	catalogCache cache.Cache,
	publisher notify.Publisher,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Booking: NewBookingService(repo, mirror, publisher, log),
		Catalog: NewCatalogService(repo, catalogCache, mirror, log),
	}
}
