package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"travel-booking/internal/cache"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/mirror"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cacheKindDestinations = "destinations"
	cacheKindHotels       = "hotels"
	cacheKindCabs         = "cabs"
)

// List views share the cache of their kind, so one invalidation clears all of them.
const (
	viewAll       = "all"
	viewPopular   = "popular"
	viewAvailable = "available"
)

type CatalogService interface {
	// Destination
	ListDestinations(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.DestinationResponse], error)
	GetDestination(ctx context.Context, id string) (*response.DestinationResponse, error)
	CreateDestination(ctx context.Context, caller entity.Caller, req *request.CreateDestinationRequest) (*response.DestinationResponse, error)
	PopularDestinations(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.DestinationResponse], error)
	DeleteDestination(ctx context.Context, caller entity.Caller, id string) error

	// Hotel
	ListHotels(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.HotelResponse], error)
	GetHotel(ctx context.Context, id string) (*response.HotelResponse, error)
	CreateHotel(ctx context.Context, caller entity.Caller, req *request.CreateHotelRequest) (*response.HotelResponse, error)
	AvailableHotels(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.HotelResponse], error)
	DeleteHotel(ctx context.Context, caller entity.Caller, id string) error

	// Cab
	ListCabs(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.CabResponse], error)
	GetCab(ctx context.Context, id string) (*response.CabResponse, error)
	CreateCab(ctx context.Context, caller entity.Caller, req *request.CreateCabRequest) (*response.CabResponse, error)
	DeleteCab(ctx context.Context, caller entity.Caller, id string) error
}

type catalogService struct {
	repo   *repository.Repository
	cache  cache.Cache
	mirror Mirror
	log    *zap.Logger
}

func NewCatalogService(repo *repository.Repository, c cache.Cache, mirror Mirror, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		cache:  c,
		mirror: mirror,
		log:    log.With(zap.String("service", "catalog")),
	}
}

// ==================== DESTINATION ====================

func (s *catalogService) ListDestinations(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.DestinationResponse], error) {
	return cachedList(ctx, s, cacheKindDestinations, viewAll, req,
		s.repo.Destination.FindAll, s.repo.Destination.CountAll, response.DestinationToResponse)
}

func (s *catalogService) GetDestination(ctx context.Context, id string) (*response.DestinationResponse, error) {
	d, err := findCatalogItem(ctx, id, "destination", s.repo.Destination.FindByID)
	if err != nil {
		return nil, err
	}
	resp := response.DestinationToResponse(d)
	return &resp, nil
}

func (s *catalogService) CreateDestination(ctx context.Context, caller entity.Caller, req *request.CreateDestinationRequest) (*response.DestinationResponse, error) {
	if err := s.authorizeWrite(caller, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	d := &entity.Destination{
		Model:           entity.Model{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		City:            req.City,
		State:           req.State,
		Country:         req.Country,
		BestTimeToVisit: req.BestTimeToVisit,
		Attractions:     nonNil(req.Attractions),
		AverageCost:     req.AverageCost.Round(2),
		Rating:          req.Rating,
	}
	if fields := moneyFieldErrors(map[string]decimal.Decimal{"average_cost": d.AverageCost}); fields != nil {
		return nil, apperror.Validation("validation failed", fields)
	}

	if err := s.repo.Destination.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Validation("validation failed", map[string]string{"name": "Already exists"})
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to create destination", err)
	}

	s.afterWrite(ctx, cacheKindDestinations, mirror.DestinationRecord(d))
	s.log.Info("Destination created", zap.String("destination_id", d.ID.String()), zap.String("name", d.Name))

	resp := response.DestinationToResponse(d)
	return &resp, nil
}

// PopularDestinations lists destinations rated 4 and above, best rated first.
func (s *catalogService) PopularDestinations(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.DestinationResponse], error) {
	return cachedList(ctx, s, cacheKindDestinations, viewPopular, req,
		s.repo.Destination.FindPopular, s.repo.Destination.CountPopular, response.DestinationToResponse)
}

// DeleteDestination detaches the destination's hotels and mirrors them before the tombstone.
func (s *catalogService) DeleteDestination(ctx context.Context, caller entity.Caller, id string) error {
	if err := s.authorizeStaff(caller); err != nil {
		return err
	}
	d, err := findCatalogItem(ctx, id, "destination", s.repo.Destination.FindByID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	detached, err := s.repo.Destination.Delete(ctx, d.ID, now)
	if err != nil {
		return s.deleteError(err, "destination", d.ID)
	}

	if len(detached) > 0 {
		s.invalidate(ctx, cacheKindHotels)
		for _, h := range detached {
			s.mirror.Sync(ctx, mirror.HotelRecord(h))
		}
	}
	s.afterWrite(ctx, cacheKindDestinations, mirror.CatalogTombstone(mirror.CollectionDestinations, d.ID, d.UpdatedAt, now))
	s.log.Info("Destination deleted",
		zap.String("destination_id", d.ID.String()),
		zap.Int("detached_hotels", len(detached)),
	)
	return nil
}

// ==================== HOTEL ====================

func (s *catalogService) ListHotels(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.HotelResponse], error) {
	return cachedList(ctx, s, cacheKindHotels, viewAll, req,
		s.repo.Hotel.FindAll, s.repo.Hotel.CountAll, response.HotelToResponse)
}

func (s *catalogService) GetHotel(ctx context.Context, id string) (*response.HotelResponse, error) {
	h, err := findCatalogItem(ctx, id, "hotel", s.repo.Hotel.FindByID)
	if err != nil {
		return nil, err
	}
	resp := response.HotelToResponse(h)
	return &resp, nil
}

func (s *catalogService) CreateHotel(ctx context.Context, caller entity.Caller, req *request.CreateHotelRequest) (*response.HotelResponse, error) {
	if err := s.authorizeWrite(caller, req); err != nil {
		return nil, err
	}

	var destinationID *uuid.UUID
	if req.DestinationID != nil {
		d, err := findCatalogItem(ctx, *req.DestinationID, "destination", s.repo.Destination.FindByID)
		if err != nil {
			return nil, err
		}
		destinationID = &d.ID
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	h := &entity.Hotel{
		Model:          entity.Model{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:           strings.TrimSpace(req.Name),
		Location:       req.Location,
		DestinationID:  destinationID,
		Description:    req.Description,
		PricePerNight:  req.PricePerNight.Round(2),
		Rating:         req.Rating,
		Amenities:      nonNil(req.Amenities),
		AvailableRooms: req.AvailableRooms,
		TotalRooms:     req.TotalRooms,
		Phone:          req.Phone,
		Email:          req.Email,
	}
	if fields := moneyFieldErrors(map[string]decimal.Decimal{"price_per_night": h.PricePerNight}); fields != nil {
		return nil, apperror.Validation("validation failed", fields)
	}

	if err := s.repo.Hotel.Create(ctx, h); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to create hotel", err)
	}

	s.afterWrite(ctx, cacheKindHotels, mirror.HotelRecord(h))
	s.log.Info("Hotel created", zap.String("hotel_id", h.ID.String()), zap.String("name", h.Name))

	resp := response.HotelToResponse(h)
	return &resp, nil
}

// AvailableHotels lists hotels with at least one free room.
func (s *catalogService) AvailableHotels(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.HotelResponse], error) {
	return cachedList(ctx, s, cacheKindHotels, viewAvailable, req,
		s.repo.Hotel.FindAvailable, s.repo.Hotel.CountAvailable, response.HotelToResponse)
}

func (s *catalogService) DeleteHotel(ctx context.Context, caller entity.Caller, id string) error {
	if err := s.authorizeStaff(caller); err != nil {
		return err
	}
	h, err := findCatalogItem(ctx, id, "hotel", s.repo.Hotel.FindByID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := s.repo.Hotel.Delete(ctx, h.ID); err != nil {
		return s.deleteError(err, "hotel", h.ID)
	}

	s.afterWrite(ctx, cacheKindHotels, mirror.CatalogTombstone(mirror.CollectionHotels, h.ID, h.UpdatedAt, now))
	s.log.Info("Hotel deleted", zap.String("hotel_id", h.ID.String()))
	return nil
}

// ==================== CAB ====================

func (s *catalogService) ListCabs(ctx context.Context, req *request.CatalogListRequest) (*response.PaginatedResponse[response.CabResponse], error) {
	return cachedList(ctx, s, cacheKindCabs, viewAll, req,
		s.repo.Cab.FindAll, s.repo.Cab.CountAll, response.CabToResponse)
}

func (s *catalogService) GetCab(ctx context.Context, id string) (*response.CabResponse, error) {
	c, err := findCatalogItem(ctx, id, "cab", s.repo.Cab.FindByID)
	if err != nil {
		return nil, err
	}
	resp := response.CabToResponse(c)
	return &resp, nil
}

func (s *catalogService) CreateCab(ctx context.Context, caller entity.Caller, req *request.CreateCabRequest) (*response.CabResponse, error) {
	if err := s.authorizeWrite(caller, req); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	c := &entity.Cab{
		Model:         entity.Model{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CompanyName:   strings.TrimSpace(req.CompanyName),
		VehicleType:   entity.VehicleType(req.VehicleType),
		PricePerKm:    req.PricePerKm.Round(2),
		PricePerHour:  req.PricePerHour.Round(2),
		Capacity:      req.Capacity,
		Rating:        req.Rating,
		AvailableCars: req.AvailableCars,
		Description:   req.Description,
		Phone:         req.Phone,
		Email:         req.Email,
	}
	if fields := moneyFieldErrors(map[string]decimal.Decimal{
		"price_per_km":   c.PricePerKm,
		"price_per_hour": c.PricePerHour,
	}); fields != nil {
		return nil, apperror.Validation("validation failed", fields)
	}

	if err := s.repo.Cab.Create(ctx, c); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to create cab", err)
	}

	s.afterWrite(ctx, cacheKindCabs, mirror.CabRecord(c))
	s.log.Info("Cab created", zap.String("cab_id", c.ID.String()), zap.String("company_name", c.CompanyName))

	resp := response.CabToResponse(c)
	return &resp, nil
}

func (s *catalogService) DeleteCab(ctx context.Context, caller entity.Caller, id string) error {
	if err := s.authorizeStaff(caller); err != nil {
		return err
	}
	c, err := findCatalogItem(ctx, id, "cab", s.repo.Cab.FindByID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := s.repo.Cab.Delete(ctx, c.ID); err != nil {
		return s.deleteError(err, "cab", c.ID)
	}

	s.afterWrite(ctx, cacheKindCabs, mirror.CatalogTombstone(mirror.CollectionCabs, c.ID, c.UpdatedAt, now))
	s.log.Info("Cab deleted", zap.String("cab_id", c.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *catalogService) authorizeStaff(caller entity.Caller) error {
	if !caller.IsAuthenticated() {
		return apperror.Unauthenticated("authentication required")
	}
	if !caller.HasRole(entity.RoleStaff) {
		return apperror.Forbidden("staff role required")
	}
	return nil
}

func (s *catalogService) authorizeWrite(caller entity.Caller, req any) error {
	if err := s.authorizeStaff(caller); err != nil {
		return err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Catalog validation failed", zap.Any("errors", errs))
		return apperror.Validation("validation failed", errs)
	}
	return nil
}

func (s *catalogService) afterWrite(ctx context.Context, kind string, rec mirror.Record) {
	s.invalidate(ctx, kind)
	s.mirror.Sync(ctx, rec)
}

func (s *catalogService) invalidate(ctx context.Context, kind string) {
	if err := s.cache.Invalidate(ctx, kind); err != nil {
		s.log.Warn("Failed to invalidate catalog cache", zap.Error(err), zap.String("kind", kind))
	}
}

func (s *catalogService) deleteError(err error, name string, id uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(name + " not found")
	case errors.Is(err, repository.ErrInUse):
		s.log.Warn("Catalog delete refused", zap.String("kind", name), zap.String("id", id.String()))
		return apperror.New(apperror.KindConflict, name+" is referenced by bookings")
	default:
		return apperror.Wrap(apperror.KindInternal, "failed to delete "+name, err)
	}
}

// moneyFieldErrors checks catalog prices against the sign and size the money columns allow.
func moneyFieldErrors(amounts map[string]decimal.Decimal) map[string]string {
	fields := make(map[string]string)
	for field, amount := range amounts {
		if amount.IsNegative() {
			fields[field] = "Must not be negative"
		}
		entity.CheckMoneyLimit(fields, field, amount)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// cachedList serves one catalog page, reading through the cache. Cache failures degrade to a
// plain database read.
func cachedList[E any, R any](
	ctx context.Context,
	s *catalogService,
	kind, view string,
	req *request.CatalogListRequest,
	find func(ctx context.Context, search string, limit, offset int) ([]*E, error),
	count func(ctx context.Context, search string) (int64, error),
	convert func(*E) R,
) (*response.PaginatedResponse[R], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed", errs)
	}
	search := strings.TrimSpace(req.Search)
	key := cache.ListKey(view, search, req.Page, req.Limit())

	var cached response.PaginatedResponse[R]
	hit, err := s.cache.Get(ctx, kind, key, &cached)
	if err != nil {
		s.log.Warn("Catalog cache read failed", zap.Error(err), zap.String("kind", kind))
	}
	if hit {
		return &cached, nil
	}

	items, err := find(ctx, search, req.Limit(), req.Offset())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list "+kind, err)
	}
	total, err := count(ctx, search)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to count "+kind, err)
	}

	data := make([]R, len(items))
	for i, item := range items {
		data[i] = convert(item)
	}
	resp := response.NewPaginatedResponse(data, req.Page, req.Limit(), total)

	if err := s.cache.Set(ctx, kind, key, resp); err != nil {
		s.log.Warn("Catalog cache write failed", zap.Error(err), zap.String("kind", kind))
	}
	return resp, nil
}

func findCatalogItem[E any](ctx context.Context, id, name string, find func(context.Context, uuid.UUID) (*E, error)) (*E, error) {
	parsed, err := utils.ParseUUID(id)
	if err != nil {
		return nil, apperror.NotFound(name + " not found")
	}

	item, err := find(ctx, parsed)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load "+name, err)
	}
	if item == nil {
		return nil, apperror.NotFound(name + " not found")
	}
	return item, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
