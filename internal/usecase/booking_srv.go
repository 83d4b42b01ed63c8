package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/mirror"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/metrics"
	"travel-booking/internal/notify"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxReferenceAttempts  = 3
	maxTransitionAttempts = 3
)

type BookingService interface {
	Create(ctx context.Context, caller entity.Caller, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	Get(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error)
	ListMine(ctx context.Context, caller entity.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	Update(ctx context.Context, caller entity.Caller, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error)
	Delete(ctx context.Context, caller entity.Caller, bookingID string) error

	// Payment
	Pay(ctx context.Context, caller entity.Caller, bookingID string, req *request.PayBookingRequest) (*response.BookingResponse, error)
	Payments(ctx context.Context, caller entity.Caller, bookingID string) ([]response.PaymentResponse, error)

	// Staff
	Complete(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error)
	MarkNoShow(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error)
}

// Mirror receives the projection of every committed primary write.
type Mirror interface {
	Sync(ctx context.Context, rec mirror.Record)
}

type bookingService struct {
	repo      *repository.Repository
	mirror    Mirror
	publisher notify.Publisher
	now       func() time.Time
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, mirror Mirror, publisher notify.Publisher, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		mirror:    mirror,
		publisher: publisher,
		now:       dbNow,
		log:       log.With(zap.String("service", "booking")),
	}
}

// dbNow matches the microsecond precision of TIMESTAMPTZ so the value kept in memory
// equals the one read back later.
func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *bookingService) Create(ctx context.Context, caller entity.Caller, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.Unauthenticated("authentication required")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	fields := make(map[string]string)

	hotelID := parseOptionalUUID(req.HotelID, "hotel_id", fields)
	cabID := parseOptionalUUID(req.CabID, "cab_id", fields)
	destinationID := parseOptionalUUID(req.DestinationID, "destination_id", fields)
	target, targetErrs := entity.TargetFromRefs(entity.BookingType(req.BookingType), hotelID, cabID, destinationID)
	mergeFields(fields, targetErrs)

	now := s.now()
	booking := &entity.Booking{
		Model: entity.Model{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         caller.UserID,
		Target:         target,
		CheckInDate:    parseOptionalDate(req.CheckInDate, "check_in_date", fields),
		CheckOutDate:   parseOptionalDate(req.CheckOutDate, "check_out_date", fields),
		NumberOfGuests: req.NumberOfGuests,
		NumberOfRooms:  req.NumberOfRooms,
		TotalPrice:     *req.TotalPrice,
		Discount:       decimalOrZero(req.Discount),
		TaxAmount:      decimalOrZero(req.TaxAmount),
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
	}
	booking.RecalculateAmounts()

	if len(fields) == 0 {
		mergeFields(fields, booking.Validate())
	}
	if len(fields) > 0 {
		s.log.Warn("Create booking rejected", zap.Any("errors", fields))
		return nil, apperror.Validation("validation failed", fields)
	}

	if err := s.ensureTargetExists(ctx, booking.Target); err != nil {
		return nil, err
	}

	if err := s.insertWithReference(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_reference", booking.Reference),
		zap.String("user_id", booking.UserID.String()),
		zap.String("booking_type", string(booking.Target.Type)),
	)
	s.afterCommit(ctx, booking, notify.EventBookingCreated)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) insertWithReference(ctx context.Context, booking *entity.Booking) error {
	for attempt := 1; ; attempt++ {
		booking.Reference = utils.GenerateBookingReference(booking.CreatedAt)

		err := s.repo.Booking.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt == maxReferenceAttempts {
			s.log.Error("Failed to create booking", zap.Error(err), zap.Int("attempt", attempt))
			return apperror.Wrap(apperror.KindInternal, "failed to create booking", err)
		}

		s.log.Warn("Booking reference collision, retrying", zap.String("booking_reference", booking.Reference))
	}
}

func (s *bookingService) Get(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findVisible(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListMine(ctx context.Context, caller entity.Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.Unauthenticated("authentication required")
	}

	req.Normalize()

	bookings, err := s.repo.Booking.FindByUserID(ctx, caller.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("user_id", caller.UserID.String()))
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list bookings", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, caller.UserID)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err), zap.String("user_id", caller.UserID.String()))
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list bookings", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) Update(ctx context.Context, caller entity.Caller, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.mutate(ctx, caller, bookingID, ownerOnly,
		func(b *entity.Booking, now time.Time) error {
			if err := s.validateRequest("Update booking", req); err != nil {
				return err
			}
			return s.applyPatch(ctx, b, req, now)
		},
		func(ctx context.Context, b *entity.Booking, _ entity.BookingStatus) error {
			return s.repo.Booking.UpdateDetails(ctx, b)
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking updated", zap.String("booking_id", booking.ID.String()), zap.Int64("version", booking.Version))
	s.afterCommit(ctx, booking, notify.EventBookingUpdated)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// applyPatch merges req into b. Money inputs are re-rounded and final_amount is always re-derived.
func (s *bookingService) applyPatch(ctx context.Context, b *entity.Booking, req *request.UpdateBookingRequest, now time.Time) error {
	if b.Status.IsTerminal() {
		return apperror.InvalidState(fmt.Sprintf("cannot update a %s booking", b.Status))
	}

	fields := make(map[string]string)

	targetChanged := false
	if req.ChangesTarget() {
		bookingType := b.Target.Type
		if req.BookingType != nil {
			bookingType = entity.BookingType(*req.BookingType)
		}

		hotelID := parseOptionalUUID(req.HotelID, "hotel_id", fields)
		cabID := parseOptionalUUID(req.CabID, "cab_id", fields)
		destinationID := parseOptionalUUID(req.DestinationID, "destination_id", fields)

		// only the type changed: keep pointing at the same id if it is still the same kind
		if hotelID == nil && cabID == nil && destinationID == nil && bookingType == b.Target.Type {
			hotelID, cabID, destinationID = b.Target.Refs()
		}

		target, errs := entity.TargetFromRefs(bookingType, hotelID, cabID, destinationID)
		mergeFields(fields, errs)
		if errs == nil {
			targetChanged = target != b.Target
			b.Target = target
		}
	}

	if req.CheckInDate != nil {
		b.CheckInDate = parseOptionalDate(req.CheckInDate, "check_in_date", fields)
	}
	if req.CheckOutDate != nil {
		b.CheckOutDate = parseOptionalDate(req.CheckOutDate, "check_out_date", fields)
	}
	if req.NumberOfGuests != nil {
		b.NumberOfGuests = req.NumberOfGuests
	}
	if req.NumberOfRooms != nil {
		b.NumberOfRooms = req.NumberOfRooms
	}
	if req.TotalPrice != nil {
		b.TotalPrice = *req.TotalPrice
	}
	if req.Discount != nil {
		b.Discount = *req.Discount
	}
	if req.TaxAmount != nil {
		b.TaxAmount = *req.TaxAmount
	}
	b.RecalculateAmounts()

	if len(fields) == 0 {
		mergeFields(fields, b.Validate())
	}
	if len(fields) > 0 {
		return apperror.Validation("validation failed", fields)
	}

	if targetChanged {
		if err := s.ensureTargetExists(ctx, b.Target); err != nil {
			return err
		}
	}

	b.UpdatedAt = now
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, caller, bookingID, ownerOnly, (*entity.Booking).Cancel, notify.EventBookingCancelled)
}

func (s *bookingService) Complete(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, caller, bookingID, staffOnly, (*entity.Booking).Complete, notify.EventBookingCompleted)
}

func (s *bookingService) MarkNoShow(ctx context.Context, caller entity.Caller, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, caller, bookingID, staffOnly, (*entity.Booking).MarkNoShow, notify.EventBookingNoShow)
}

func (s *bookingService) transition(
	ctx context.Context,
	caller entity.Caller,
	bookingID string,
	authorize func(entity.Caller, *entity.Booking) error,
	apply func(*entity.Booking, time.Time) error,
	event string,
) (*response.BookingResponse, error) {
	booking, err := s.mutate(ctx, caller, bookingID, authorize, apply,
		func(ctx context.Context, b *entity.Booking, from entity.BookingStatus) error {
			return s.repo.Booking.Transition(ctx, b, []entity.BookingStatus{from})
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking transitioned",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event", event),
		zap.String("status", string(booking.Status)),
		zap.Int64("version", booking.Version),
	)
	s.afterCommit(ctx, booking, event)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) Pay(ctx context.Context, caller entity.Caller, bookingID string, req *request.PayBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.mutate(ctx, caller, bookingID, ownerOnly,
		func(b *entity.Booking, now time.Time) error {
			if err := s.validateRequest("Pay booking", req); err != nil {
				return err
			}
			return b.ConfirmPayment(now)
		},
		func(ctx context.Context, b *entity.Booking, _ entity.BookingStatus) error {
			payment := &entity.Payment{
				Model: entity.Model{
					ID:        uuid.New(),
					CreatedAt: b.UpdatedAt,
					UpdatedAt: b.UpdatedAt,
				},
				BookingID:     b.ID,
				UserID:        b.UserID,
				Method:        entity.PaymentMethod(req.Method),
				Amount:        b.FinalAmount,
				Status:        entity.PaymentStatusPaid,
				TransactionID: req.TransactionID,
			}
			return s.repo.Booking.ConfirmPayment(ctx, b, payment)
		},
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking paid",
		zap.String("booking_id", booking.ID.String()),
		zap.String("method", req.Method),
		zap.String("amount", booking.FinalAmount.StringFixed(2)),
	)
	s.afterCommit(ctx, booking, notify.EventBookingConfirmed)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) Payments(ctx context.Context, caller entity.Caller, bookingID string) ([]response.PaymentResponse, error) {
	booking, err := s.findVisible(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to list payments", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, apperror.Wrap(apperror.KindInternal, "failed to list payments", err)
	}

	out := make([]response.PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = response.PaymentToResponse(p)
	}
	return out, nil
}

func (s *bookingService) Delete(ctx context.Context, caller entity.Caller, bookingID string) error {
	id, err := s.authorizedID(caller, bookingID)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		booking, err := s.findBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := ownerOnly(caller, booking); err != nil {
			return err
		}
		if booking.Status != entity.BookingStatusPending {
			return apperror.InvalidState(fmt.Sprintf("cannot delete a %s booking", booking.Status))
		}

		version, err := s.repo.Booking.DeletePending(ctx, booking.ID, caller.UserID)
		if errors.Is(err, repository.ErrStaleState) {
			continue
		}
		if err != nil {
			return apperror.Wrap(apperror.KindInternal, "failed to delete booking", err)
		}

		s.log.Info("Booking deleted", zap.String("booking_id", booking.ID.String()))
		metrics.BookingTransitions.WithLabelValues(notify.EventBookingDeleted).Inc()
		s.mirror.Sync(ctx, mirror.Tombstone(mirror.CollectionBookings, booking.ID, version))
		s.publish(ctx, notify.NewBookingEvent(notify.EventBookingDeleted, booking, s.now()))
		return nil
	}

	return s.concurrentChange(id)
}

// ==================== HELPER METHODS ====================

// mutate loads the booking, authorizes the caller, applies the in-memory change and writes it.
// A write that lost a race against another transition is retried on a fresh read, so the
// caller sees the error the new state produces instead of a silent double-apply.
func (s *bookingService) mutate(
	ctx context.Context,
	caller entity.Caller,
	bookingID string,
	authorize func(entity.Caller, *entity.Booking) error,
	apply func(*entity.Booking, time.Time) error,
	write func(context.Context, *entity.Booking, entity.BookingStatus) error,
) (*entity.Booking, error) {
	id, err := s.authorizedID(caller, bookingID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		booking, err := s.findBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := authorize(caller, booking); err != nil {
			s.log.Warn("Booking access denied",
				zap.String("booking_id", booking.ID.String()),
				zap.String("caller_id", caller.UserID.String()),
			)
			return nil, err
		}

		from := booking.Status
		if err := apply(booking, s.now()); err != nil {
			return nil, err
		}

		err = write(ctx, booking, from)
		if errors.Is(err, repository.ErrStaleState) {
			s.log.Info("Booking changed during write, re-reading", zap.String("booking_id", booking.ID.String()))
			continue
		}
		if err != nil {
			s.log.Error("Failed to write booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
			return nil, apperror.Wrap(apperror.KindInternal, "failed to save booking", err)
		}

		return booking, nil
	}

	return nil, s.concurrentChange(id)
}

// validateRequest is called from apply closures, after the booking is loaded and authorized.
func (s *bookingService) validateRequest(op string, req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn(op+" validation failed", zap.Any("errors", errs))
		return apperror.Validation("validation failed", errs)
	}
	return nil
}

func (s *bookingService) concurrentChange(id uuid.UUID) error {
	s.log.Warn("Booking kept changing, giving up", zap.String("booking_id", id.String()))
	return apperror.New(apperror.KindConflict, "booking was modified concurrently, please retry")
}

func (s *bookingService) authorizedID(caller entity.Caller, bookingID string) (uuid.UUID, error) {
	if !caller.IsAuthenticated() {
		return uuid.Nil, apperror.Unauthenticated("authentication required")
	}

	id, err := utils.ParseUUID(bookingID)
	if err != nil {
		return uuid.Nil, apperror.NotFound("booking not found")
	}
	return id, nil
}

func (s *bookingService) findBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load booking", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking not found")
	}
	return booking, nil
}

// findVisible hides bookings of other users behind NotFound unless the caller is staff.
func (s *bookingService) findVisible(ctx context.Context, caller entity.Caller, bookingID string) (*entity.Booking, error) {
	id, err := s.authorizedID(caller, bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsOwnedBy(caller.UserID) && !caller.HasRole(entity.RoleStaff) {
		return nil, apperror.NotFound("booking not found")
	}
	return booking, nil
}

func ownerOnly(caller entity.Caller, b *entity.Booking) error {
	if !b.IsOwnedBy(caller.UserID) {
		return apperror.Forbidden("you do not own this booking")
	}
	return nil
}

func staffOnly(caller entity.Caller, _ *entity.Booking) error {
	if !caller.HasRole(entity.RoleStaff) {
		return apperror.Forbidden("staff role required")
	}
	return nil
}

func (s *bookingService) ensureTargetExists(ctx context.Context, target entity.Target) error {
	var (
		found bool
		err   error
	)

	switch target.Type {
	case entity.BookingTypeHotel:
		var h *entity.Hotel
		h, err = s.repo.Hotel.FindByID(ctx, target.ID)
		found = h != nil
	case entity.BookingTypeCab:
		var c *entity.Cab
		c, err = s.repo.Cab.FindByID(ctx, target.ID)
		found = c != nil
	case entity.BookingTypeDestination:
		var d *entity.Destination
		d, err = s.repo.Destination.FindByID(ctx, target.ID)
		found = d != nil
	}

	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to load booking target", err)
	}
	if !found {
		return apperror.NotFound(fmt.Sprintf("%s not found", target.Type))
	}
	return nil
}

// afterCommit runs the best-effort side effects of a committed write. Nothing here can fail the request.
func (s *bookingService) afterCommit(ctx context.Context, booking *entity.Booking, event string) {
	metrics.BookingTransitions.WithLabelValues(event).Inc()
	s.mirror.Sync(ctx, mirror.BookingRecord(booking))
	s.publish(ctx, notify.NewBookingEvent(event, booking, booking.UpdatedAt))
}

func (s *bookingService) publish(ctx context.Context, event notify.BookingEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("event", event.Type),
			zap.String("booking_id", event.BookingID),
		)
	}
}

func parseOptionalUUID(value *string, field string, fields map[string]string) *uuid.UUID {
	if value == nil {
		return nil
	}
	id, err := utils.ParseUUID(*value)
	if err != nil {
		fields[field] = "Must be a valid UUID"
		return nil
	}
	return &id
}

func parseOptionalDate(value *string, field string, fields map[string]string) *time.Time {
	if value == nil {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		fields[field] = "Must be a date in 2006-01-02 format"
		return nil
	}
	return &t
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func mergeFields(dst, src map[string]string) {
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
}
