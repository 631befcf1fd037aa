package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/cache"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/config"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/events"
	"github.com/FelipeVegaEsparza/laksmi-sub003/pkg/logger"
)

type BookingService interface {
	CreateBooking(ctx context.Context, req *domain.BookingCreateReq, idempotencyKey string) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookingWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error)
	CancelBookingWithToken(ctx context.Context, id int64, token string) (bool, error)
	CancelBooking(ctx context.Context, id int64) (bool, error)
	CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
	ListBookings(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	ListBookingsByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
}

type bookingService struct {
	bookingRepo     postgres.BookingRepo
	idempotencyRepo postgres.IdempotencyRepo
	serviceRepo     postgres.ServiceRepo
	loyalty         LoyaltyService
	eventBus        events.Publisher
	availCache      *cache.AvailabilityCache
	cfg             config.BookingConfig
}

func NewBookingService(
	bookingRepo postgres.BookingRepo,
	idempotencyRepo postgres.IdempotencyRepo,
	serviceRepo postgres.ServiceRepo,
	loyalty LoyaltyService,
	eventBus events.Publisher,
	availCache *cache.AvailabilityCache,
	cfg config.BookingConfig,
) BookingService {
	return &bookingService{
		bookingRepo:     bookingRepo,
		idempotencyRepo: idempotencyRepo,
		serviceRepo:     serviceRepo,
		loyalty:         loyalty,
		eventBus:        eventBus,
		availCache:      availCache,
		cfg:             cfg,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *domain.BookingCreateReq, idempotencyKey string) (*domain.Booking, error) {
	svc, err := s.validateBookingRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if existingID, err := s.idempotencyRepo.CheckOrCreate(ctx, idempotencyKey, 0); err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		} else if existingID > 0 {
			return s.bookingRepo.GetByID(ctx, existingID)
		}
	}

	endsAt := req.StartsAt.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	// Conflict check against the same day's bookings. The unique constraint on
	// (service_id, starts_at) backs this up for racing requests.
	existing, err := s.bookingRepo.ListForDay(ctx, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bookings: %w", err)
	}
	for _, b := range existing {
		if req.StartsAt.Before(b.EndsAt) && b.StartsAt.Before(endsAt) {
			return nil, fmt.Errorf("%w: the requested time is no longer available", domain.ErrConflict)
		}
	}

	booking, err := s.bookingRepo.Create(ctx, req, endsAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if idempotencyKey != "" {
		if _, err := s.idempotencyRepo.CheckOrCreate(ctx, idempotencyKey, booking.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to store idempotency record", "error", err, "booking_id", booking.ID)
		}
	}

	if s.availCache != nil {
		s.availCache.InvalidateDay(ctx, booking.StartsAt)
	}

	event := events.BookingCreatedEvent{
		BookingID:   booking.ID,
		ClientEmail: booking.ClientEmail,
		ClientName:  booking.ClientName,
		ServiceName: svc.Name,
		StartsAt:    booking.StartsAt,
		ManageToken: booking.ManageToken,
		CreatedAt:   booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) validateBookingRequest(ctx context.Context, req *domain.BookingCreateReq) (*domain.Service, error) {
	if strings.TrimSpace(req.ClientName) == "" {
		return nil, fmt.Errorf("%w: client name is required", domain.ErrInvalidArgument)
	}
	if !strings.Contains(req.ClientEmail, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrInvalidArgument)
	}
	if req.StartsAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: booking time must be in the future", domain.ErrInvalidArgument)
	}
	if s.cfg.MaxAdvanceDays > 0 && req.StartsAt.After(time.Now().AddDate(0, 0, s.cfg.MaxAdvanceDays)) {
		return nil, fmt.Errorf("%w: booking too far in advance", domain.ErrInvalidArgument)
	}

	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil || !svc.IsActive {
		return nil, fmt.Errorf("%w: unknown service", domain.ErrNotFound)
	}
	return svc, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) GetBookingWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error) {
	return s.bookingRepo.GetByIDWithToken(ctx, id, token)
}

func (s *bookingService) CancelBookingWithToken(ctx context.Context, id int64, token string) (bool, error) {
	ok, err := s.bookingRepo.CancelWithToken(ctx, id, token)
	if err != nil || !ok {
		return ok, err
	}
	s.afterCancel(ctx, id)
	return true, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id int64) (bool, error) {
	ok, err := s.bookingRepo.Cancel(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.afterCancel(ctx, id)
	return true, nil
}

func (s *bookingService) afterCancel(ctx context.Context, id int64) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil || booking == nil {
		return
	}

	if s.availCache != nil {
		s.availCache.InvalidateDay(ctx, booking.StartsAt)
	}

	event := events.BookingCanceledEvent{
		BookingID:   booking.ID,
		ClientEmail: booking.ClientEmail,
		ClientName:  booking.ClientName,
		StartsAt:    booking.StartsAt,
		CanceledAt:  time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking canceled event", "error", err, "booking_id", id)
	}
}

// CompleteBooking marks the booking done and, for bookings linked to a client
// record, awards purchase points for the service price.
func (s *bookingService) CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.Complete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}

	pointsAwarded := 0
	if booking.ClientID != nil {
		svc, err := s.serviceRepo.GetByID(ctx, booking.ServiceID)
		if err == nil && svc != nil {
			points, perr := s.loyalty.CalculatePointsForPurchase(svc.Price)
			if perr == nil && points > 0 {
				if _, err := s.loyalty.AwardPoints(ctx, *booking.ClientID, points,
					"Servicio completado: "+svc.Name, &booking.ID, domain.ReferenceBooking); err != nil {
					logger.ErrorContext(ctx, "Failed to award booking points", "error", err, "booking_id", id)
				} else {
					pointsAwarded = points
				}
			}
		}
	}

	event := events.BookingCompletedEvent{
		BookingID:     booking.ID,
		ClientID:      booking.ClientID,
		PointsAwarded: pointsAwarded,
		CompletedAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCompleted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking completed event", "error", err, "booking_id", id)
	}

	return booking, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	existing, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if !existing.CanCancel() {
		return nil, fmt.Errorf("%w: booking is already %s", domain.ErrConflict, existing.Status)
	}
	if patch.StartsAt != nil && patch.StartsAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: booking time must be in the future", domain.ErrInvalidArgument)
	}

	updated, err := s.bookingRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if updated != nil && s.availCache != nil {
		s.availCache.InvalidateDay(ctx, existing.StartsAt)
		if patch.StartsAt != nil {
			s.availCache.InvalidateDay(ctx, *patch.StartsAt)
		}
	}

	return updated, nil
}

func (s *bookingService) ListBookings(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	return s.bookingRepo.List(ctx, limit, offset)
}

func (s *bookingService) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	return s.bookingRepo.ListByStatus(ctx, status, limit, offset)
}
