package service

import (
	"context"
	"fmt"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/cache"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/repo/postgres"
)

type AvailabilityService interface {
	AvailableSlots(ctx context.Context, day time.Time, serviceID int64) ([]domain.Slot, error)
	WeekSchedule(ctx context.Context) ([]domain.DayHours, error)
	SetDaySchedule(ctx context.Context, h *domain.DayHours) (*domain.DayHours, error)
}

type availabilityService struct {
	scheduleRepo postgres.ScheduleRepo
	bookingRepo  postgres.BookingRepo
	serviceRepo  postgres.ServiceRepo
	cache        *cache.AvailabilityCache
	granularity  time.Duration
	now          func() time.Time
}

func NewAvailabilityService(
	scheduleRepo postgres.ScheduleRepo,
	bookingRepo postgres.BookingRepo,
	serviceRepo postgres.ServiceRepo,
	availCache *cache.AvailabilityCache,
	granularity time.Duration,
) AvailabilityService {
	return &availabilityService{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		cache:        availCache,
		granularity:  granularity,
		now:          time.Now,
	}
}

// AvailableSlots generates candidate start times for a service on a day at the
// configured granularity, dropping any slot that would overlap the lunch
// break, run past closing, collide with an existing booking, or lie in the
// past.
func (s *availabilityService) AvailableSlots(ctx context.Context, day time.Time, serviceID int64) ([]domain.Slot, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if svc == nil || !svc.IsActive {
		return nil, domain.ErrNotFound
	}
	if svc.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service has no duration", domain.ErrInvalidArgument)
	}

	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, day, serviceID); ok {
			return slots, nil
		}
	}

	hours, err := s.scheduleRepo.GetDay(ctx, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("failed to load business hours: %w", err)
	}
	if hours == nil {
		return []domain.Slot{}, nil // closed
	}

	bookings, err := s.bookingRepo.ListForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	slots := s.generate(day, hours, svc, bookings)

	if s.cache != nil {
		s.cache.Set(ctx, day, serviceID, slots)
	}
	return slots, nil
}

func (s *availabilityService) generate(day time.Time, hours *domain.DayHours, svc *domain.Service, bookings []domain.Booking) []domain.Slot {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	open := midnight.Add(time.Duration(hours.OpenMin) * time.Minute)
	close := midnight.Add(time.Duration(hours.CloseMin) * time.Minute)
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	var breakStart, breakEnd time.Time
	hasBreak := hours.BreakStart != nil && hours.BreakEnd != nil
	if hasBreak {
		breakStart = midnight.Add(time.Duration(*hours.BreakStart) * time.Minute)
		breakEnd = midnight.Add(time.Duration(*hours.BreakEnd) * time.Minute)
	}

	now := s.now()

	slots := make([]domain.Slot, 0, 16)
	for start := open; !start.Add(duration).After(close); start = start.Add(s.granularity) {
		end := start.Add(duration)

		if start.Before(now) {
			continue
		}
		if hasBreak && overlaps(start, end, breakStart, breakEnd) {
			continue
		}

		taken := false
		for _, b := range bookings {
			if overlaps(start, end, b.StartsAt, b.EndsAt) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}

		slots = append(slots, domain.Slot{StartsAt: start, EndsAt: end})
	}
	return slots
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (s *availabilityService) WeekSchedule(ctx context.Context) ([]domain.DayHours, error) {
	return s.scheduleRepo.ListWeek(ctx)
}

func (s *availabilityService) SetDaySchedule(ctx context.Context, h *domain.DayHours) (*domain.DayHours, error) {
	if h.OpenMin < 0 || h.CloseMin > 24*60 || h.OpenMin >= h.CloseMin {
		return nil, fmt.Errorf("%w: opening hours out of range", domain.ErrInvalidArgument)
	}
	if (h.BreakStart == nil) != (h.BreakEnd == nil) {
		return nil, fmt.Errorf("%w: lunch break needs both start and end", domain.ErrInvalidArgument)
	}
	if h.BreakStart != nil && (*h.BreakStart < h.OpenMin || *h.BreakEnd > h.CloseMin || *h.BreakStart >= *h.BreakEnd) {
		return nil, fmt.Errorf("%w: lunch break outside opening hours", domain.ErrInvalidArgument)
	}
	return s.scheduleRepo.UpsertDay(ctx, h)
}
