package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
)

type stubScheduleRepo struct {
	days map[time.Weekday]*domain.DayHours
}

func (s *stubScheduleRepo) GetDay(_ context.Context, weekday time.Weekday) (*domain.DayHours, error) {
	return s.days[weekday], nil
}

func (s *stubScheduleRepo) ListWeek(_ context.Context) ([]domain.DayHours, error) {
	out := make([]domain.DayHours, 0, len(s.days))
	for _, h := range s.days {
		out = append(out, *h)
	}
	return out, nil
}

func (s *stubScheduleRepo) UpsertDay(_ context.Context, h *domain.DayHours) (*domain.DayHours, error) {
	if s.days == nil {
		s.days = map[time.Weekday]*domain.DayHours{}
	}
	s.days[h.Weekday] = h
	return h, nil
}

type stubServiceRepo struct {
	services map[int64]*domain.Service
}

func (s *stubServiceRepo) Create(_ context.Context, svc *domain.Service) (*domain.Service, error) {
	return svc, nil
}

func (s *stubServiceRepo) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	return s.services[id], nil
}

func (s *stubServiceRepo) Update(_ context.Context, _ int64, _ domain.ServicePatch) (*domain.Service, error) {
	return nil, nil
}

func (s *stubServiceRepo) List(_ context.Context, _ *int64, _ bool, _, _ int) ([]domain.Service, error) {
	return nil, nil
}

func (s *stubServiceRepo) Deactivate(_ context.Context, _ int64) (bool, error) {
	return false, nil
}

type stubBookingRepo struct {
	bookings []domain.Booking
}

func (s *stubBookingRepo) Create(_ context.Context, _ *domain.BookingCreateReq, _ time.Time) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) GetByIDWithToken(_ context.Context, _ int64, _ string) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) CancelWithToken(_ context.Context, _ int64, _ string) (bool, error) {
	return false, nil
}
func (s *stubBookingRepo) Cancel(_ context.Context, _ int64) (bool, error) { return false, nil }
func (s *stubBookingRepo) Complete(_ context.Context, _ int64) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) Update(_ context.Context, _ int64, _ domain.BookingPatch) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) List(_ context.Context, _, _ int) ([]domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) ListByStatus(_ context.Context, _ domain.BookingStatus, _, _ int) ([]domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingRepo) ListForDay(_ context.Context, _ time.Time) ([]domain.Booking, error) {
	return s.bookings, nil
}

func intPtr(v int) *int { return &v }

// testDay is a Monday well in the future so no slot is in the past by
// accident.
var testDay = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func newTestAvailability(t *testing.T, hours *domain.DayHours, svc *domain.Service, bookings []domain.Booking) AvailabilityService {
	t.Helper()

	schedule := &stubScheduleRepo{days: map[time.Weekday]*domain.DayHours{}}
	if hours != nil {
		schedule.days[hours.Weekday] = hours
	}

	services := &stubServiceRepo{services: map[int64]*domain.Service{}}
	if svc != nil {
		services.services[svc.ID] = svc
	}

	availability := NewAvailabilityService(schedule, &stubBookingRepo{bookings: bookings}, services, nil, 30*time.Minute)
	availability.(*availabilityService).now = func() time.Time { return testDay }
	return availability
}

func TestAvailableSlotsFullOpenDay(t *testing.T) {
	// 10:00 to 18:00, no break, 60 minute service: starts 10:00 through 17:00.
	hours := &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 1080}
	svc := &domain.Service{ID: 1, DurationMinutes: 60, IsActive: true}

	availability := newTestAvailability(t, hours, svc, nil)
	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)

	require.Len(t, slots, 15)
	assert.Equal(t, testDay.Add(10*time.Hour), slots[0].StartsAt)
	assert.Equal(t, testDay.Add(17*time.Hour), slots[len(slots)-1].StartsAt)
	assert.Equal(t, testDay.Add(18*time.Hour), slots[len(slots)-1].EndsAt)
}

func TestAvailableSlotsSkipsLunchBreak(t *testing.T) {
	// Break 14:00 to 15:00: no 60 minute slot may overlap it, so 13:30 and
	// 14:00 and 14:30 all disappear while 13:00 and 15:00 survive.
	hours := &domain.DayHours{
		Weekday: time.Monday, OpenMin: 600, CloseMin: 1080,
		BreakStart: intPtr(840), BreakEnd: intPtr(900),
	}
	svc := &domain.Service{ID: 1, DurationMinutes: 60, IsActive: true}

	availability := newTestAvailability(t, hours, svc, nil)
	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)

	starts := map[time.Time]bool{}
	for _, s := range slots {
		starts[s.StartsAt] = true
	}

	assert.True(t, starts[testDay.Add(13*time.Hour)])
	assert.False(t, starts[testDay.Add(13*time.Hour+30*time.Minute)])
	assert.False(t, starts[testDay.Add(14*time.Hour)])
	assert.False(t, starts[testDay.Add(14*time.Hour+30*time.Minute)])
	assert.True(t, starts[testDay.Add(15*time.Hour)])
}

func TestAvailableSlotsSkipsExistingBookings(t *testing.T) {
	hours := &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 720}
	svc := &domain.Service{ID: 1, DurationMinutes: 30, IsActive: true}
	bookings := []domain.Booking{{
		StartsAt: testDay.Add(10*time.Hour + 30*time.Minute),
		EndsAt:   testDay.Add(11 * time.Hour),
	}}

	availability := newTestAvailability(t, hours, svc, bookings)
	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)

	require.Len(t, slots, 3)
	assert.Equal(t, testDay.Add(10*time.Hour), slots[0].StartsAt)
	assert.Equal(t, testDay.Add(11*time.Hour), slots[1].StartsAt)
	assert.Equal(t, testDay.Add(11*time.Hour+30*time.Minute), slots[2].StartsAt)
}

func TestAvailableSlotsClosedDay(t *testing.T) {
	svc := &domain.Service{ID: 1, DurationMinutes: 30, IsActive: true}

	availability := newTestAvailability(t, nil, svc, nil)
	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlotsDropsPastTimes(t *testing.T) {
	hours := &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 720}
	svc := &domain.Service{ID: 1, DurationMinutes: 30, IsActive: true}

	availability := newTestAvailability(t, hours, svc, nil)
	// Clock at 10:45: the 10:00 and 10:30 starts are gone.
	availability.(*availabilityService).now = func() time.Time {
		return testDay.Add(10*time.Hour + 45*time.Minute)
	}

	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)

	require.Len(t, slots, 2)
	assert.Equal(t, testDay.Add(11*time.Hour), slots[0].StartsAt)
}

func TestAvailableSlotsServiceLongerThanDay(t *testing.T) {
	hours := &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 660}
	svc := &domain.Service{ID: 1, DurationMinutes: 90, IsActive: true}

	availability := newTestAvailability(t, hours, svc, nil)
	slots, err := availability.AvailableSlots(context.Background(), testDay, 1)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlotsUnknownOrInactiveService(t *testing.T) {
	hours := &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 1080}

	availability := newTestAvailability(t, hours, nil, nil)
	_, err := availability.AvailableSlots(context.Background(), testDay, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inactive := &domain.Service{ID: 2, DurationMinutes: 30, IsActive: false}
	availability = newTestAvailability(t, hours, inactive, nil)
	_, err = availability.AvailableSlots(context.Background(), testDay, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetDayScheduleValidation(t *testing.T) {
	availability := newTestAvailability(t, nil, nil, nil)
	ctx := context.Background()

	_, err := availability.SetDaySchedule(ctx, &domain.DayHours{Weekday: time.Monday, OpenMin: 700, CloseMin: 600})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = availability.SetDaySchedule(ctx, &domain.DayHours{Weekday: time.Monday, OpenMin: 600, CloseMin: 1500})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = availability.SetDaySchedule(ctx, &domain.DayHours{
		Weekday: time.Monday, OpenMin: 600, CloseMin: 1080, BreakStart: intPtr(840),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = availability.SetDaySchedule(ctx, &domain.DayHours{
		Weekday: time.Monday, OpenMin: 600, CloseMin: 1080,
		BreakStart: intPtr(500), BreakEnd: intPtr(900),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	saved, err := availability.SetDaySchedule(ctx, &domain.DayHours{
		Weekday: time.Monday, OpenMin: 600, CloseMin: 1080,
		BreakStart: intPtr(840), BreakEnd: intPtr(900),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Monday, saved.Weekday)
}
