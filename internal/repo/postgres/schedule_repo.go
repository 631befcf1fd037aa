package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepo interface {
	GetDay(ctx context.Context, weekday time.Weekday) (*domain.DayHours, error)
	ListWeek(ctx context.Context) ([]domain.DayHours, error)
	UpsertDay(ctx context.Context, h *domain.DayHours) (*domain.DayHours, error)
}

type ScheduleRepoImpl struct{ pool *pgxpool.Pool }

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepoImpl { return &ScheduleRepoImpl{pool: pool} }

const hoursCols = `id, weekday, open_min, close_min, break_start, break_end`

func (r *ScheduleRepoImpl) GetDay(ctx context.Context, weekday time.Weekday) (*domain.DayHours, error) {
	const q = `SELECT ` + hoursCols + ` FROM business_hours WHERE weekday=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var h domain.DayHours
	err := r.pool.QueryRow(ctx, q, int(weekday)).Scan(
		&h.ID, &h.Weekday, &h.OpenMin, &h.CloseMin, &h.BreakStart, &h.BreakEnd,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // closed that day
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *ScheduleRepoImpl) ListWeek(ctx context.Context) ([]domain.DayHours, error) {
	const q = `SELECT ` + hoursCols + ` FROM business_hours ORDER BY weekday`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hs := make([]domain.DayHours, 0, 7)
	for rows.Next() {
		var h domain.DayHours
		if err := rows.Scan(&h.ID, &h.Weekday, &h.OpenMin, &h.CloseMin, &h.BreakStart, &h.BreakEnd); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

func (r *ScheduleRepoImpl) UpsertDay(ctx context.Context, h *domain.DayHours) (*domain.DayHours, error) {
	const q = `INSERT INTO business_hours (weekday, open_min, close_min, break_start, break_end)
  VALUES ($1,$2,$3,$4,$5)
  ON CONFLICT (weekday) DO UPDATE SET
    open_min=EXCLUDED.open_min, close_min=EXCLUDED.close_min,
    break_start=EXCLUDED.break_start, break_end=EXCLUDED.break_end
  RETURNING ` + hoursCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.DayHours
	err := r.pool.QueryRow(ctx, q, int(h.Weekday), h.OpenMin, h.CloseMin, h.BreakStart, h.BreakEnd).Scan(
		&out.ID, &out.Weekday, &out.OpenMin, &out.CloseMin, &out.BreakStart, &out.BreakEnd,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var _ ScheduleRepo = (*ScheduleRepoImpl)(nil)
