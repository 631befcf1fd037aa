package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepo interface {
	Create(ctx context.Context, in *domain.BookingCreateReq, endsAt time.Time) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIDWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error)
	CancelWithToken(ctx context.Context, id int64, token string) (bool, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	Complete(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	ListForDay(ctx context.Context, day time.Time) ([]domain.Booking, error)
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `id, manage_token, status,
client_id, client_name, client_email, client_phone,
service_id, starts_at, ends_at, notes,
created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.ManageToken, &b.Status,
		&b.ClientID, &b.ClientName, &b.ClientEmail, &b.ClientPhone,
		&b.ServiceID, &b.StartsAt, &b.EndsAt, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepoImpl) Create(ctx context.Context, in *domain.BookingCreateReq, endsAt time.Time) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
    manage_token, status,
    client_id, client_name, client_email, client_phone,
    service_id, starts_at, ends_at, notes
  ) VALUES ($1,'pending',$2,$3,$4,$5,$6,$7,$8,$9)
  RETURNING ` + bookingCols

	tok := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, tok,
		in.ClientID, in.ClientName, in.ClientEmail, in.ClientPhone,
		in.ServiceID, in.StartsAt, endsAt, in.Notes,
	))
}

func (r *BookingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) GetByIDWithToken(ctx context.Context, id int64, token string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1 AND manage_token=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) CancelWithToken(ctx context.Context, id int64, token string) (bool, error) {
	const q = `UPDATE bookings SET status='canceled', updated_at=now()
    WHERE id=$1 AND manage_token=$2 AND status NOT IN ('canceled','completed')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, token)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *BookingRepoImpl) Cancel(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE bookings SET status='canceled', updated_at=now()
    WHERE id=$1 AND status NOT IN ('canceled','completed')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Complete flips a confirmed or pending booking to completed. Returns nil when
// the booking is missing or already terminal.
func (r *BookingRepoImpl) Complete(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `UPDATE bookings SET status='completed', updated_at=now()
    WHERE id=$1 AND status IN ('pending','confirmed')
    RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	const q = `UPDATE bookings SET
    client_name  = COALESCE($2, client_name),
    client_phone = COALESCE($3, client_phone),
    service_id   = COALESCE($4, service_id),
    starts_at    = COALESCE($5, starts_at),
    ends_at      = ends_at + (COALESCE($5, starts_at) - starts_at),
    notes        = COALESCE($6, notes),
    status       = COALESCE($7, status),
    updated_at   = now()
  WHERE id=$1
  RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id,
		patch.ClientName, patch.ClientPhone, patch.ServiceID, patch.StartsAt, patch.Notes, patch.Status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + bookingCols + ` FROM bookings ORDER BY starts_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows, limit)
}

func (r *BookingRepoImpl) ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		WHERE status = $1
		ORDER BY starts_at DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows, limit)
}

// ListForDay returns every non-canceled booking whose interval touches the
// given calendar day. The availability calculator feeds on this.
func (r *BookingRepoImpl) ListForDay(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		WHERE status <> 'canceled' AND starts_at < $2 AND ends_at > $1
		ORDER BY starts_at
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows, 16)
}

func collectBookings(rows pgx.Rows, capHint int) ([]domain.Booking, error) {
	bs := make([]domain.Booking, 0, capHint)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.ManageToken, &b.Status,
			&b.ClientID, &b.ClientName, &b.ClientEmail, &b.ClientPhone,
			&b.ServiceID, &b.StartsAt, &b.EndsAt, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
