package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepo interface {
	Create(ctx context.Context, in *domain.ClientCreateReq) (*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	Update(ctx context.Context, id int64, patch domain.ClientPatch) (*domain.Client, error)
	List(ctx context.Context, search string, limit, offset int) ([]domain.Client, error)
}

type ClientRepoImpl struct{ pool *pgxpool.Pool }

func NewClientRepo(pool *pgxpool.Pool) *ClientRepoImpl { return &ClientRepoImpl{pool: pool} }

const clientCols = `id, name, email, phone, birthday, notes, loyalty_points, is_active, created_at, updated_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Birthday, &c.Notes,
		&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepoImpl) Create(ctx context.Context, in *domain.ClientCreateReq) (*domain.Client, error) {
	const q = `INSERT INTO clients (name, email, phone, birthday, notes)
  VALUES ($1,$2,$3,$4,$5)
  RETURNING ` + clientCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanClient(r.pool.QueryRow(ctx, q, in.Name, in.Email, in.Phone, in.Birthday, in.Notes))
}

func (r *ClientRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	const q = `SELECT ` + clientCols + ` FROM clients WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanClient(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ClientRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	const q = `SELECT ` + clientCols + ` FROM clients WHERE lower(email)=lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanClient(r.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ClientRepoImpl) Update(ctx context.Context, id int64, patch domain.ClientPatch) (*domain.Client, error) {
	const q = `UPDATE clients SET
    name       = COALESCE($2, name),
    email      = COALESCE($3, email),
    phone      = COALESCE($4, phone),
    birthday   = COALESCE($5, birthday),
    notes      = COALESCE($6, notes),
    is_active  = COALESCE($7, is_active),
    updated_at = now()
  WHERE id=$1
  RETURNING ` + clientCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	c, err := scanClient(r.pool.QueryRow(ctx, q, id,
		patch.Name, patch.Email, patch.Phone, patch.Birthday, patch.Notes, patch.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ClientRepoImpl) List(ctx context.Context, search string, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + clientCols + `
		FROM clients
		WHERE $1 = '' OR name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%' OR phone LIKE '%'||$1||'%'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cs := make([]domain.Client, 0, limit)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Birthday, &c.Notes,
			&c.LoyaltyPoints, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

var _ ClientRepo = (*ClientRepoImpl)(nil)
