package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepo interface {
	Create(ctx context.Context, s *domain.Service) (*domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, id int64, patch domain.ServicePatch) (*domain.Service, error)
	List(ctx context.Context, categoryID *int64, activeOnly bool, limit, offset int) ([]domain.Service, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
}

type CategoryRepo interface {
	Create(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context, kind *domain.CategoryKind) ([]domain.Category, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ServiceRepoImpl struct{ pool *pgxpool.Pool }

func NewServiceRepo(pool *pgxpool.Pool) *ServiceRepoImpl { return &ServiceRepoImpl{pool: pool} }

const serviceCols = `id, category_id, name, description, duration_minutes, price, is_active, created_at, updated_at`

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID, &s.CategoryID, &s.Name, &s.Description,
		&s.DurationMinutes, &s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepoImpl) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	const q = `INSERT INTO services (category_id, name, description, duration_minutes, price)
  VALUES ($1,$2,$3,$4,$5)
  RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanService(r.pool.QueryRow(ctx, q,
		s.CategoryID, s.Name, s.Description, s.DurationMinutes, s.Price))
}

func (r *ServiceRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *ServiceRepoImpl) Update(ctx context.Context, id int64, patch domain.ServicePatch) (*domain.Service, error) {
	const q = `UPDATE services SET
    category_id      = COALESCE($2, category_id),
    name             = COALESCE($3, name),
    description      = COALESCE($4, description),
    duration_minutes = COALESCE($5, duration_minutes),
    price            = COALESCE($6, price),
    is_active        = COALESCE($7, is_active),
    updated_at       = now()
  WHERE id=$1
  RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, id,
		patch.CategoryID, patch.Name, patch.Description, patch.DurationMinutes, patch.Price, patch.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *ServiceRepoImpl) List(ctx context.Context, categoryID *int64, activeOnly bool, limit, offset int) ([]domain.Service, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + serviceCols + `
		FROM services
		WHERE ($1::bigint IS NULL OR category_id = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, categoryID, activeOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ss := make([]domain.Service, 0, limit)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(
			&s.ID, &s.CategoryID, &s.Name, &s.Description,
			&s.DurationMinutes, &s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return ss, rows.Err()
}

func (r *ServiceRepoImpl) Deactivate(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE services SET is_active=false, updated_at=now() WHERE id=$1 AND is_active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

type CategoryRepoImpl struct{ pool *pgxpool.Pool }

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepoImpl { return &CategoryRepoImpl{pool: pool} }

const categoryCols = `id, name, kind, created_at, updated_at`

func (r *CategoryRepoImpl) Create(ctx context.Context, name string, kind domain.CategoryKind) (*domain.Category, error) {
	const q = `INSERT INTO categories (name, kind) VALUES ($1,$2) RETURNING ` + categoryCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, q, name, kind).Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	const q = `SELECT ` + categoryCols + ` FROM categories WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepoImpl) List(ctx context.Context, kind *domain.CategoryKind) ([]domain.Category, error) {
	const q = `SELECT ` + categoryCols + ` FROM categories WHERE $1::text IS NULL OR kind = $1 ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cs := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

func (r *CategoryRepoImpl) Rename(ctx context.Context, id int64, name string) (*domain.Category, error) {
	const q = `UPDATE categories SET name=$2, updated_at=now() WHERE id=$1 RETURNING ` + categoryCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.Category
	err := r.pool.QueryRow(ctx, q, id, name).Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM categories WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var (
	_ ServiceRepo  = (*ServiceRepoImpl)(nil)
	_ CategoryRepo = (*CategoryRepoImpl)(nil)
)
