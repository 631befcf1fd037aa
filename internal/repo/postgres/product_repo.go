package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	List(ctx context.Context, categoryID *int64, activeOnly bool, limit, offset int) ([]domain.Product, error)
	// DecrementStock is a conditional update; false means not enough stock.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
}

type ProductRepoImpl struct{ pool *pgxpool.Pool }

func NewProductRepo(pool *pgxpool.Pool) *ProductRepoImpl { return &ProductRepoImpl{pool: pool} }

const productCols = `id, category_id, name, description, price, stock, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepoImpl) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const q = `INSERT INTO products (category_id, name, description, price, stock)
  VALUES ($1,$2,$3,$4,$5)
  RETURNING ` + productCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanProduct(r.pool.QueryRow(ctx, q, p.CategoryID, p.Name, p.Description, p.Price, p.Stock))
}

func (r *ProductRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *ProductRepoImpl) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	const q = `UPDATE products SET
    category_id = COALESCE($2, category_id),
    name        = COALESCE($3, name),
    description = COALESCE($4, description),
    price       = COALESCE($5, price),
    stock       = COALESCE($6, stock),
    is_active   = COALESCE($7, is_active),
    updated_at  = now()
  WHERE id=$1
  RETURNING ` + productCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.pool.QueryRow(ctx, q, id,
		patch.CategoryID, patch.Name, patch.Description, patch.Price, patch.Stock, patch.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *ProductRepoImpl) List(ctx context.Context, categoryID *int64, activeOnly bool, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + productCols + `
		FROM products
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

	ps := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Description,
			&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

func (r *ProductRepoImpl) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	const q = `UPDATE products SET stock = stock - $2, updated_at = now()
    WHERE id = $1 AND stock >= $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ ProductRepo = (*ProductRepoImpl)(nil)
