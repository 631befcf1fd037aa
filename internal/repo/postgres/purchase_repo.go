package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepo interface {
	Create(ctx context.Context, clientID, productID int64, qty int, amount float64, paymentIntentID string) (*domain.Purchase, error)
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
	ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Purchase, error)
}

type PurchaseRepoImpl struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepoImpl { return &PurchaseRepoImpl{pool: pool} }

const purchaseCols = `id, client_id, product_id, quantity, amount, status, payment_intent_id, created_at, updated_at`

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(
		&p.ID, &p.ClientID, &p.ProductID, &p.Quantity, &p.Amount,
		&p.Status, &p.PaymentIntentID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepoImpl) Create(ctx context.Context, clientID, productID int64, qty int, amount float64, paymentIntentID string) (*domain.Purchase, error) {
	const q = `INSERT INTO purchases (client_id, product_id, quantity, amount, status, payment_intent_id)
  VALUES ($1,$2,$3,$4,'pending',$5)
  RETURNING ` + purchaseCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPurchase(r.pool.QueryRow(ctx, q, clientID, productID, qty, amount, paymentIntentID))
}

func (r *PurchaseRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	const q = `SELECT ` + purchaseCols + ` FROM purchases WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPurchase(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// MarkPaid is conditional on the pending status so completing a purchase
// twice only awards points once.
func (r *PurchaseRepoImpl) MarkPaid(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE purchases SET status='paid', updated_at=now() WHERE id=$1 AND status='pending'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PurchaseRepoImpl) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Purchase, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + purchaseCols + `
		FROM purchases
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := make([]domain.Purchase, 0, limit)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.ProductID, &p.Quantity, &p.Amount,
			&p.Status, &p.PaymentIntentID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

var _ PurchaseRepo = (*PurchaseRepoImpl)(nil)
