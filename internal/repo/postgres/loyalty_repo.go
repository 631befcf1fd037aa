package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoyaltyRepo owns the point balance on clients and the append-only
// loyalty_transactions ledger. Balance change and ledger insert always happen
// inside one database transaction so the two can never drift apart.
type LoyaltyRepo interface {
	Award(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error)
	Redeem(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error)
	Balance(ctx context.Context, clientID int64) (int, bool, error)
	Stats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error)
}

type LoyaltyRepoImpl struct{ pool *pgxpool.Pool }

func NewLoyaltyRepo(pool *pgxpool.Pool) *LoyaltyRepoImpl { return &LoyaltyRepoImpl{pool: pool} }

const txCols = `id, client_id, kind, points, reason, reference_id, reference_type, created_at`

func (r *LoyaltyRepoImpl) Award(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	const upd = `UPDATE clients
    SET loyalty_points = loyalty_points + $2, updated_at = now()
    WHERE id = $1
    RETURNING loyalty_points`

	var balance int
	if err := tx.QueryRow(ctx, upd, clientID, points).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, err
	}

	entry, err := insertLedgerEntry(ctx, tx, clientID, domain.TransactionEarned, points, reason, refID, refType)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return entry, balance, nil
}

func (r *LoyaltyRepoImpl) Redeem(ctx context.Context, clientID int64, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement: the balance check and the write are one atomic
	// statement, so concurrent redemptions can never drive the balance below
	// zero. Zero rows back means either a missing client or not enough points.
	const upd = `UPDATE clients
    SET loyalty_points = loyalty_points - $2, updated_at = now()
    WHERE id = $1 AND loyalty_points >= $2
    RETURNING loyalty_points`

	var balance int
	if err := tx.QueryRow(ctx, upd, clientID, points).Scan(&balance); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, err
		}
		var available int
		err := tx.QueryRow(ctx, `SELECT loyalty_points FROM clients WHERE id=$1`, clientID).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		if err != nil {
			return nil, 0, err
		}
		return nil, 0, &domain.InsufficientBalanceError{Requested: points, Available: available}
	}

	entry, err := insertLedgerEntry(ctx, tx, clientID, domain.TransactionRedeemed, points, reason, refID, refType)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return entry, balance, nil
}

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, clientID int64, kind domain.TransactionKind, points int, reason string, refID *int64, refType domain.ReferenceType) (*domain.LoyaltyTransaction, error) {
	const ins = `INSERT INTO loyalty_transactions (client_id, kind, points, reason, reference_id, reference_type)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING ` + txCols

	var t domain.LoyaltyTransaction
	err := tx.QueryRow(ctx, ins, clientID, kind, points, reason, refID, string(refType)).Scan(
		&t.ID, &t.ClientID, &t.Kind, &t.Points, &t.Reason, &t.ReferenceID, &t.ReferenceType, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *LoyaltyRepoImpl) Balance(ctx context.Context, clientID int64) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var balance int
	err := r.pool.QueryRow(ctx, `SELECT loyalty_points FROM clients WHERE id=$1`, clientID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func (r *LoyaltyRepoImpl) Stats(ctx context.Context, clientID int64) (*domain.LoyaltyStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var stats domain.LoyaltyStats
	err := r.pool.QueryRow(ctx, `SELECT loyalty_points FROM clients WHERE id=$1`, clientID).Scan(&stats.CurrentBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const agg = `SELECT
    COALESCE(SUM(points) FILTER (WHERE kind = 'earned'), 0),
    COALESCE(SUM(points) FILTER (WHERE kind = 'redeemed'), 0),
    COUNT(*)
  FROM loyalty_transactions WHERE client_id = $1`

	if err := r.pool.QueryRow(ctx, agg, clientID).Scan(
		&stats.TotalPointsEarned, &stats.TotalPointsRedeemed, &stats.TransactionCount,
	); err != nil {
		return nil, err
	}

	const last = `SELECT ` + txCols + ` FROM loyalty_transactions
    WHERE client_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	var t domain.LoyaltyTransaction
	err = r.pool.QueryRow(ctx, last, clientID).Scan(
		&t.ID, &t.ClientID, &t.Kind, &t.Points, &t.Reason, &t.ReferenceID, &t.ReferenceType, &t.CreatedAt,
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no transactions yet
	case err != nil:
		return nil, err
	default:
		stats.LastTransaction = &t
	}

	return &stats, nil
}

var _ LoyaltyRepo = (*LoyaltyRepoImpl)(nil)
