package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeVegaEsparza/laksmi-sub003/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StaffRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	FindByID(ctx context.Context, id int64) (*domain.StaffUser, error)
}

type StaffRepoImpl struct{ pool *pgxpool.Pool }

func NewStaffRepo(pool *pgxpool.Pool) *StaffRepoImpl { return &StaffRepoImpl{pool: pool} }

const staffCols = `id, role, email, password_hash, name, is_active, created_at, updated_at`

func scanStaff(row pgx.Row) (*domain.StaffUser, error) {
	var u domain.StaffUser
	err := row.Scan(&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *StaffRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	const q = `SELECT ` + staffCols + ` FROM staff_users WHERE lower(email)=lower($1) AND is_active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanStaff(r.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *StaffRepoImpl) FindByID(ctx context.Context, id int64) (*domain.StaffUser, error) {
	const q = `SELECT ` + staffCols + ` FROM staff_users WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanStaff(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

var _ StaffRepo = (*StaffRepoImpl)(nil)
