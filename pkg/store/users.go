package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// UserRepo persists models.User.
type UserRepo struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Credits, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, username, email, credits, is_admin, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetForUpdate locks the user row within tx, the linearizability requirement
// of spec §5 for HasCredits+Deduct/Credit.
func (r *UserRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.User, error) {
	row := tx.QueryRow(ctx, `SELECT id, username, email, credits, is_admin, created_at FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, credits, is_admin, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.Email, u.Credits, u.IsAdmin, u.CreatedAt)
	return err
}

// SetCredits updates a user's balance within tx — used only by the ledger,
// which already holds the row lock from GetForUpdate.
func (r *UserRepo) SetCredits(ctx context.Context, tx pgx.Tx, id string, credits int64) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET credits = $2 WHERE id = $1`, id, credits)
	if err != nil {
		return fmt.Errorf("update credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.New(errs.KindNotFound, "user not found")
	}
	return nil
}
