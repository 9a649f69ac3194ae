// Package ledger implements the Credit Ledger (spec §4.6): an append-only
// transaction log plus the user balance it funds. HasCredits/Deduct/Credit
// all run inside a row-locked transaction so that balance reads and writes
// for the same user are linearizable (spec §5).
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// UserStore is the narrow user-row access the ledger needs.
type UserStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.User, error)
	SetCredits(ctx context.Context, tx pgx.Tx, id string, credits int64) error
}

// Filter is the admin query of spec §4.6.
type Filter struct {
	UserID   string
	Kind     models.LedgerKind
	Model    string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Summary is spec §4.6's Summary() shape.
type Summary struct {
	TotalCreditsUsed int64
	ByModel          map[string]int64
	ByUser           map[string]int64
	TotalTokens      int64
	TotalRealCostUSD float64
}

// TransactionStore is the narrow ledger-row access the ledger needs.
type TransactionStore interface {
	Insert(ctx context.Context, tx pgx.Tx, row *models.CreditTransaction) error
	Filter(ctx context.Context, f Filter) ([]*models.CreditTransaction, error)
	Summary(ctx context.Context) (*Summary, error)
}

// Ledger wraps a connection pool and the two repositories above; it begins
// its own transactions rather than accepting one from the caller, since
// spec §4.6 treats Deduct/Credit as atomic units of work.
type Ledger struct {
	pool  *pgxpool.Pool
	users UserStore
	txs   TransactionStore
}

func New(pool *pgxpool.Pool, users UserStore, txs TransactionStore) *Ledger {
	return &Ledger{pool: pool, users: users, txs: txs}
}

// HasCredits reads user.credits >= amount (spec §4.6). Not used to gate
// Deduct itself — Deduct re-checks inside its own transaction to avoid a
// check-then-act race with a concurrent deduction on the same user.
func (l *Ledger) HasCredits(ctx context.Context, userID string, amount int64) (bool, error) {
	var ok bool
	err := execInTx(ctx, l.pool, func(ctx context.Context, tx pgx.Tx) error {
		u, err := l.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		ok = u.Credits >= amount
		return nil
	})
	return ok, err
}

// DeductOpts carries the optional attribution fields spec §4.6 lists for
// Deduct (model/tokens/usd) plus the overdraft escape hatch.
type DeductOpts struct {
	Model         string
	Tokens        int
	RealCostUSD   float64
	AllowOverdraft bool
}

// Deduct appends a consumption row and decrements the user's balance inside
// one transaction. Fails with KindInsufficientCredit if the post-state would
// be negative and AllowOverdraft was not set.
func (l *Ledger) Deduct(ctx context.Context, userID string, amount int64, description string, opts DeductOpts) (*models.CreditTransaction, error) {
	if amount < 0 {
		return nil, errs.New(errs.KindInvalidInput, "deduction amount must be non-negative")
	}
	var row *models.CreditTransaction
	err := execInTx(ctx, l.pool, func(ctx context.Context, tx pgx.Tx) error {
		u, err := l.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		newBalance := u.Credits - amount
		if newBalance < 0 && !opts.AllowOverdraft {
			return errs.New(errs.KindInsufficientCredit, "insufficient credits for this deduction")
		}
		if err := l.users.SetCredits(ctx, tx, userID, newBalance); err != nil {
			return err
		}
		row = &models.CreditTransaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			Amount:      -amount,
			Kind:        models.LedgerKindConsumption,
			Description: description,
			Model:       opts.Model,
			Tokens:      opts.Tokens,
			RealCostUSD: opts.RealCostUSD,
			CreatedAt:   time.Now(),
		}
		return l.txs.Insert(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Credit appends a row of kind ∈ {purchase, refund, adjustment} and
// increments the user's balance (spec §4.6, symmetric with Deduct).
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, description string, kind models.LedgerKind) (*models.CreditTransaction, error) {
	if kind == models.LedgerKindConsumption {
		return nil, errs.New(errs.KindInvalidInput, "Credit does not accept kind=consumption; use Deduct")
	}
	if amount < 0 {
		return nil, errs.New(errs.KindInvalidInput, "credit amount must be non-negative")
	}
	var row *models.CreditTransaction
	err := execInTx(ctx, l.pool, func(ctx context.Context, tx pgx.Tx) error {
		u, err := l.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := l.users.SetCredits(ctx, tx, userID, u.Credits+amount); err != nil {
			return err
		}
		row = &models.CreditTransaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			Amount:      amount,
			Kind:        kind,
			Description: description,
			CreatedAt:   time.Now(),
		}
		return l.txs.Insert(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Adjust applies a signed amount to a user's balance and records it with
// kind=adjustment (spec §6's PATCH /admin/users/{id}/credits), regardless of
// direction — unlike Deduct/Credit it is not scoped to a single kind, since
// an administrative correction can move the balance either way.
func (l *Ledger) Adjust(ctx context.Context, userID string, amount int64, description string) (*models.CreditTransaction, error) {
	var row *models.CreditTransaction
	err := execInTx(ctx, l.pool, func(ctx context.Context, tx pgx.Tx) error {
		u, err := l.users.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := l.users.SetCredits(ctx, tx, userID, u.Credits+amount); err != nil {
			return err
		}
		row = &models.CreditTransaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			Amount:      amount,
			Kind:        models.LedgerKindAdjustment,
			Description: description,
			CreatedAt:   time.Now(),
		}
		return l.txs.Insert(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Filter runs the admin query of spec §4.6.
func (l *Ledger) Filter(ctx context.Context, f Filter) ([]*models.CreditTransaction, error) {
	return l.txs.Filter(ctx, f)
}

// Summary aggregates the ledger the way spec §4.6's Summary() describes.
func (l *Ledger) Summary(ctx context.Context) (*Summary, error) {
	return l.txs.Summary(ctx)
}

// execInTx is a private copy of pkg/store's transaction helper — ledger owns
// its transaction boundary rather than importing pkg/store, keeping the
// dependency direction one-way (store does not know about ledger, ledger
// does not know about store's concrete repo types beyond the interfaces
// above).
func execInTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
