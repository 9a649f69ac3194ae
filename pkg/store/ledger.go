package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// LedgerRepo persists models.CreditTransaction. The ledger is append-only —
// this repo has no Update method (spec §4.6).
type LedgerRepo struct {
	pool *pgxpool.Pool
}

func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, row *models.CreditTransaction) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO credit_transactions (id, user_id, amount, kind, description, model, tokens, real_cost_usd, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		row.ID, nullableString(row.UserID), row.Amount, row.Kind, row.Description, row.Model, row.Tokens, row.RealCostUSD, row.CreatedAt)
	return err
}

func (r *LedgerRepo) Filter(ctx context.Context, f ledger.Filter) ([]*models.CreditTransaction, error) {
	query := `SELECT id, coalesce(user_id::text, ''), amount, kind, description, model, tokens, real_cost_usd, created_at
	          FROM credit_transactions WHERE TRUE`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.UserID != "" {
		query += ` AND user_id = ` + arg(f.UserID)
	}
	if f.Kind != "" {
		query += ` AND kind = ` + arg(f.Kind)
	}
	if f.Model != "" {
		query += ` AND model = ` + arg(f.Model)
	}
	if f.DateFrom != nil {
		query += ` AND created_at >= ` + arg(*f.DateFrom)
	}
	if f.DateTo != nil {
		query += ` AND created_at <= ` + arg(*f.DateTo)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter ledger: %w", err)
	}
	defer rows.Close()

	var out []*models.CreditTransaction
	for rows.Next() {
		row := &models.CreditTransaction{}
		if err := rows.Scan(&row.ID, &row.UserID, &row.Amount, &row.Kind, &row.Description, &row.Model, &row.Tokens, &row.RealCostUSD, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *LedgerRepo) Summary(ctx context.Context) (*ledger.Summary, error) {
	sum := &ledger.Summary{ByModel: map[string]int64{}, ByUser: map[string]int64{}}

	rows, err := r.pool.Query(ctx,
		`SELECT coalesce(user_id::text, ''), model, amount, tokens, real_cost_usd
		 FROM credit_transactions WHERE kind = 'consumption'`)
	if err != nil {
		return nil, fmt.Errorf("summarize ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, model string
		var amount int64
		var tokens int
		var usd float64
		if err := rows.Scan(&userID, &model, &amount, &tokens, &usd); err != nil {
			return nil, fmt.Errorf("scan ledger summary row: %w", err)
		}
		used := -amount // consumption rows are negative
		sum.TotalCreditsUsed += used
		sum.TotalTokens += int64(tokens)
		sum.TotalRealCostUSD += usd
		if model != "" {
			sum.ByModel[model] += used
		}
		if userID != "" {
			sum.ByUser[userID] += used
		}
	}
	return sum, rows.Err()
}

// SumByUser verifies the ledger invariant of spec §4.6: Σ amount over user =
// user.credits. Exercised by the test suite, not by production code paths.
func (r *LedgerRepo) SumByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT coalesce(sum(amount), 0) FROM credit_transactions WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}
