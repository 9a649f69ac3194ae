package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// ExecutionRepo persists models.AgentExecution.
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

const executionColumns = `id, coalesce(agent_id::text, ''), owner_id, type, model, status,
	coalesce(result_id::text, ''), error_message, credits_used, parsing_fallback_used, created_at, completed_at`

func scanExecution(row pgx.Row) (*models.AgentExecution, error) {
	e := &models.AgentExecution{}
	err := row.Scan(&e.ID, &e.AgentID, &e.OwnerID, &e.Type, &e.Model, &e.Status,
		&e.ResultID, &e.ErrorMessage, &e.CreditsUsed, &e.ParsingFallbackUsed, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "execution not found")
		}
		return nil, fmt.Errorf("scan execution: %w", err)
	}
	return e, nil
}

func (r *ExecutionRepo) Get(ctx context.Context, id string) (*models.AgentExecution, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+executionColumns+` FROM agent_executions WHERE id = $1`, id)
	return scanExecution(row)
}

// Create inserts a new execution in the `running` status (spec §4.7).
func (r *ExecutionRepo) Create(ctx context.Context, e *models.AgentExecution) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agent_executions (id, agent_id, owner_id, type, model, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, nullableString(e.AgentID), e.OwnerID, e.Type, e.Model, models.ExecutionStatusRunning, e.CreatedAt)
	return err
}

// Complete transitions an execution to `completed`. Terminal states never
// change again (spec §4.7) — callers only invoke this from `running`.
func (r *ExecutionRepo) Complete(ctx context.Context, id, resultID string, creditsUsed int64, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE agent_executions SET status = $2, result_id = $3, credits_used = $4, completed_at = $5
		 WHERE id = $1 AND status = 'running'`,
		id, models.ExecutionStatusCompleted, nullableString(resultID), creditsUsed, completedAt)
	return err
}

// Fail transitions an execution to `failed` with an error message.
func (r *ExecutionRepo) Fail(ctx context.Context, id, errMsg string, creditsUsed int64, completedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE agent_executions SET status = $2, error_message = $3, credits_used = $4, completed_at = $5
		 WHERE id = $1 AND status = 'running'`,
		id, models.ExecutionStatusFailed, errMsg, creditsUsed, completedAt)
	return err
}

func (r *ExecutionRepo) SetParsingFallbackUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE agent_executions SET parsing_fallback_used = TRUE WHERE id = $1`, id)
	return err
}

// ListStaleRunning returns executions stuck in `running` past threshold, the
// watchdog's sweep target (spec §5, grounded on pkg/queue/orphan.go).
func (r *ExecutionRepo) ListStaleRunning(ctx context.Context, olderThan time.Time) ([]*models.AgentExecution, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+executionColumns+` FROM agent_executions WHERE status = 'running' AND created_at < $1`, olderThan)
	if err != nil {
		return nil, fmt.Errorf("list stale executions: %w", err)
	}
	defer rows.Close()

	var out []*models.AgentExecution
	for rows.Next() {
		e := &models.AgentExecution{}
		if err := rows.Scan(&e.ID, &e.AgentID, &e.OwnerID, &e.Type, &e.Model, &e.Status,
			&e.ResultID, &e.ErrorMessage, &e.CreditsUsed, &e.ParsingFallbackUsed, &e.CreatedAt, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
