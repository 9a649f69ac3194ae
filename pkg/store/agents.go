package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// AgentRepo persists models.Agent.
type AgentRepo struct {
	pool *pgxpool.Pool
}

func (r *AgentRepo) Get(ctx context.Context, id string) (*models.Agent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, type, name, description, prompt, is_public, version, created_at
		 FROM agents WHERE id = $1`, id)
	a := &models.Agent{}
	err := row.Scan(&a.ID, &a.OwnerID, &a.Type, &a.Name, &a.Description, &a.Prompt, &a.IsPublic, &a.Version, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "agent not found")
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	return a, nil
}

func (r *AgentRepo) Create(ctx context.Context, a *models.Agent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO agents (id, owner_id, type, name, description, prompt, is_public, version, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.OwnerID, a.Type, a.Name, a.Description, a.Prompt, a.IsPublic, a.Version, a.CreatedAt)
	return err
}

func (r *AgentRepo) ListPublicOrOwned(ctx context.Context, ownerID string) ([]*models.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, type, name, description, prompt, is_public, version, created_at
		 FROM agents WHERE owner_id = $1 OR is_public = TRUE ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []*models.Agent
	for rows.Next() {
		a := &models.Agent{}
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Type, &a.Name, &a.Description, &a.Prompt, &a.IsPublic, &a.Version, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
