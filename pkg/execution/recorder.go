// Package execution implements the Execution Recorder (spec §4.7): the
// durable log of agent invocations, with transitions running → completed
// and running → failed. Terminal states never change again.
package execution

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/contestcore/pkg/models"
)

// Store is the narrow execution-row access the recorder needs.
type Store interface {
	Create(ctx context.Context, e *models.AgentExecution) error
	Complete(ctx context.Context, id, resultID string, creditsUsed int64, completedAt time.Time) error
	Fail(ctx context.Context, id, errMsg string, creditsUsed int64, completedAt time.Time) error
	SetParsingFallbackUsed(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.AgentExecution, error)
}

// Recorder is a thin, stateless wrapper around Store that fixes the
// vocabulary of transitions callers are allowed to make.
type Recorder struct {
	store Store
}

func New(store Store) *Recorder { return &Recorder{store: store} }

// Start records a new execution in `running` (spec §4.7/§4.8 step 4).
func (r *Recorder) Start(ctx context.Context, agentID, ownerID string, typ models.AgentType, model string) (*models.AgentExecution, error) {
	e := &models.AgentExecution{
		ID:        uuid.New().String(),
		AgentID:   agentID,
		OwnerID:   ownerID,
		Type:      typ,
		Model:     model,
		Status:    models.ExecutionStatusRunning,
		CreatedAt: time.Now(),
	}
	if err := r.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Complete transitions a running execution to completed with its result and
// the credits actually charged (spec §4.8 step 9).
func (r *Recorder) Complete(ctx context.Context, executionID, resultID string, creditsUsed int64) error {
	return r.store.Complete(ctx, executionID, resultID, creditsUsed, time.Now())
}

// Fail transitions a running execution to failed. creditsUsed is 0 unless
// the failure occurred after settlement (spec §4.7), in which case the
// caller passes the actual amount and issues a compensating refund via the
// ledger separately.
func (r *Recorder) Fail(ctx context.Context, executionID, reason string, creditsUsed int64) error {
	return r.store.Fail(ctx, executionID, reason, creditsUsed, time.Now())
}

// MarkParsingFallbackUsed flags an execution whose strategy had to fall back
// past level 1 of its parser (spec §4.4/§4.5's `parsing_success`), so the
// Execution Recorder can surface it for auditing.
func (r *Recorder) MarkParsingFallbackUsed(ctx context.Context, executionID string) error {
	return r.store.SetParsingFallbackUsed(ctx, executionID)
}
