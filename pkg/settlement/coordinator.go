// Package settlement implements the Settlement Coordinator (spec §4.8): the
// happy-path orchestration of ExecuteWriter, tying together authorization,
// token estimation, provider dispatch, the Writer Strategy parser, the
// Credit Ledger, and the Execution Recorder into one transactional-at-the-
// boundaries flow.
package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/contestcore/pkg/authz"
	"github.com/codeready-toolchain/contestcore/pkg/catalog"
	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/execution"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/llmprovider"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/strategy"
	"github.com/codeready-toolchain/contestcore/pkg/tokens"
)

// AgentStore is the narrow agent-row access the coordinator needs.
type AgentStore interface {
	Get(ctx context.Context, id string) (*models.Agent, error)
}

// UserStore is the narrow user-row access the coordinator needs, for the
// username baked into the produced text's author field (spec §4.8 step 8).
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// TextStore is the narrow submission-row access the coordinator needs.
type TextStore interface {
	Create(ctx context.Context, t *models.ContestText) error
}

// Coordinator wires every dependency of spec §4.8's ExecuteWriter.
type Coordinator struct {
	Agents    AgentStore
	Users     UserStore
	Texts     TextStore
	Catalog   *catalog.Registry
	Providers *llmprovider.Registry
	Estimator *tokens.Estimator
	Ledger    *ledger.Ledger
	Execs     *execution.Recorder
}

// WriterRequest carries the caller-supplied inputs to ExecuteWriter.
type WriterRequest struct {
	Caller               authz.Principal
	AgentID              string
	Model                string
	ContestDescription   string
	GuidanceTitle        string
	GuidanceRequirements string
	Force                bool // bypass the pre-check HasCredits gate (spec §4.8 step 3)
	FallbackTitle        string
}

// WriterOutcome is what ExecuteWriter returns on success.
type WriterOutcome struct {
	ExecutionID    string
	TextID         string
	CreditsUsed    int64
	ParsingSuccess bool
}

// ExecuteWriter implements spec §4.8's eleven-step happy path plus its two
// failure branches.
func (c *Coordinator) ExecuteWriter(ctx context.Context, req WriterRequest) (*WriterOutcome, error) {
	log := slog.With("agent_id", req.AgentID, "model", req.Model, "caller", req.Caller.UserID)

	// Step 1: resolve agent, check type and authorization.
	agent, err := c.Agents.Get(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}
	if agent.Type != models.AgentTypeWriter {
		return nil, errs.New(errs.KindInvalidInput, "agent is not a writer")
	}
	if err := authz.AuthorizeExecuteAgent(req.Caller, agent); err != nil {
		return nil, err
	}

	user, err := c.Users.Get(ctx, req.Caller.UserID)
	if err != nil {
		return nil, err
	}

	// Step 2: estimate tokens and estimated credits.
	prompt := strategy.BuildWriterPrompt(strategy.WriterContext{
		AgentPersonality:     agent.Prompt,
		ContestDescription:   req.ContestDescription,
		GuidanceTitle:        req.GuidanceTitle,
		GuidanceRequirements: req.GuidanceRequirements,
	})
	estPromptTokens := c.Estimator.EstimateTokens(prompt, req.Model)
	const estimatedCompletionTokens = 800 // rough budget until the real call returns usage
	estimatedCredits, _, err := c.Catalog.Estimate(req.Model, estPromptTokens, estimatedCompletionTokens)
	if err != nil {
		return nil, err
	}

	// Step 3: pre-check.
	if !req.Force {
		hasCredits, err := c.Ledger.HasCredits(ctx, user.ID, estimatedCredits)
		if err != nil {
			return nil, err
		}
		if !hasCredits {
			return nil, errs.New(errs.KindInsufficientCredit, "insufficient credits for this writer call")
		}
	}

	// Step 4: record a running execution.
	exec, err := c.Execs.Start(ctx, agent.ID, user.ID, models.AgentTypeWriter, req.Model)
	if err != nil {
		return nil, err
	}

	model, err := c.Catalog.Get(req.Model)
	if err != nil {
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), 0)
		return nil, err
	}
	adapter, err := c.Providers.Get(string(model.Provider))
	if err != nil {
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), 0)
		return nil, err
	}

	// Step 5: invoke the Writer Strategy.
	result, err := adapter.Generate(ctx, llmprovider.Request{
		Model:  req.Model,
		Prompt: prompt,
	})
	if err != nil {
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), 0)
		return nil, err
	}
	parsed := strategy.ParseWriterResponse(result.Text, req.FallbackTitle)
	if !parsed.ParsingSuccess {
		log.Warn("writer response required a parsing fallback", "response_excerpt", strategy.FormatWriterDebug(result.Text))
		if markErr := c.Execs.MarkParsingFallbackUsed(ctx, exec.ID); markErr != nil {
			log.Warn("failed to mark parsing fallback used", "error", markErr)
		}
	}

	// Step 6: compute actual credits from observed tokens.
	credits, usd, err := c.Catalog.Estimate(req.Model, result.PromptTokens, result.CompletionTokens)
	if err != nil {
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), 0)
		return nil, err
	}

	// Step 7: deduct.
	_, err = c.Ledger.Deduct(ctx, user.ID, credits, fmt.Sprintf("AI Writer: %s", agent.Name), ledger.DeductOpts{
		Model:       req.Model,
		Tokens:      result.PromptTokens + result.CompletionTokens,
		RealCostUSD: usd,
		AllowOverdraft: req.Force,
	})
	if err != nil {
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), 0)
		return nil, err
	}

	// Step 8: persist the produced text.
	text := &models.ContestText{
		ID:      uuid.New().String(),
		OwnerID: user.ID,
		Title:   parsed.Title,
		Content: parsed.Content,
		Author:  fmt.Sprintf("%s (via AI Agent: %s | Model: %s)", user.Username, agent.Name, req.Model),
	}
	if err := c.Texts.Create(ctx, text); err != nil {
		// Step 11: post-deduction failure — attempt a compensating refund.
		if _, refundErr := c.Ledger.Credit(ctx, user.ID, credits, "Refund: failed writer", models.LedgerKindRefund); refundErr != nil {
			log.Error("compensating refund failed after writer persistence error",
				"user_id", user.ID, "credits", credits, "original_error", err, "refund_error", refundErr)
		}
		_ = c.Execs.Fail(ctx, exec.ID, err.Error(), credits)
		return nil, errs.Wrap(errs.KindInternal, "failed to persist writer output", err)
	}

	// Step 9: mark execution completed.
	if err := c.Execs.Complete(ctx, exec.ID, text.ID, credits); err != nil {
		log.Error("failed to mark writer execution completed after successful settlement",
			"execution_id", exec.ID, "text_id", text.ID, "error", err)
	}

	return &WriterOutcome{
		ExecutionID:    exec.ID,
		TextID:         text.ID,
		CreditsUsed:    credits,
		ParsingSuccess: parsed.ParsingSuccess,
	}, nil
}
