// Package judgesession implements the Judge Session Manager (spec §4.9):
// validating a judge's right to vote, replacing their prior votes inside one
// transaction, threshold-checking has_voted, and — once enough judges have
// voted — invoking the Results Calculator and closing the contest.
package judgesession

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codeready-toolchain/contestcore/pkg/authz"
	"github.com/codeready-toolchain/contestcore/pkg/catalog"
	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/execution"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/llmprovider"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/results"
	"github.com/codeready-toolchain/contestcore/pkg/strategy"
	"github.com/codeready-toolchain/contestcore/pkg/tokens"
)

// ContestStore is the narrow contest-row access the manager needs.
type ContestStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.Contest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status models.ContestStatus) error
	CountSubmissions(ctx context.Context, tx pgx.Tx, contestID string) (int, error)
}

// JudgeStore is the narrow contest_judge-row access the manager needs.
type JudgeStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.ContestJudge, error)
	SetHasVoted(ctx context.Context, tx pgx.Tx, id string, hasVoted bool) error
	CountHasVoted(ctx context.Context, tx pgx.Tx, contestID string) (int, error)
}

// TextStore is the narrow contest_texts access the manager needs.
type TextStore interface {
	ListByContestTx(ctx context.Context, tx pgx.Tx, contestID string) ([]*models.ContestText, error)
	UpdateRanking(ctx context.Context, tx pgx.Tx, textID string, ranking, totalPoints *int) error
}

// VoteStore is the narrow votes-table access the manager needs.
type VoteStore interface {
	DeleteByContestJudge(ctx context.Context, tx pgx.Tx, contestJudgeID, model string) error
	Insert(ctx context.Context, tx pgx.Tx, v *models.Vote) error
	CountPodiumByJudge(ctx context.Context, tx pgx.Tx, contestJudgeID string) (int, error)
	AllPlacesByContest(ctx context.Context, tx pgx.Tx, contestID string) ([]models.Vote, error)
}

// AgentStore is the narrow agent-row access the manager needs, for AI judges.
type AgentStore interface {
	Get(ctx context.Context, id string) (*models.Agent, error)
}

// Manager wires every dependency of spec §4.9's ExecuteJudge.
type Manager struct {
	Pool      *pgxpool.Pool
	Contests  ContestStore
	Judges    JudgeStore
	Texts     TextStore
	Votes     VoteStore
	Agents    AgentStore
	Catalog   *catalog.Registry
	Providers *llmprovider.Registry
	Estimator *tokens.Estimator
	Ledger    *ledger.Ledger
	Execs     *execution.Recorder
}

// JudgeContext identifies the judge running this session: exactly one of
// the human or AI branch applies (spec §4.9 inputs).
type JudgeContext struct {
	Caller  authz.Principal
	IsAI    bool
	UserID  string // set when !IsAI
	AgentID string // set when IsAI
	Model   string // set when IsAI
}

// Outcome is what ExecuteJudge returns on success.
type Outcome struct {
	ExecutionID   string // empty for a human judge
	VotesWritten  int
	HasVoted      bool
	ContestClosed bool
	CreditsUsed   int64
}

// VoteInput is one produced vote before persistence (spec §4.9 step c).
type VoteInput struct {
	TextID  string
	Place   *int
	Comment string
}

// ExecuteJudge implements spec §4.9: validations, one judging session, and
// the results-calculation/closing side effect once enough judges have voted.
//
// For a human judge, votes are supplied directly in votes. For an AI judge,
// pass texts for the judge prompt and this invokes the Judge Strategy and
// settles credits itself; votes is ignored in that case.
func (m *Manager) ExecuteJudge(ctx context.Context, contestID, contestJudgeID string, jc JudgeContext, votes []VoteInput, aiTexts []strategy.JudgeText, aiPersonality string) (*Outcome, error) {
	log := slog.With("contest_id", contestID, "contest_judge_id", contestJudgeID, "is_ai", jc.IsAI)

	var execID string
	var creditsUsed int64
	var ownerID string

	// Step a: for AI, create a running execution ahead of the LLM call. The
	// execution's owner is the agent's owner, the party the deduction below
	// charges, not the caller.
	if jc.IsAI {
		agent, err := m.Agents.Get(ctx, jc.AgentID)
		if err != nil {
			return nil, err
		}
		if agent.Type != models.AgentTypeJudge {
			return nil, errs.New(errs.KindInvalidInput, "agent is not a judge")
		}
		if err := authz.AuthorizeExecuteAgent(jc.Caller, agent); err != nil {
			return nil, err
		}

		exec, err := m.Execs.Start(ctx, jc.AgentID, agent.OwnerID, models.AgentTypeJudge, jc.Model)
		if err != nil {
			return nil, err
		}
		execID = exec.ID

		generated, credits, err := m.runAIJudge(ctx, jc, agent, aiTexts, aiPersonality)
		if err != nil {
			_ = m.Execs.Fail(ctx, execID, err.Error(), 0)
			return nil, err
		}
		votes = generated
		creditsUsed = credits
		ownerID = agent.OwnerID
	}

	var outcome *Outcome
	err := execInTx(ctx, m.Pool, func(ctx context.Context, tx pgx.Tx) error {
		contest, err := m.Contests.GetForUpdate(ctx, tx, contestID)
		if err != nil {
			return err
		}
		if contest.Status != models.ContestStatusEvaluation {
			return errs.New(errs.KindInvalidState, "contest is not in evaluation")
		}

		judge, err := m.Judges.GetForUpdate(ctx, tx, contestJudgeID)
		if err != nil {
			return err
		}
		if judge.ContestID != contestID {
			return errs.New(errs.KindInvalidInput, "contest judge does not belong to this contest")
		}
		// AI judges are authorized up front in ExecuteJudge, before Start
		// (AuthorizeExecuteAgent, against the agent, not the contest_judge
		// slot). Only a human vote needs the contest_judge-specific check here.
		if !jc.IsAI {
			if err := authz.AuthorizeVoteInContest(jc.Caller, contest, judge); err != nil {
				return err
			}
		}

		texts, err := m.Texts.ListByContestTx(ctx, tx, contestID)
		if err != nil {
			return err
		}
		validText := make(map[string]bool, len(texts))
		for _, t := range texts {
			validText[t.ID] = true
		}
		submissionCount := len(texts)

		// Step b: delete prior votes for this contest_judge (AI: scoped to model).
		scopeModel := ""
		if jc.IsAI {
			scopeModel = jc.Model
		}
		if err := m.Votes.DeleteByContestJudge(ctx, tx, contestJudgeID, scopeModel); err != nil {
			return err
		}

		// Step c: validate and insert each vote.
		maxPlace := 3
		if submissionCount < maxPlace {
			maxPlace = submissionCount
		}
		for _, v := range votes {
			if !validText[v.TextID] {
				return errs.New(errs.KindInvalidInput, fmt.Sprintf("text %q is not in this contest", v.TextID))
			}
			if v.Place != nil && (*v.Place < 1 || *v.Place > maxPlace) {
				return errs.New(errs.KindInvalidInput, fmt.Sprintf("place %d is out of range for %d submissions", *v.Place, submissionCount))
			}
			row := &models.Vote{
				ID:             uuid.New().String(),
				ContestID:      contestID,
				ContestJudgeID: contestJudgeID,
				TextID:         v.TextID,
				TextPlace:      v.Place,
				Comment:        v.Comment,
				IsAI:           jc.IsAI,
				CreatedAt:      time.Now(),
			}
			if jc.IsAI {
				row.Model = jc.Model
				row.AgentExecutionID = execID
			}
			if err := m.Votes.Insert(ctx, tx, row); err != nil {
				return err
			}
		}

		// Step d: threshold check for has_voted.
		podium := 0
		for _, v := range votes {
			if v.Place != nil {
				podium++
			}
		}
		required := 3
		if submissionCount < required {
			required = submissionCount
		}
		hasVoted := podium >= required
		if err := m.Judges.SetHasVoted(ctx, tx, contestJudgeID, hasVoted); err != nil {
			return err
		}

		outcome = &Outcome{VotesWritten: len(votes), HasVoted: hasVoted, ExecutionID: execID, CreditsUsed: creditsUsed}

		// Step e: close the contest if enough judges have now voted. Reading
		// contest.MinVotesRequired from the row already locked above.
		votedCount, err := m.Judges.CountHasVoted(ctx, tx, contestID)
		if err != nil {
			return err
		}
		if votedCount >= contest.MinVotesRequired {
			if err := m.closeAndScore(ctx, tx, contestID, texts); err != nil {
				return err
			}
			outcome.ContestClosed = true
		}
		return nil
	})
	if err != nil {
		if jc.IsAI && execID != "" {
			// Credits were already deducted in runAIJudge; the vote transaction
			// failed after settlement, so issue a compensating refund (mirrors
			// the Settlement Coordinator's post-deduction failure handling).
			if creditsUsed > 0 {
				if _, refundErr := m.Ledger.Credit(ctx, ownerID, creditsUsed, "Refund: failed judge session", models.LedgerKindRefund); refundErr != nil {
					log.Error("compensating refund failed after judge session error",
						"owner_id", ownerID, "credits", creditsUsed, "original_error", err, "refund_error", refundErr)
				}
			}
			if failErr := m.Execs.Fail(ctx, execID, err.Error(), creditsUsed); failErr != nil {
				log.Error("failed to mark AI judge execution failed", "error", failErr)
			}
		}
		return nil, err
	}

	// Step f: for AI, mark the execution completed now that the transaction
	// committed. Credit settlement already ran before the transaction began.
	if jc.IsAI {
		if err := m.Execs.Complete(ctx, execID, "", creditsUsed); err != nil {
			log.Error("failed to mark AI judge execution completed", "error", err)
		}
	}
	return outcome, nil
}

// runAIJudge invokes the Judge Strategy and settles credits for an AI judge
// run (spec §4.9 step f performed ahead of the vote transaction, mirroring
// the Settlement Coordinator's estimate-then-settle shape).
func (m *Manager) runAIJudge(ctx context.Context, jc JudgeContext, agent *models.Agent, aiTexts []strategy.JudgeText, personality string) ([]VoteInput, int64, error) {
	prompt := strategy.BuildJudgePrompt(personality, aiTexts)
	model, err := m.Catalog.Get(jc.Model)
	if err != nil {
		return nil, 0, err
	}
	adapter, err := m.Providers.Get(string(model.Provider))
	if err != nil {
		return nil, 0, err
	}
	result, err := adapter.Generate(ctx, llmprovider.Request{Model: jc.Model, Prompt: prompt})
	if err != nil {
		return nil, 0, err
	}

	credits, usd, err := m.Catalog.Estimate(jc.Model, result.PromptTokens, result.CompletionTokens)
	if err != nil {
		return nil, 0, err
	}
	if _, err := m.Ledger.Deduct(ctx, agent.OwnerID, credits, fmt.Sprintf("AI Judge: %s", agent.Name), ledger.DeductOpts{
		Model:       jc.Model,
		Tokens:      result.PromptTokens + result.CompletionTokens,
		RealCostUSD: usd,
	}); err != nil {
		return nil, 0, err
	}

	parsed := strategy.ParseJudgeResponse(result.Text, aiTexts)
	votes := make([]VoteInput, 0, len(parsed))
	for _, v := range parsed {
		votes = append(votes, VoteInput{TextID: v.TextID, Place: v.Place, Comment: v.Comment})
	}
	return votes, credits, nil
}

// closeAndScore invokes the Results Calculator over every vote cast for the
// contest and persists rankings, then transitions the contest to closed
// (spec §4.9 step e, §4.10). Runs inside the caller's transaction so a
// partial close is never observable.
func (m *Manager) closeAndScore(ctx context.Context, tx pgx.Tx, contestID string, texts []*models.ContestText) error {
	allVotes, err := m.Votes.AllPlacesByContest(ctx, tx, contestID)
	if err != nil {
		return err
	}
	inputs := make([]results.TextInput, 0, len(texts))
	for _, t := range texts {
		inputs = append(inputs, results.TextInput{TextID: t.ID, SubmissionDate: t.SubmissionDate.UnixNano()})
	}
	ranked := results.Calculate(inputs, allVotes)
	for _, r := range ranked {
		points := r.TotalPoints
		if err := m.Texts.UpdateRanking(ctx, tx, r.TextID, r.Rank, &points); err != nil {
			return err
		}
	}
	return m.Contests.UpdateStatus(ctx, tx, contestID, models.ContestStatusClosed)
}

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
