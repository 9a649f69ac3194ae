package judgesession_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/contestcore/pkg/authz"
	"github.com/codeready-toolchain/contestcore/pkg/catalog"
	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/execution"
	"github.com/codeready-toolchain/contestcore/pkg/judgesession"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/llmprovider"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/pkg/strategy"
	"github.com/codeready-toolchain/contestcore/pkg/tokens"
	"github.com/codeready-toolchain/contestcore/test/testdb"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	return store.NewForPool(testdb.Pool(t))
}

func newCatalog(t *testing.T) *catalog.Registry {
	t.Helper()
	reg, err := catalog.NewRegistry([]catalog.Model{
		{ID: "test-model", Name: "Test Model", Provider: catalog.ProviderOpenAI, Available: true, InputCostUSDPer1K: 0.001, OutputCostUSDPer1K: 0.001},
	}, 100000)
	require.NoError(t, err)
	return reg
}

func newManager(t *testing.T, st *store.Store, adapter llmprovider.Adapter) *judgesession.Manager {
	t.Helper()
	providers := llmprovider.NewRegistry()
	if adapter != nil {
		providers.Register("openai", adapter)
	}
	return &judgesession.Manager{
		Pool:      st.Pool,
		Contests:  st.Contests,
		Judges:    st.ContestJudges,
		Texts:     st.Texts,
		Votes:     st.Votes,
		Agents:    st.Agents,
		Catalog:   newCatalog(t),
		Providers: providers,
		Estimator: tokens.New(),
		Ledger:    ledger.New(st.Pool, st.Users, st.Ledger),
		Execs:     execution.New(st.Executions),
	}
}

func newTestUser(t *testing.T, st *store.Store, credits int64) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New().String(), Username: "u-" + uuid.New().String(), Email: uuid.New().String() + "@test.local", Credits: credits, CreatedAt: time.Now()}
	require.NoError(t, st.Users.Create(context.Background(), u))
	return u
}

func newTestContest(t *testing.T, st *store.Store, creatorID string, minVotes int) *models.Contest {
	t.Helper()
	c := &models.Contest{
		ID:               uuid.New().String(),
		CreatorID:        creatorID,
		Title:            "Ghost Stories",
		Description:      "Write something unsettling",
		Status:           models.ContestStatusEvaluation,
		MinVotesRequired: minVotes,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, st.Contests.Create(context.Background(), c))
	return c
}

func newTestText(t *testing.T, st *store.Store, contestID, ownerID, title string, at time.Time) *models.ContestText {
	t.Helper()
	tx := &models.ContestText{
		ID:             uuid.New().String(),
		ContestID:      contestID,
		OwnerID:        ownerID,
		Title:          title,
		Content:        "Once the lights went out, nobody answered.",
		Author:         "author",
		SubmissionDate: at,
	}
	require.NoError(t, st.Texts.Create(context.Background(), tx))
	return tx
}

func newTestJudge(t *testing.T, st *store.Store, contestID string, kind models.JudgeKind, userID, agentID string) *models.ContestJudge {
	t.Helper()
	j := &models.ContestJudge{
		ID:             uuid.New().String(),
		ContestID:      contestID,
		Kind:           kind,
		UserID:         userID,
		AgentID:        agentID,
		AssignmentDate: time.Now(),
	}
	require.NoError(t, st.ContestJudges.Create(context.Background(), j))
	return j
}

func TestExecuteJudge_HumanVote_ClosesContestWhenThresholdMet(t *testing.T) {
	st := openStore(t)
	owner := newTestUser(t, st, 0)
	contest := newTestContest(t, st, owner.ID, 1)
	textA := newTestText(t, st, contest.ID, owner.ID, "Text A", time.Now())
	textB := newTestText(t, st, contest.ID, owner.ID, "Text B", time.Now().Add(time.Second))

	voter := newTestUser(t, st, 0)
	judge := newTestJudge(t, st, contest.ID, models.JudgeKindHuman, voter.ID, "")

	m := newManager(t, st, nil)
	place1, place2 := 1, 2
	outcome, err := m.ExecuteJudge(context.Background(), contest.ID, judge.ID,
		judgesession.JudgeContext{Caller: authz.Principal{UserID: voter.ID}, IsAI: false},
		[]judgesession.VoteInput{
			{TextID: textA.ID, Place: &place1, Comment: "loved it"},
			{TextID: textB.ID, Place: &place2, Comment: "pretty good"},
		}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.VotesWritten)
	assert.True(t, outcome.HasVoted)
	assert.True(t, outcome.ContestClosed)

	closed, err := st.Contests.Get(context.Background(), contest.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContestStatusClosed, closed.Status)

	gotA, err := st.Texts.Get(context.Background(), textA.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.Ranking)
	assert.Equal(t, 1, *gotA.Ranking)
}

func TestExecuteJudge_HumanVote_WrongJudgeForbidden(t *testing.T) {
	st := openStore(t)
	owner := newTestUser(t, st, 0)
	contest := newTestContest(t, st, owner.ID, 1)
	text := newTestText(t, st, contest.ID, owner.ID, "Solo Entry", time.Now())

	voter := newTestUser(t, st, 0)
	impostor := newTestUser(t, st, 0)
	judge := newTestJudge(t, st, contest.ID, models.JudgeKindHuman, voter.ID, "")

	m := newManager(t, st, nil)
	place1 := 1
	_, err := m.ExecuteJudge(context.Background(), contest.ID, judge.ID,
		judgesession.JudgeContext{Caller: authz.Principal{UserID: impostor.ID}, IsAI: false},
		[]judgesession.VoteInput{{TextID: text.ID, Place: &place1}}, nil, "")
	require.Error(t, err)
	assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
}

type fakeJudgeAdapter struct {
	text             string
	promptTokens     int
	completionTokens int
}

func (f *fakeJudgeAdapter) ValidateCredentials(ctx context.Context) error { return nil }
func (f *fakeJudgeAdapter) Generate(ctx context.Context, req llmprovider.Request) (llmprovider.Result, error) {
	return llmprovider.Result{Text: f.text, PromptTokens: f.promptTokens, CompletionTokens: f.completionTokens}, nil
}
func (f *fakeJudgeAdapter) GenerateBatch(ctx context.Context, reqs []llmprovider.Request) ([]llmprovider.Result, error) {
	return nil, errs.New(errs.KindInternal, "unused in this test")
}

func TestExecuteJudge_AIJudge_SettlesCreditsWithoutClosing(t *testing.T) {
	st := openStore(t)
	owner := newTestUser(t, st, 1000)
	contest := newTestContest(t, st, owner.ID, 2) // requires 2 judges; only the AI one votes here
	textA := newTestText(t, st, contest.ID, owner.ID, "Text A", time.Now())
	textB := newTestText(t, st, contest.ID, owner.ID, "Text B", time.Now().Add(time.Second))

	agent := &models.Agent{ID: uuid.New().String(), OwnerID: owner.ID, Type: models.AgentTypeJudge, Name: "Stern Critic", Prompt: "be harsh", CreatedAt: time.Now()}
	require.NoError(t, st.Agents.Create(context.Background(), agent))
	judge := newTestJudge(t, st, contest.ID, models.JudgeKindAgent, "", agent.ID)

	resp := "1. Text A\n   Commentary: sharp and well-paced\n2. Text B\n   Commentary: needed tightening"
	adapter := &fakeJudgeAdapter{text: resp, promptTokens: 100, completionTokens: 50}
	m := newManager(t, st, adapter)

	outcome, err := m.ExecuteJudge(context.Background(), contest.ID, judge.ID,
		judgesession.JudgeContext{Caller: authz.Principal{UserID: owner.ID}, IsAI: true, AgentID: agent.ID, Model: "test-model"},
		nil,
		[]strategy.JudgeText{{TextID: textA.ID, Title: "Text A", Content: "..."}, {TextID: textB.ID, Title: "Text B", Content: "..."}},
		"exacting")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.VotesWritten)
	assert.False(t, outcome.ContestClosed, "only one of two required judges has voted")
	assert.Greater(t, outcome.CreditsUsed, int64(0))

	got, err := st.Users.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Less(t, got.Credits, int64(1000), "AI judge owner must be charged")

	exec, err := st.Executions.Get(context.Background(), outcome.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, exec.Status)
}
