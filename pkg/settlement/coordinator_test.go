package settlement_test

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
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/llmprovider"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/settlement"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/pkg/tokens"
	"github.com/codeready-toolchain/contestcore/test/testdb"
)

type fakeAgents struct{ byID map[string]*models.Agent }

func (f *fakeAgents) Get(ctx context.Context, id string) (*models.Agent, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "agent not found")
	}
	return a, nil
}

type fakeUsers struct{ byID map[string]*models.User }

func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "user not found")
	}
	return u, nil
}

type fakeTexts struct {
	created []*models.ContestText
	failNext bool
}

func (f *fakeTexts) Create(ctx context.Context, t *models.ContestText) error {
	if f.failNext {
		return errs.New(errs.KindInternal, "simulated persistence failure")
	}
	f.created = append(f.created, t)
	return nil
}

type fakeWriterAdapter struct {
	text             string
	promptTokens     int
	completionTokens int
	err              error
}

func (f *fakeWriterAdapter) ValidateCredentials(ctx context.Context) error { return nil }
func (f *fakeWriterAdapter) Generate(ctx context.Context, req llmprovider.Request) (llmprovider.Result, error) {
	if f.err != nil {
		return llmprovider.Result{}, f.err
	}
	return llmprovider.Result{Text: f.text, PromptTokens: f.promptTokens, CompletionTokens: f.completionTokens}, nil
}
func (f *fakeWriterAdapter) GenerateBatch(ctx context.Context, reqs []llmprovider.Request) ([]llmprovider.Result, error) {
	return nil, errs.New(errs.KindInternal, "unused in this test")
}

func newCatalog(t *testing.T) *catalog.Registry {
	reg, err := catalog.NewRegistry([]catalog.Model{
		{ID: "test-model", Name: "Test Model", Provider: catalog.ProviderOpenAI, Available: true, InputCostUSDPer1K: 0.001, OutputCostUSDPer1K: 0.001},
	}, 100000)
	require.NoError(t, err)
	return reg
}

func newCoordinator(t *testing.T, adapter llmprovider.Adapter, owner *models.User, agent *models.Agent, texts *fakeTexts) *settlement.Coordinator {
	st := store.NewForPool(testdb.Pool(t))
	require.NoError(t, st.Users.Create(context.Background(), owner))

	providers := llmprovider.NewRegistry()
	providers.Register("openai", adapter)

	return &settlement.Coordinator{
		Agents:    &fakeAgents{byID: map[string]*models.Agent{agent.ID: agent}},
		Users:     st.Users,
		Texts:     texts,
		Catalog:   newCatalog(t),
		Providers: providers,
		Estimator: tokens.New(),
		Ledger:    ledger.New(st.Pool, st.Users, st.Ledger),
		Execs:     execution.New(st.Executions),
	}
}

func testOwner(credits int64) *models.User {
	return &models.User{ID: uuid.New().String(), Username: "writer-owner", Email: uuid.New().String() + "@test.local", Credits: credits, CreatedAt: time.Now()}
}

func testWriterAgent(ownerID string) *models.Agent {
	return &models.Agent{ID: uuid.New().String(), OwnerID: ownerID, Type: models.AgentTypeWriter, Name: "Gloomy Poet", Prompt: "write gloomy poetry", CreatedAt: time.Now()}
}

func TestExecuteWriter_HappyPath(t *testing.T) {
	owner := testOwner(1000)
	agent := testWriterAgent(owner.ID)
	texts := &fakeTexts{}
	adapter := &fakeWriterAdapter{text: "Title: The Long Night\nText: Shadows gathered over the quiet harbor.", promptTokens: 50, completionTokens: 100}

	c := newCoordinator(t, adapter, owner, agent, texts)
	outcome, err := c.ExecuteWriter(context.Background(), settlement.WriterRequest{
		Caller:             authz.Principal{UserID: owner.ID},
		AgentID:            agent.ID,
		Model:              "test-model",
		ContestDescription: "write about the sea",
	})
	require.NoError(t, err)
	assert.True(t, outcome.ParsingSuccess)
	require.Len(t, texts.created, 1)
	assert.Equal(t, "The Long Night", texts.created[0].Title)
	assert.Contains(t, texts.created[0].Author, "via AI Agent: Gloomy Poet")

	got, err := c.Users.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Less(t, got.Credits, int64(1000), "credits must have been deducted")
}

func TestExecuteWriter_InsufficientCredits(t *testing.T) {
	owner := testOwner(0)
	agent := testWriterAgent(owner.ID)
	texts := &fakeTexts{}
	adapter := &fakeWriterAdapter{text: "Title: X\nText: irrelevant, never called"}

	c := newCoordinator(t, adapter, owner, agent, texts)
	_, err := c.ExecuteWriter(context.Background(), settlement.WriterRequest{
		Caller:  authz.Principal{UserID: owner.ID},
		AgentID: agent.ID,
		Model:   "test-model",
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficientCredit, errs.KindOf(err))
	assert.Empty(t, texts.created)
}

func TestExecuteWriter_PersistenceFailureTriggersRefund(t *testing.T) {
	owner := testOwner(1000)
	agent := testWriterAgent(owner.ID)
	texts := &fakeTexts{failNext: true}
	adapter := &fakeWriterAdapter{text: "Title: X\nText: enough content to pass validation easily.", promptTokens: 10, completionTokens: 10}

	c := newCoordinator(t, adapter, owner, agent, texts)
	_, err := c.ExecuteWriter(context.Background(), settlement.WriterRequest{
		Caller:  authz.Principal{UserID: owner.ID},
		AgentID: agent.ID,
		Model:   "test-model",
	})
	require.Error(t, err)

	got, err := c.Users.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Credits, "a compensating refund must restore the original balance")
}
