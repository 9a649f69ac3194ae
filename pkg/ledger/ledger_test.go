package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/test/testdb"
)

func newTestUser(t *testing.T, st *store.Store, credits int64) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New().String(), Username: "u-" + uuid.New().String(), Email: uuid.New().String() + "@test.local", Credits: credits, CreatedAt: time.Now()}
	require.NoError(t, st.Users.Create(context.Background(), u))
	return u
}

// openStore builds a *store.Store around testdb's already-migrated pool,
// the same repo wiring store.Open does internally.
func openStore(t *testing.T) *store.Store {
	t.Helper()
	return store.NewForPool(testdb.Pool(t))
}

func TestLedger_DeductAndCredit_KeepBalanceConsistent(t *testing.T) {
	st := openStore(t)
	l := ledger.New(st.Pool, st.Users, st.Ledger)
	ctx := context.Background()

	user := newTestUser(t, st, 1000)

	_, err := l.Deduct(ctx, user.ID, 300, "AI Writer: test", ledger.DeductOpts{Model: "gpt-test", Tokens: 120, RealCostUSD: 0.01})
	require.NoError(t, err)

	_, err = l.Credit(ctx, user.ID, 50, "Refund: failed writer", models.LedgerKindRefund)
	require.NoError(t, err)

	got, err := st.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got.Credits)

	sum, err := st.Ledger.SumByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Credits-1000, sum, "ledger sum must reconcile against the starting balance")
}

func TestLedger_Deduct_InsufficientCredits(t *testing.T) {
	st := openStore(t)
	l := ledger.New(st.Pool, st.Users, st.Ledger)
	ctx := context.Background()

	user := newTestUser(t, st, 10)
	_, err := l.Deduct(ctx, user.ID, 100, "too much", ledger.DeductOpts{})
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficientCredit, errs.KindOf(err))

	got, err := st.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Credits, "failed deduction must not change the balance")
}

func TestLedger_Deduct_AllowOverdraft(t *testing.T) {
	st := openStore(t)
	l := ledger.New(st.Pool, st.Users, st.Ledger)
	ctx := context.Background()

	user := newTestUser(t, st, 10)
	_, err := l.Deduct(ctx, user.ID, 100, "forced", ledger.DeductOpts{AllowOverdraft: true})
	require.NoError(t, err)

	got, err := st.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-90), got.Credits)
}

func TestLedger_Adjust_PositiveAndNegative(t *testing.T) {
	st := openStore(t)
	l := ledger.New(st.Pool, st.Users, st.Ledger)
	ctx := context.Background()

	user := newTestUser(t, st, 100)

	row, err := l.Adjust(ctx, user.ID, 50, "bonus")
	require.NoError(t, err)
	assert.Equal(t, models.LedgerKindAdjustment, row.Kind)
	assert.Equal(t, int64(50), row.Amount)

	_, err = l.Adjust(ctx, user.ID, -30, "correction")
	require.NoError(t, err)

	got, err := st.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.Credits)
}

func TestLedger_Filter_ByModel(t *testing.T) {
	st := openStore(t)
	l := ledger.New(st.Pool, st.Users, st.Ledger)
	ctx := context.Background()

	user := newTestUser(t, st, 1000)
	_, err := l.Deduct(ctx, user.ID, 10, "m1 call", ledger.DeductOpts{Model: "model-a"})
	require.NoError(t, err)
	_, err = l.Deduct(ctx, user.ID, 20, "m2 call", ledger.DeductOpts{Model: "model-b"})
	require.NoError(t, err)

	rows, err := l.Filter(ctx, ledger.Filter{Model: "model-a"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "model-a", rows[0].Model)
}
