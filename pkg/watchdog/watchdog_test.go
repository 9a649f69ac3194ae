package watchdog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/contestcore/pkg/execution"
	"github.com/codeready-toolchain/contestcore/pkg/ledger"
	"github.com/codeready-toolchain/contestcore/pkg/models"
	"github.com/codeready-toolchain/contestcore/pkg/store"
	"github.com/codeready-toolchain/contestcore/pkg/watchdog"
	"github.com/codeready-toolchain/contestcore/test/testdb"
)

func TestSweep_RecoversStaleExecutionAndRefunds(t *testing.T) {
	st := store.NewForPool(testdb.Pool(t))
	ctx := context.Background()

	owner := &models.User{ID: uuid.New().String(), Username: "stale-owner", Email: uuid.New().String() + "@test.local", Credits: 500, CreatedAt: time.Now()}
	require.NoError(t, st.Users.Create(ctx, owner))

	stuck := &models.AgentExecution{ID: uuid.New().String(), OwnerID: owner.ID, Type: models.AgentTypeWriter, Model: "test-model", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, st.Executions.Create(ctx, stuck))

	w := watchdog.New(st.Executions, execution.New(st.Executions), ledger.New(st.Pool, st.Users, st.Ledger), time.Minute, 30*time.Minute)
	require.NoError(t, w.Sweep(ctx))

	got, err := st.Executions.Get(ctx, stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "watchdog")

	stats := w.Stats()
	assert.Equal(t, 1, stats.TotalRecovered)
}

func TestSweep_NoStaleExecutions_NoOp(t *testing.T) {
	st := store.NewForPool(testdb.Pool(t))
	ctx := context.Background()

	owner := &models.User{ID: uuid.New().String(), Username: "fresh-owner", Email: uuid.New().String() + "@test.local", Credits: 500, CreatedAt: time.Now()}
	require.NoError(t, st.Users.Create(ctx, owner))
	fresh := &models.AgentExecution{ID: uuid.New().String(), OwnerID: owner.ID, Type: models.AgentTypeWriter, Model: "test-model", CreatedAt: time.Now()}
	require.NoError(t, st.Executions.Create(ctx, fresh))

	w := watchdog.New(st.Executions, execution.New(st.Executions), ledger.New(st.Pool, st.Users, st.Ledger), time.Minute, 30*time.Minute)
	require.NoError(t, w.Sweep(ctx))

	got, err := st.Executions.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, got.Status)
}
