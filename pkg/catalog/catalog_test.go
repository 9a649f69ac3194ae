package catalog

import (
	"testing"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry([]Model{
		{ID: "gpt-mini", Provider: ProviderOpenAI, InputCostUSDPer1K: 0.15, OutputCostUSDPer1K: 0.60, Available: true},
		{ID: "claude-cheap", Provider: ProviderAnthropic, InputCostUSDPer1K: 0.25, OutputCostUSDPer1K: 1.25, Available: true},
		{ID: "retired-model", Provider: ProviderOpenAI, Available: false},
		{ID: "free-model", Provider: ProviderOpenAI, Available: true},
	}, 100000)
	require.NoError(t, err)
	return r
}

func TestRegistry_GetAndHas(t *testing.T) {
	r := testRegistry(t)

	m, err := r.Get("gpt-mini")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, m.Provider)

	assert.True(t, r.Has("gpt-mini"))
	assert.False(t, r.Has("nonexistent"))
	assert.Equal(t, 4, r.Len())

	_, err = r.Get("nonexistent")
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
}

func TestRegistry_GetAllReturnsCopy(t *testing.T) {
	r := testRegistry(t)
	all := r.GetAll()
	delete(all, "gpt-mini")
	assert.True(t, r.Has("gpt-mini"), "mutating the returned map must not affect the registry")
}

func TestNewRegistry_RejectsLowCreditsPerUSD(t *testing.T) {
	_, err := NewRegistry([]Model{{ID: "m", Provider: ProviderOpenAI, Available: true}}, 10)
	require.Error(t, err)
}

func TestRegistry_Estimate(t *testing.T) {
	r := testRegistry(t)

	credits, usd, err := r.Estimate("gpt-mini", 1000, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, usd, 1e-9) // 0.15 + 0.60
	assert.Equal(t, int64(75000), credits)

	// Free-tier compatible: zero-priced model still estimates, never errors.
	credits, usd, err = r.Estimate("free-model", 5000, 5000)
	require.NoError(t, err)
	assert.Equal(t, float64(0), usd)
	assert.Equal(t, int64(0), credits)
}

func TestRegistry_Estimate_UnavailableModel(t *testing.T) {
	r := testRegistry(t)
	_, _, err := r.Estimate("retired-model", 10, 10)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidInput, errs.KindOf(err))
}

func TestRegistry_Estimate_RoundsUp(t *testing.T) {
	r := testRegistry(t)
	// 1 prompt token at 0.15 usd/1k => usd = 0.00015 => credits = ceil(0.00015*100000) = ceil(15) = 15
	credits, _, err := r.Estimate("gpt-mini", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), credits)
}
