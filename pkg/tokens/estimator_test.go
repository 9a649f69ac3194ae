package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimator_FallbackHeuristic(t *testing.T) {
	e := &Estimator{encoder: nil}
	assert.Equal(t, 1, e.EstimateTokens("", "any-model"))
	assert.Equal(t, 1, e.EstimateTokens("abc", "any-model"))
	assert.Equal(t, 25, e.EstimateTokens(strings.Repeat("a", 100), "any-model"))
}

func TestEstimator_NeverPanicsWithoutEncoder(t *testing.T) {
	e := &Estimator{encoder: nil}
	assert.NotPanics(t, func() {
		e.EstimateTokens("the quick brown fox jumps over the lazy dog", "gpt-mini")
	})
}
