// Package tokens implements the Token Estimator (spec §4.2).
//
// Grounded on teradata-labs-loom's TokenCounter: tiktoken-go with the
// cl100k_base encoding as the provider-appropriate tokenizer, falling back to
// a length heuristic when the encoder cannot be initialized. Estimates are
// allowed to be under-counts — the Settlement Coordinator always re-settles
// on the provider's observed usage.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates token counts for text ahead of an LLM call.
type Estimator struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

var (
	defaultEstimator     *Estimator
	defaultEstimatorOnce sync.Once
)

// Default returns the process-wide Estimator singleton, initializing the
// tiktoken encoder on first use.
func Default() *Estimator {
	defaultEstimatorOnce.Do(func() {
		defaultEstimator = New()
	})
	return defaultEstimator
}

// New builds an Estimator, attempting to load the cl100k_base encoding.
// If that fails (offline environment, missing BPE ranks), the Estimator
// falls back to the length heuristic for every call rather than erroring.
func New() *Estimator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &Estimator{encoder: nil}
	}
	return &Estimator{encoder: enc}
}

// EstimateTokens returns an estimated token count for text under modelID.
// The model ID is accepted for interface symmetry with provider-native
// tokenizers even though this implementation uses one fixed encoding for
// every model — a provider-native tokenizer can be substituted per model
// without changing callers.
func (e *Estimator) EstimateTokens(text string, modelID string) int {
	_ = modelID
	if e.encoder == nil {
		return lengthHeuristic(text)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.encoder.Encode(text, nil, nil))
}

func lengthHeuristic(text string) int {
	if n := len(text) / 4; n > 0 {
		return n
	}
	return 1
}
