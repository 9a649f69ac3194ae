// Package catalog implements the Model Catalog and Pricing (spec §4.1).
//
// The registry is built once at startup from a static list and is immutable
// thereafter, mirroring the teacher's config.LLMProviderRegistry: a
// defensively-copied map guarded by a sync.RWMutex for read access.
package catalog

import (
	"fmt"
	"math"
	"sync"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
)

// Provider is a tagged enum over the LLM providers the Core can dispatch to.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

func (p Provider) IsValid() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// Model describes one catalog entry: §6's "Model Catalog file format".
type Model struct {
	ID                     string   `yaml:"id"`
	Name                   string   `yaml:"name"`
	Provider               Provider `yaml:"provider"`
	ContextWindowK         int      `yaml:"context_window_k"`
	InputCostUSDPer1K      float64  `yaml:"input_cost_usd_per_1k_tokens"`
	OutputCostUSDPer1K     float64  `yaml:"output_cost_usd_per_1k_tokens"`
	Available              bool     `yaml:"available"`
}

// Registry is the immutable, thread-safe Model Catalog.
type Registry struct {
	models        map[string]Model
	creditsPerUSD int64
	mu            sync.RWMutex
}

// DefaultCreditsPerUSD is used when the caller does not specify a scaling
// factor. Spec §4.1 requires CREDITS_PER_USD >= 1000 to preserve cheap-model
// granularity.
const DefaultCreditsPerUSD = 100000

// NewRegistry builds an immutable registry from a list of models, defensively
// copying the slice into an internal map the way
// config.NewLLMProviderRegistry copies its input map.
func NewRegistry(models []Model, creditsPerUSD int64) (*Registry, error) {
	if creditsPerUSD == 0 {
		creditsPerUSD = DefaultCreditsPerUSD
	}
	if creditsPerUSD < 1000 {
		return nil, fmt.Errorf("credits_per_usd must be >= 1000, got %d", creditsPerUSD)
	}
	copied := make(map[string]Model, len(models))
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry missing id: %+v", m)
		}
		if !m.Provider.IsValid() {
			return nil, fmt.Errorf("catalog entry %q has unknown provider %q", m.ID, m.Provider)
		}
		copied[m.ID] = m
	}
	return &Registry{models: copied, creditsPerUSD: creditsPerUSD}, nil
}

// Get retrieves a catalog entry by model ID.
func (r *Registry) Get(modelID string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[modelID]
	if !ok {
		return Model{}, errs.New(errs.KindInvalidInput, fmt.Sprintf("unknown model %q", modelID))
	}
	return m, nil
}

// GetAll returns a copy of every catalog entry.
func (r *Registry) GetAll() map[string]Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Model, len(r.models))
	for k, v := range r.models {
		out[k] = v
	}
	return out
}

// Has reports whether modelID exists in the catalog.
func (r *Registry) Has(modelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[modelID]
	return ok
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// CreditsPerUSD returns the process-wide scaling constant.
func (r *Registry) CreditsPerUSD() int64 { return r.creditsPerUSD }

// Estimate converts observed or estimated token counts into (credits, usd)
// per spec §4.1: usd = p_tokens/1000 * input_price + c_tokens/1000 * output_price,
// credits = ceil(usd * CREDITS_PER_USD). Missing pricing components default
// to 0 (free-tier compatible); unknown models are an error.
func (r *Registry) Estimate(modelID string, promptTokens, completionTokens int) (credits int64, usd float64, err error) {
	m, err := r.Get(modelID)
	if err != nil {
		return 0, 0, err
	}
	if !m.Available {
		return 0, 0, errs.New(errs.KindInvalidInput, fmt.Sprintf("model %q is not available", modelID))
	}
	usd = float64(promptTokens)/1000*m.InputCostUSDPer1K + float64(completionTokens)/1000*m.OutputCostUSDPer1K
	credits = int64(math.Ceil(usd * float64(r.creditsPerUSD)))
	return credits, usd, nil
}
