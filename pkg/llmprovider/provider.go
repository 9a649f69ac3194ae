// Package llmprovider implements the Provider Adapter Registry (spec §4.3).
//
// Each adapter validates credentials, submits a normalized LLMRequest, and
// returns observed token usage alongside the generated text. Adapters are
// stateless; concurrency safety is the caller's responsibility, same as the
// teacher's provider clients.
package llmprovider

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
)

// Request is the normalized shape every adapter accepts.
type Request struct {
	Model         string
	Prompt        string
	SystemMessage string
	Temperature   float32
	MaxTokens     int // 0 means provider default
}

// Result is what a single Generate call returns.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Adapter is the interface every provider implementation satisfies (spec §4.3).
type Adapter interface {
	// ValidateCredentials checks that the adapter is configured with usable
	// credentials, without making a billed call where avoidable.
	ValidateCredentials(ctx context.Context) error

	// Generate performs one LLM call.
	Generate(ctx context.Context, req Request) (Result, error)

	// GenerateBatch performs N calls, preserving input order. A per-item
	// failure yields a zero Result ("", 0, 0) at that index rather than
	// aborting the whole batch, so the caller can account for partial
	// failures (spec §4.3).
	GenerateBatch(ctx context.Context, reqs []Request) ([]Result, error)
}

// Registry dispatches requests to the Adapter registered for a provider tag.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry builds an empty registry; adapters are added with Register.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register binds an Adapter to a provider tag (e.g. "openai", "anthropic").
func (r *Registry) Register(provider string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[provider] = adapter
}

// Get retrieves the Adapter for a provider tag.
func (r *Registry) Get(provider string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[provider]
	if !ok {
		return nil, errs.New(errs.KindProviderError, fmt.Sprintf("no adapter registered for provider %q", provider))
	}
	return a, nil
}

// boundedConcurrentBatch is the shared "OpenAI-style" batch fallback (spec
// §4.3): bounded concurrent singleton calls preserving input order. Anthropic
// and OpenAI adapters both use this until a native batch endpoint is wired in.
func boundedConcurrentBatch(ctx context.Context, maxConcurrency int, reqs []Request, call func(context.Context, Request) (Result, error)) ([]Result, error) {
	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := call(gctx, req)
			if err != nil {
				results[i] = Result{} // placeholder per spec: caller accounts for partial failure
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
