package llmprovider

import (
	"context"
	"errors"
	"testing"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	fail map[string]bool
}

func (f *fakeAdapter) ValidateCredentials(ctx context.Context) error { return nil }

func (f *fakeAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	if f.fail[req.Prompt] {
		return Result{}, errors.New("boom")
	}
	return Result{Text: "echo:" + req.Prompt, PromptTokens: 1, CompletionTokens: 2}, nil
}

func (f *fakeAdapter) GenerateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	return boundedConcurrentBatch(ctx, 4, reqs, f.Generate)
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nonexistent")
	require.Error(t, err)
	assert.Equal(t, errs.KindProviderError, errs.KindOf(err))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	a := &fakeAdapter{}
	r.Register("fake", a)

	got, err := r.Get("fake")
	require.NoError(t, err)
	assert.Same(t, Adapter(a), got)
}

func TestBoundedConcurrentBatch_PreservesOrderAndPartialFailures(t *testing.T) {
	a := &fakeAdapter{fail: map[string]bool{"p1": true}}
	reqs := []Request{{Prompt: "p0"}, {Prompt: "p1"}, {Prompt: "p2"}}

	results, err := a.GenerateBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "echo:p0", results[0].Text)
	assert.Equal(t, Result{}, results[1]) // placeholder for the failed item
	assert.Equal(t, "echo:p2", results[2].Text)
}
