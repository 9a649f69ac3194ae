package llmprovider

import (
	"context"
	"os"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter implements Adapter over github.com/anthropics/anthropic-sdk-go,
// grounded on teradata-labs-loom's bedrock.SDKClient (here talking to the
// public Anthropic API directly rather than through Bedrock).
type AnthropicAdapter struct {
	client           anthropic.Client
	batchConcurrency int
}

// NewAnthropicAdapter builds an adapter from an API key.
func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{
		client:           anthropic.NewClient(option.WithAPIKey(apiKey)),
		batchConcurrency: DefaultBatchConcurrency,
	}
}

// NewAnthropicAdapterFromEnv reads ANTHROPIC_API_KEY.
func NewAnthropicAdapterFromEnv() *AnthropicAdapter {
	return NewAnthropicAdapter(os.Getenv("ANTHROPIC_API_KEY"))
}

func (a *AnthropicAdapter) ValidateCredentials(ctx context.Context) error {
	// The SDK has no dedicated "whoami" call; a minimal, cheap message probes
	// that the key and network path work without wasting meaningful tokens.
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude3_5HaikuLatest,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return errs.Wrap(errs.KindProviderError, "anthropic credential validation failed", err)
	}
	return nil
}

func (a *AnthropicAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	params := anthropic.MessageNewParams{
		Model:    anthropic.Model(req.Model),
		Messages: []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	} else {
		params.MaxTokens = 4096
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}
	if req.SystemMessage != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemMessage}}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindProviderError, "anthropic call failed", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return Result{
		Text:             text,
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}, nil
}

// GenerateBatch falls back to bounded concurrent singleton calls. The
// Anthropic Message Batches API (async, poll-based — spec §4.3's "native
// batch endpoint") is not wired in; see SPEC_FULL.md §9.
func (a *AnthropicAdapter) GenerateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	return boundedConcurrentBatch(ctx, a.batchConcurrency, reqs, a.Generate)
}
