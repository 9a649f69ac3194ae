package llmprovider

import (
	"context"
	"fmt"
	"os"

	"github.com/codeready-toolchain/contestcore/pkg/errs"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultBatchConcurrency bounds the number of concurrent singleton calls
// GenerateBatch makes when a provider has no native batch endpoint (spec
// §4.3: "bounded concurrent singletons ... OpenAI-style").
const DefaultBatchConcurrency = 8

// OpenAIAdapter implements Adapter over github.com/sashabaranov/go-openai,
// grounded on storbeck-augustus's openaicompat.GenerateChat.
type OpenAIAdapter struct {
	client            *goopenai.Client
	batchConcurrency  int
}

// NewOpenAIAdapter builds an adapter from an API key. baseURL may be empty
// to use the default OpenAI endpoint; a non-empty baseURL lets this same
// adapter serve any OpenAI-compatible provider, as openaicompat does.
func NewOpenAIAdapter(apiKey, baseURL string) *OpenAIAdapter {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client:           goopenai.NewClientWithConfig(cfg),
		batchConcurrency: DefaultBatchConcurrency,
	}
}

// NewOpenAIAdapterFromEnv reads OPENAI_API_KEY, matching the teacher's
// env-first credential convention (config.LLMProviderConfig.APIKeyEnv).
func NewOpenAIAdapterFromEnv() *OpenAIAdapter {
	return NewOpenAIAdapter(os.Getenv("OPENAI_API_KEY"), "")
}

func (a *OpenAIAdapter) ValidateCredentials(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return errs.Wrap(errs.KindProviderError, "openai credential validation failed", err)
	}
	return nil
}

func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.SystemMessage != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemMessage,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	ccReq := goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		ccReq.MaxTokens = req.MaxTokens
	}

	resp, err := a.client.CreateChatCompletion(ctx, ccReq)
	if err != nil {
		return Result{}, wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errs.New(errs.KindProviderError, "openai returned no choices")
	}
	return Result{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (a *OpenAIAdapter) GenerateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	return boundedConcurrentBatch(ctx, a.batchConcurrency, reqs, a.Generate)
}

// wrapOpenAIError classifies go-openai errors into the Core's error taxonomy,
// grounded on openaicompat.WrapError's HTTP-status switch.
func wrapOpenAIError(err error) error {
	if apiErr, ok := err.(*goopenai.APIError); ok {
		switch apiErr.HTTPStatusCode {
		case 429:
			return errs.Wrap(errs.KindProviderError, "openai rate limit exceeded", err)
		case 400:
			return errs.Wrap(errs.KindInvalidInput, "openai rejected the request", err)
		case 401, 403:
			return errs.Wrap(errs.KindProviderError, "openai authentication failed", err)
		case 500, 502, 503, 504:
			return errs.Wrap(errs.KindProviderError, "openai server error", err)
		default:
			return errs.Wrap(errs.KindProviderError, fmt.Sprintf("openai API error (status %d)", apiErr.HTTPStatusCode), err)
		}
	}
	return errs.Wrap(errs.KindProviderError, "openai call failed", err)
}
