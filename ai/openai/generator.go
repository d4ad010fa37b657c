package openai

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/quireio/quire/ai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client      *openai.LLM
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Complete generates the full completion for a prompt in one call.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, nil)
}

// StreamCompletion generates a completion token by token. The full text is
// returned once the provider closes the stream.
func (g *Generator) StreamCompletion(ctx context.Context, prompt string, onToken ai.TokenFunc) (string, error) {
	return g.generate(ctx, prompt, onToken)
}

func (g *Generator) generate(ctx context.Context, prompt string, onToken ai.TokenFunc) (string, error) {
	g.logger.Debug("generating completion",
		"prompt_length", len(prompt),
		"streaming", onToken != nil)

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	opts := []llms.CallOption{
		llms.WithTemperature(g.temperature),
	}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}
	if onToken != nil {
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return onToken(ctx, string(chunk))
		}))
	}

	resp, err := g.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		g.logger.Warn("generator returned no choices")
		return "", nil
	}

	return resp.Choices[0].Content, nil
}
