package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenFunc receives one generated token. Returning an error stops the
// stream; the generator surfaces that error from StreamCompletion.
type TokenFunc func(ctx context.Context, token string) error

// Generator produces chat completions from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates the full completion for a prompt in one call.
	Complete(ctx context.Context, prompt string) (string, error)

	// StreamCompletion generates a completion and delivers it token by
	// token through onToken, returning the full text when the stream ends.
	// A mid-stream provider failure is returned as the error with whatever
	// partial text was produced.
	StreamCompletion(ctx context.Context, prompt string, onToken TokenFunc) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Generator instances, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the chat completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
