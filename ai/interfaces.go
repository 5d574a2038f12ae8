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
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates a grounded text reply from a system instruction and a
// user message. Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends the system instruction and the raw user text as separate
	// turns and returns the model's reply. Sampling temperature and output
	// length are fixed at construction time.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Classifier resolves a user query to an intent within a conversation session.
// The session key must be stable per end-user so the service keeps its
// per-session context between turns.
type Classifier interface {
	// DetectIntent classifies the query and returns the matched intent.
	// A fallback intent (no confident match) is a successful result, not an
	// error; errors mean the service itself could not be reached.
	DetectIntent(ctx context.Context, query, sessionKey string) (Intent, error)
}

// Provider aggregates the model-backed services for convenient initialization
// and lifecycle management. The classifier is constructed separately because
// it is backed by a different service.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the grounded completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
