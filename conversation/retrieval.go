package conversation

import (
	"context"
	"log/slog"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
)

// Retrieval defaults.
const (
	DefaultTopK          = 4
	DefaultMinSimilarity = 0.60
)

// Retriever assembles the grounding context for a turn: it embeds the query
// and pulls the most similar knowledge chunks over the similarity floor.
type Retriever struct {
	embedder      ai.Embedder
	repository    storage.KnowledgeRepository
	topK          int
	minSimilarity float32
	logger        *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the maximum number of snippets retrieved per turn.
// Default is DefaultTopK.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithMinSimilarity sets the cosine similarity floor for retrieved snippets.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) RetrieverOption {
	return func(r *Retriever) {
		r.minSimilarity = min
	}
}

// WithRetrieverLogger sets a custom logger.
// Default is slog.Default().
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetriever creates a retriever over the embedder and repository.
func NewRetriever(embedder ai.Embedder, repository storage.KnowledgeRepository, opts ...RetrieverOption) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	r := &Retriever{
		embedder:      embedder,
		repository:    repository,
		topK:          DefaultTopK,
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// Retrieve returns the grounding context for the query, ordered by
// descending similarity, or nil when nothing relevant is known. Failures
// along the way are logged and collapse to nil: "broken" and "no answer"
// both mean the turn cannot be grounded.
func (r *Retriever) Retrieve(ctx context.Context, query string) *core.RetrievedContext {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error embedding query", "kind", core.ErrEmbeddingFailed, "err", err)
		return nil
	}

	matches, err := r.repository.FindSimilar(ctx, vector, r.minSimilarity, r.topK)
	if err != nil {
		r.logger.Error("error querying knowledge base", "kind", core.ErrStoreQueryFailed, "err", err)
		return nil
	}
	if len(matches) == 0 {
		r.logger.Debug("no relevant knowledge for query")
		return nil
	}

	snippets := make([]core.ContextSnippet, len(matches))
	for i, match := range matches {
		snippets[i] = core.ContextSnippet{
			Title:   match.Chunk.SourceTitle,
			Content: match.Chunk.Content,
			Score:   match.Score,
		}
	}

	r.logger.Debug("context retrieved", "snippets", len(snippets), "topScore", snippets[0].Score)
	return &core.RetrievedContext{Snippets: snippets}
}
