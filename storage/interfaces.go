package storage

import (
	"context"

	"github.com/charlabot/charla/core"
)

// KnowledgeRepository provides operations over knowledge sources and their
// chunk rows. Implementations must be thread-safe and support concurrent
// access; note that the delete-then-insert replace performed by ingestion is
// not atomic, so concurrent ingestion runs for the same source must be
// serialized by the caller.
type KnowledgeRepository interface {
	// PutSource creates or replaces a knowledge source.
	// Sets InsertedAt if not already set and refreshes UpdatedAt.
	PutSource(ctx context.Context, source *core.KnowledgeSource) error

	// GetSource retrieves a knowledge source by ID.
	// Returns ErrNotFound if the source doesn't exist.
	GetSource(ctx context.Context, id string) (*core.KnowledgeSource, error)

	// ListSources retrieves all knowledge sources, ordered by ID.
	ListSources(ctx context.Context) ([]*core.KnowledgeSource, error)

	// AddChunks writes one or more chunk rows.
	// Chunks are validated before writing.
	AddChunks(ctx context.Context, chunks ...*core.KnowledgeChunk) error

	// DeleteChunksBySource removes every chunk row belonging to the source.
	// Returns the number of rows removed. Deleting a source with no chunks
	// is not an error.
	DeleteChunksBySource(ctx context.Context, sourceID string) (int, error)

	// GetChunksBySource retrieves the chunk rows of a source ordered by Seq.
	GetChunksBySource(ctx context.Context, sourceID string) ([]*core.KnowledgeChunk, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with cosine similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)

	// Close closes the repository and releases resources.
	Close() error
}

// FileStore fetches the raw bytes of a stored source document by its locator.
type FileStore interface {
	// Fetch returns the document bytes for the locator.
	// Returns ErrNotFound if no document exists at the locator.
	Fetch(ctx context.Context, locator string) ([]byte, error)
}
