package badger

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &KnowledgeRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// PutSource creates or replaces a knowledge source.
func (r *KnowledgeRepository) PutSource(ctx context.Context, source *core.KnowledgeSource) error {
	if err := core.ValidateSource(source); err != nil {
		return err
	}

	now := time.Now().UTC()
	if source.InsertedAt.IsZero() {
		source.InsertedAt = now
	}
	source.UpdatedAt = now

	value, err := storage.MarshalSource(source)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSourceKey(source.ID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSource retrieves a knowledge source by ID.
func (r *KnowledgeRepository) GetSource(ctx context.Context, id string) (*core.KnowledgeSource, error) {
	var source *core.KnowledgeSource

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSourceKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			source, err = storage.UnmarshalSource(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return source, nil
}

// ListSources retrieves all knowledge sources, ordered by ID.
func (r *KnowledgeRepository) ListSources(ctx context.Context) ([]*core.KnowledgeSource, error) {
	var sources []*core.KnowledgeSource

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = sourceScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				source, err := storage.UnmarshalSource(val)
				if err != nil {
					return err
				}
				sources = append(sources, source)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return sources, nil
}

// AddChunks writes one or more chunk rows.
func (r *KnowledgeRepository) AddChunks(ctx context.Context, chunks ...*core.KnowledgeChunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(chunk.SourceID, chunk.Seq), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteChunksBySource removes every chunk row belonging to the source.
func (r *KnowledgeRepository) DeleteChunksBySource(ctx context.Context, sourceID string) (int, error) {
	// Collect keys first; Badger iterators cannot outlive deletes on the
	// same transaction safely.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkSourcePrefix(sourceID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(keys), nil
}

// GetChunksBySource retrieves the chunk rows of a source ordered by Seq.
func (r *KnowledgeRepository) GetChunksBySource(ctx context.Context, sourceID string) ([]*core.KnowledgeChunk, error) {
	var chunks []*core.KnowledgeChunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkSourcePrefix(sourceID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Keys embed Seq in BigEndian, so iteration order is document order.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// FindSimilar finds chunks similar to the given vector.
func (r *KnowledgeRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var matches []*core.ChunkMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.KnowledgeChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}

			similarity := cosineSimilarity(vector, chunk.Vector)
			if similarity >= minSimilarity {
				matches = append(matches, &core.ChunkMatch{
					Chunk: chunk,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(matches, func(a, b *core.ChunkMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
