package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/charlabot/charla/ai"
	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
)

// Pipeline converts registered knowledge sources into embedded chunk rows.
// A run replaces the source's whole chunk set: the previous rows are deleted
// first and the new rows inserted per chunk. The replace is not atomic, so
// concurrent runs for the same source must be serialized by the caller.
type Pipeline struct {
	repository storage.KnowledgeRepository
	files      storage.FileStore
	embedder   ai.Embedder
	extractor  TextExtractor
	pool       *ants.Pool
	windowSize int
	overlap    int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for detached ingestion runs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithChunking sets the chunk window size and overlap, in runes.
// Defaults are DefaultWindowSize and DefaultOverlap.
func WithChunking(windowSize, overlap int) Option {
	return func(p *Pipeline) error {
		if windowSize <= 0 || overlap < 0 || overlap >= windowSize {
			return fmt.Errorf("%w: window %d, overlap %d", core.ErrInvalidChunkingConfig, windowSize, overlap)
		}
		p.windowSize = windowSize
		p.overlap = overlap
		return nil
	}
}

// WithExtractor sets the text extractor used for file-backed sources.
// Default is a PDF extractor.
func WithExtractor(extractor TextExtractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline. files may be nil when every
// source is text-backed; ingesting a file-backed source then fails.
func NewPipeline(
	repository storage.KnowledgeRepository,
	files storage.FileStore,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		files:      files,
		embedder:   embedder,
		extractor:  NewPDFExtractor(),
		pool:       pool,
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
		logger:     slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Start schedules a detached ingestion run for the source and returns
// immediately. The run is not tied to any caller lifetime; failures are
// logged, never surfaced. Callers observe progress by querying the
// repository.
func (p *Pipeline) Start(sourceID string) {
	runID := uuid.NewString()
	p.pool.Submit(func() {
		if err := p.Ingest(context.Background(), sourceID); err != nil {
			p.logger.Error("ingestion run failed", "run", runID, "source", sourceID, "err", err)
			return
		}
		p.logger.Info("ingestion run finished", "run", runID, "source", sourceID)
	})
}

// Ingest runs the full pipeline for one source: load, resolve text, chunk,
// replace the chunk rows. Per-chunk embedding or write failures are logged
// and skipped so one bad chunk does not abort the run; failures before any
// chunk exists (missing source, unreadable file, failed extraction) abort it.
func (p *Pipeline) Ingest(ctx context.Context, sourceID string) error {
	source, err := p.repository.GetSource(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", core.ErrSourceNotFound, sourceID, err)
	}

	text, err := p.resolveText(ctx, source)
	if err != nil {
		return err
	}

	if strings.TrimSpace(text) == "" {
		p.logger.Info("source has no text, skipping", "source", sourceID)
		return nil
	}

	chunks, err := Chunk(text, p.windowSize, p.overlap)
	if err != nil {
		return err
	}

	// Best-effort cleanup of the previous generation. A failed delete can
	// leave stale rows behind, but the new rows must still be written.
	deleted, err := p.repository.DeleteChunksBySource(ctx, sourceID)
	if err != nil {
		p.logger.Error("error deleting previous chunks", "source", sourceID, "err", err)
	} else if deleted > 0 {
		p.logger.Debug("deleted previous chunks", "source", sourceID, "count", deleted)
	}

	inserted := 0
	for seq, content := range chunks {
		normalized := normalizeWhitespace(content)
		if normalized == "" {
			continue
		}

		vector, err := p.embedder.EmbedText(ctx, normalized)
		if err != nil {
			p.logger.Error("error embedding chunk", "source", sourceID, "seq", seq, "err", err)
			continue
		}

		chunk := &core.KnowledgeChunk{
			ID:          core.IDFromContent(source.ID + content),
			SourceID:    source.ID,
			SourceTitle: source.Title,
			Seq:         seq,
			Content:     content,
			Vector:      vector,
			InsertedAt:  time.Now().UTC(),
		}

		if err := p.repository.AddChunks(ctx, chunk); err != nil {
			p.logger.Error("error inserting chunk", "source", sourceID, "seq", seq, "err", err)
			continue
		}
		inserted++
	}

	p.logger.Info("source ingested",
		"source", sourceID,
		"chunks", len(chunks),
		"inserted", inserted,
	)

	return nil
}

// resolveText returns the plain text of a source, fetching and extracting
// file-backed documents.
func (p *Pipeline) resolveText(ctx context.Context, source *core.KnowledgeSource) (string, error) {
	switch source.Type {
	case core.SourceTypeText:
		return source.Content, nil

	case core.SourceTypeFile:
		if p.files == nil {
			return "", fmt.Errorf("%w: no file store configured", core.ErrFileFetchFailed)
		}
		data, err := p.files.Fetch(ctx, source.FileLocator)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", core.ErrFileFetchFailed, source.FileLocator, err)
		}
		return p.extractor.Extract(data)

	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidSourceType, source.Type)
	}
}

// normalizeWhitespace collapses runs of whitespace into single spaces before
// embedding. The stored chunk keeps the original text.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Release releases the worker pool. Detached runs already submitted keep
// running to completion; the pipeline should not be used after Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
