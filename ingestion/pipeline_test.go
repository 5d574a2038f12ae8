package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlabot/charla/ai/mock"
	"github.com/charlabot/charla/core"
	"github.com/charlabot/charla/storage"
	"github.com/charlabot/charla/storage/badger"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.KnowledgeRepository, *mock.MockEmbedder) {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	pipeline, err := NewPipeline(repo, nil, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repo, embedder
}

func putTextSource(t *testing.T, repo storage.KnowledgeRepository, id, title, content string) {
	t.Helper()
	err := repo.PutSource(context.Background(), &core.KnowledgeSource{
		ID:      id,
		Title:   title,
		Type:    core.SourceTypeText,
		Content: content,
	})
	require.NoError(t, err)
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	_, err = NewPipeline(nil, nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewPipeline(repo, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestNewPipeline_InvalidChunking(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	_, err = NewPipeline(repo, nil, mock.NewMockEmbedder(), WithChunking(100, 100))
	assert.ErrorIs(t, err, core.ErrInvalidChunkingConfig)
}

func TestIngest_TextSource(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t, WithChunking(50, 10))

	text := strings.Repeat("horario de atención lunes a viernes ", 10)
	putTextSource(t, repo, "faq-horarios", "Horarios", text)

	require.NoError(t, pipeline.Ingest(context.Background(), "faq-horarios"))

	chunks, err := repo.GetChunksBySource(context.Background(), "faq-horarios")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.Equal(t, "faq-horarios", chunk.SourceID)
		assert.Equal(t, "Horarios", chunk.SourceTitle)
		assert.NotEmpty(t, chunk.Vector)
	}
}

func TestIngest_EmptyContentIsNoOp(t *testing.T) {
	pipeline, repo, embedder := newTestPipeline(t)

	putTextSource(t, repo, "vacio", "Vacío", "   \n\t  ")

	require.NoError(t, pipeline.Ingest(context.Background(), "vacio"))

	chunks, err := repo.GetChunksBySource(context.Background(), "vacio")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Zero(t, embedder.CallCount())
}

func TestIngest_UnknownSource(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t)

	err := pipeline.Ingest(context.Background(), "no-existe")
	assert.ErrorIs(t, err, core.ErrSourceNotFound)
}

func TestIngest_ChunkFailureIsSkipped(t *testing.T) {
	pipeline, repo, embedder := newTestPipeline(t, WithChunking(20, 0))

	// 60 runes → 3 chunks of 20.
	putTextSource(t, repo, "parcial", "Parcial", strings.Repeat("abcdefghij", 6))

	calls := 0
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("embedding backend down")
		}
		return []float32{0.1, 0.2, 0.3}, nil
	}

	require.NoError(t, pipeline.Ingest(context.Background(), "parcial"))

	chunks, err := repo.GetChunksBySource(context.Background(), "parcial")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// The surviving rows keep their original positions.
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 2, chunks[1].Seq)
}

func TestIngest_ReplacesPreviousChunks(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t, WithChunking(30, 5))

	putTextSource(t, repo, "doc", "Doc", strings.Repeat("primera versión del texto ", 5))
	require.NoError(t, pipeline.Ingest(context.Background(), "doc"))

	first, err := repo.GetChunksBySource(context.Background(), "doc")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Shorter second version: the old, larger chunk set must not survive.
	putTextSource(t, repo, "doc", "Doc", "texto corto")
	require.NoError(t, pipeline.Ingest(context.Background(), "doc"))

	second, err := repo.GetChunksBySource(context.Background(), "doc")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "texto corto", second[0].Content)
}

func TestIngest_Idempotent(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t, WithChunking(40, 10))

	putTextSource(t, repo, "estable", "Estable", strings.Repeat("contenido estable ", 8))

	require.NoError(t, pipeline.Ingest(context.Background(), "estable"))
	first, err := repo.GetChunksBySource(context.Background(), "estable")
	require.NoError(t, err)

	require.NoError(t, pipeline.Ingest(context.Background(), "estable"))
	second, err := repo.GetChunksBySource(context.Background(), "estable")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestIngest_FileSourceWithoutStore(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t)

	err := repo.PutSource(context.Background(), &core.KnowledgeSource{
		ID:          "manual",
		Title:       "Manual",
		Type:        core.SourceTypeFile,
		FileLocator: "manual.pdf",
	})
	require.NoError(t, err)

	err = pipeline.Ingest(context.Background(), "manual")
	assert.ErrorIs(t, err, core.ErrFileFetchFailed)
}

type stubFileStore struct {
	data map[string][]byte
}

func (s *stubFileStore) Fetch(_ context.Context, locator string) ([]byte, error) {
	data, ok := s.data[locator]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract([]byte) (string, error) {
	return s.text, s.err
}

func TestIngest_FileSource(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	files := &stubFileStore{data: map[string][]byte{
		"manual.pdf": []byte("%PDF-raw-bytes"),
	}}

	pipeline, err := NewPipeline(repo, files, mock.NewMockEmbedder(),
		WithExtractor(&stubExtractor{text: "contenido extraído del manual"}),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	err = repo.PutSource(context.Background(), &core.KnowledgeSource{
		ID:          "manual",
		Title:       "Manual",
		Type:        core.SourceTypeFile,
		FileLocator: "manual.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, pipeline.Ingest(context.Background(), "manual"))

	chunks, err := repo.GetChunksBySource(context.Background(), "manual")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "contenido extraído del manual", chunks[0].Content)
}

func TestIngest_ExtractionFailureAborts(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	files := &stubFileStore{data: map[string][]byte{"roto.pdf": []byte("not a pdf")}}

	pipeline, err := NewPipeline(repo, files, mock.NewMockEmbedder(),
		WithExtractor(&stubExtractor{err: fmt.Errorf("%w: bad xref", core.ErrExtractionFailed)}),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	err = repo.PutSource(context.Background(), &core.KnowledgeSource{
		ID:          "roto",
		Title:       "Roto",
		Type:        core.SourceTypeFile,
		FileLocator: "roto.pdf",
	})
	require.NoError(t, err)

	err = pipeline.Ingest(context.Background(), "roto")
	assert.ErrorIs(t, err, core.ErrExtractionFailed)

	chunks, err := repo.GetChunksBySource(context.Background(), "roto")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestStart_Detached(t *testing.T) {
	pipeline, repo, _ := newTestPipeline(t, WithChunking(50, 10))

	putTextSource(t, repo, "async", "Async", strings.Repeat("procesamiento en segundo plano ", 5))

	pipeline.Start("async")

	require.Eventually(t, func() bool {
		chunks, err := repo.GetChunksBySource(context.Background(), "async")
		return err == nil && len(chunks) > 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "hola mundo", normalizeWhitespace("  hola \n\t mundo  "))
	assert.Equal(t, "", normalizeWhitespace(" \n "))
}
