package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlabot/charla/core"
)

func TestSourceRoundTrip(t *testing.T) {
	source := &core.KnowledgeSource{
		ID:          "faq-envios",
		Title:       "Envíos",
		Type:        core.SourceTypeFile,
		FileLocator: "docs/envios.pdf",
		InsertedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := MarshalSource(source)
	require.NoError(t, err)

	decoded, err := UnmarshalSource(data)
	require.NoError(t, err)
	assert.Equal(t, source, decoded)
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.KnowledgeChunk{
		ID:          core.IDFromContent("faq-envios|0|Solo enviamos a CDMX."),
		SourceID:    "faq-envios",
		SourceTitle: "Envíos",
		Seq:         0,
		Content:     "Solo enviamos a CDMX.",
		Vector:      []float32{0.1, -0.2, 0.3},
		InsertedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestUnmarshalCorruptData(t *testing.T) {
	_, err := UnmarshalSource([]byte("{not json"))
	assert.True(t, errors.Is(err, ErrSerializationFailed))

	_, err = UnmarshalChunk([]byte("\x00\x01"))
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}
