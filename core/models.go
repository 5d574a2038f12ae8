package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// HandoffSentinel is the reserved reply signaling that the conversation must
// be escalated to a human. It is compared with == only, never as a substring,
// and is translated into a user-facing message at the transport boundary.
const HandoffSentinel = "HANDOFF_TO_HUMAN"

// ID is a unique identifier for knowledge chunks.
// It is generated from chunk content so re-ingesting unchanged text
// reproduces the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceType identifies how a knowledge source stores its text.
type SourceType string

const (
	// SourceTypeText means the source carries its text inline.
	SourceTypeText SourceType = "text"
	// SourceTypeFile means the source points at a stored document
	// (currently PDF) that must be fetched and extracted.
	SourceTypeFile SourceType = "file"
)

// KnowledgeSource is an externally authored document registered in the
// knowledge base. The ingestion pipeline reads it and fully owns the chunk
// rows derived from it.
type KnowledgeSource struct {
	ID          string
	Title       string
	Type        SourceType
	Content     string // inline text for SourceTypeText
	FileLocator string // document store locator for SourceTypeFile
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// KnowledgeChunk is one retrievable window of a source document.
// All chunks for a source are deleted and regenerated on each ingestion run;
// the chunk set is never a merge of old and new runs.
type KnowledgeChunk struct {
	ID          ID
	SourceID    string
	SourceTitle string
	Seq         int // position of the chunk within its source
	Content     string
	Vector      []float32
	InsertedAt  time.Time
}

// ChunkMatch is a chunk returned from a similarity query together with its
// cosine similarity to the query embedding.
type ChunkMatch struct {
	Chunk *KnowledgeChunk
	Score float32
}

// IntentResult is the outcome of classifying one conversation turn.
// It is consumed immediately by the orchestrator and never stored.
type IntentResult struct {
	Label           string
	FulfillmentText string
	// IsFallback reports that the classifier had no confident match (or was
	// unreachable) and the retrieval path must run.
	IsFallback bool
}

// ContextSnippet is one (title, content) pair assembled from a similarity query.
type ContextSnippet struct {
	Title   string
	Content string
	Score   float32
}

// RetrievedContext is the ordered context block handed to the answer
// generator. Snippets are ordered by descending similarity.
type RetrievedContext struct {
	Snippets []ContextSnippet
}

// Render joins the snippets into a single bounded text block for prompting.
func (c *RetrievedContext) Render() string {
	var b strings.Builder
	for i, s := range c.Snippets {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(s.Title)
		b.WriteString(":\n")
		b.WriteString(s.Content)
	}
	return b.String()
}
