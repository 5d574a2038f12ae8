package ingestion

import (
	"fmt"

	"github.com/charlabot/charla/core"
)

// Default chunking parameters, in runes.
const (
	DefaultWindowSize = 1000
	DefaultOverlap    = 200
)

// Chunk splits text into consecutive windows of windowSize runes, advancing
// the start offset by windowSize-overlap each step. The final chunk may be
// shorter than windowSize. Sentence and paragraph boundaries are ignored on
// purpose: fixed windows keep the chunk count predictable and the overlap
// preserves statements cut at a window edge.
//
// overlap must be smaller than windowSize; otherwise the offset would never
// advance and the split would not terminate.
func Chunk(text string, windowSize, overlap int) ([]string, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", core.ErrInvalidChunkingConfig, windowSize)
	}
	if overlap < 0 || overlap >= windowSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", core.ErrInvalidChunkingConfig, windowSize, overlap)
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := windowSize - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + windowSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
