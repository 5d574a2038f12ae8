// Copyright 2026 Charla Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateSource validates a KnowledgeSource according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Type must be a known SourceType
//   - file sources must carry a FileLocator
//
// NOT validated:
//   - Content (empty text is a legal no-op for ingestion)
//   - Title (a missing title only degrades snippet rendering)
func ValidateSource(source *KnowledgeSource) error {
	if source == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	if source.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrEmptySourceID)
	}

	if err := ValidateSourceType(source.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	if source.Type == SourceTypeFile && source.FileLocator == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSource, ErrMissingFileLocator)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a known value.
func ValidateSourceType(t SourceType) error {
	switch t {
	case SourceTypeText, SourceTypeFile:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSourceType, t)
	}
}

// ValidateChunk validates a KnowledgeChunk before it is written.
//
// Validation rules:
//   - SourceID must not be empty
//   - Content must not be empty
//   - Seq must not be negative
//
// NOT validated:
//   - Vector (a chunk without an embedding is skipped by similarity queries)
func ValidateChunk(chunk *KnowledgeChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceID)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Seq < 0 {
		return fmt.Errorf("%w: negative seq %d", ErrInvalidChunk, chunk.Seq)
	}

	return nil
}
