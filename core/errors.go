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

import "errors"

// Error kinds for external-call failures. Stages wrap the underlying error
// with one of these so logs carry a stable taxonomy while the conversation
// path degrades instead of propagating.
var (
	// ErrClassifierUnavailable indicates the intent classification service failed.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrEmbeddingFailed indicates the embedding service failed.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStoreQueryFailed indicates a knowledge store read/query failed.
	ErrStoreQueryFailed = errors.New("store query failed")

	// ErrStoreWriteFailed indicates a knowledge store write failed.
	ErrStoreWriteFailed = errors.New("store write failed")

	// ErrCompletionFailed indicates the completion service failed.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrSourceNotFound indicates the knowledge source does not exist.
	ErrSourceNotFound = errors.New("knowledge source not found")

	// ErrFileFetchFailed indicates the source document could not be fetched.
	ErrFileFetchFailed = errors.New("file fetch failed")

	// ErrExtractionFailed indicates text could not be extracted from a document.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrInvalidChunkingConfig indicates chunking parameters that would not terminate.
	ErrInvalidChunkingConfig = errors.New("invalid chunking configuration")
)

// Domain validation errors
var (
	// ErrInvalidSource indicates a KnowledgeSource failed validation.
	ErrInvalidSource = errors.New("invalid knowledge source")

	// ErrInvalidChunk indicates a KnowledgeChunk failed validation.
	ErrInvalidChunk = errors.New("invalid knowledge chunk")

	// ErrEmptySourceID indicates the source ID field is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrEmptyContent indicates the content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidSourceType indicates an unknown SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrMissingFileLocator indicates a file source without a locator.
	ErrMissingFileLocator = errors.New("file source requires a locator")
)
