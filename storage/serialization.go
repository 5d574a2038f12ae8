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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/charlabot/charla/core"
)

// MarshalSource serializes a KnowledgeSource to bytes.
func MarshalSource(source *core.KnowledgeSource) ([]byte, error) {
	data, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalSource deserializes a KnowledgeSource from bytes.
func UnmarshalSource(data []byte) (*core.KnowledgeSource, error) {
	var source core.KnowledgeSource
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &source, nil
}

// MarshalChunk serializes a KnowledgeChunk to bytes.
func MarshalChunk(chunk *core.KnowledgeChunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a KnowledgeChunk from bytes.
func UnmarshalChunk(data []byte) (*core.KnowledgeChunk, error) {
	var chunk core.KnowledgeChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &chunk, nil
}
