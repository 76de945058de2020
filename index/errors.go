// Copyright 2025 The medlit authors
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


package index

import (
	"errors"
	"fmt"
)

// EmbeddingErrorKind classifies embedding failures.
type EmbeddingErrorKind int

const (
	// EmbeddingProvider covers failures of the upstream embedding service.
	EmbeddingProvider EmbeddingErrorKind = iota

	// EmbeddingDimensionMismatch means two vectors that should be
	// comparable have different lengths.
	EmbeddingDimensionMismatch

	// EmbeddingInputTooLong means the input exceeds the model's limit and
	// cannot be truncated without changing its meaning.
	EmbeddingInputTooLong
)

// String returns a human-readable name for the error kind.
func (k EmbeddingErrorKind) String() string {
	switch k {
	case EmbeddingProvider:
		return "provider"
	case EmbeddingDimensionMismatch:
		return "dimension_mismatch"
	case EmbeddingInputTooLong:
		return "input_too_long"
	default:
		return "unknown"
	}
}

// EmbeddingError wraps an embedding failure with its classification.
type EmbeddingError struct {
	Kind EmbeddingErrorKind
	Err  error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// AsEmbeddingError extracts an *EmbeddingError from err's chain, if present.
func AsEmbeddingError(err error) (*EmbeddingError, bool) {
	var ee *EmbeddingError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// Sentinel errors for constructor validation.
var (
	ErrEmbedderRequired = errors.New("embedder is required")
	ErrInvalidMaxInput  = errors.New("max input length must be greater than zero")
	ErrInvalidTopK      = errors.New("topK must be greater than zero")
	ErrEmptyQueryVector = errors.New("query vector is empty")
	ErrEmptyQuestion    = errors.New("question is empty")
)
