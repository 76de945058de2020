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


package ai

import "errors"

// SummarizationErrorKind classifies summarization failures.
type SummarizationErrorKind int

const (
	// SummarizationProvider indicates the model provider failed after retry.
	SummarizationProvider SummarizationErrorKind = iota + 1

	// SummarizationUnparseable indicates the model's output could not be
	// parsed into the expected shape.
	SummarizationUnparseable
)

// String returns the kind's name.
func (k SummarizationErrorKind) String() string {
	switch k {
	case SummarizationProvider:
		return "provider"
	case SummarizationUnparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// SummarizationError is returned when a summarization or answering call fails.
type SummarizationError struct {
	Kind SummarizationErrorKind
	Err  error
}

// Error implements the error interface.
func (e *SummarizationError) Error() string {
	if e.Err == nil {
		return "summarization error: " + e.Kind.String()
	}
	return "summarization error (" + e.Kind.String() + "): " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// AsSummarizationError extracts a SummarizationError from an error chain.
func AsSummarizationError(err error) (*SummarizationError, bool) {
	var se *SummarizationError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrNoArticles is returned when Summarize or Answer is called with an
	// empty article set.
	ErrNoArticles = errors.New("no articles to summarize")

	// ErrEmptyQuestion is returned when Answer is called with empty question text.
	ErrEmptyQuestion = errors.New("question text cannot be empty")
)
