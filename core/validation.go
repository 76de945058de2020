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


package core

import "fmt"

// ValidateQuery validates a Query according to domain rules.
//
// Validation rules:
//   - Raw text must be non-empty after normalization
//   - From must not be after To when both are set
//
// NOT validated:
//   - Journal (any non-empty string is passed through to the source)
func ValidateQuery(q Query) error {
	if q.Normalized() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQuery)
	}

	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrInvalidDateRange)
	}

	return nil
}

// ValidateArticle validates an ArticleRecord according to domain rules.
// Records that fail validation are dropped from result sets rather than
// failing the whole retrieval.
//
// Validation rules:
//   - PMID must not be empty
//   - Title must not be empty
//
// NOT validated (commonly absent at the source):
//   - Abstract, Authors, Journal, PubDate
func ValidateArticle(a *ArticleRecord) error {
	if a == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidArticle)
	}

	if a.PMID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingPMID)
	}

	if a.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingTitle)
	}

	return nil
}
