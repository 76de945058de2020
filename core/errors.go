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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuery indicates a Query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmptyQuery indicates the query text is empty after normalization.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrInvalidDateRange indicates the query's From bound is after its To bound.
	ErrInvalidDateRange = errors.New("date range lower bound after upper bound")

	// ErrInvalidArticle indicates an ArticleRecord failed validation.
	ErrInvalidArticle = errors.New("invalid article record")

	// ErrMissingPMID indicates the article identifier field is empty.
	ErrMissingPMID = errors.New("article identifier cannot be empty")

	// ErrMissingTitle indicates the article title field is empty.
	ErrMissingTitle = errors.New("article title cannot be empty")
)
