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


package pubmed

import (
	"errors"
	"fmt"
)

// RetrievalErrorKind classifies retrieval failures so callers can decide
// whether an operation is worth retrying.
type RetrievalErrorKind int

const (
	// RetrievalTransient covers network failures, timeouts, and 5xx
	// responses. Safe to retry.
	RetrievalTransient RetrievalErrorKind = iota

	// RetrievalQuotaExceeded means the service rejected the request for
	// rate-limit reasons. Retrying immediately makes things worse.
	RetrievalQuotaExceeded

	// RetrievalMalformedQuery means the service could not interpret the
	// query. Retrying the same query cannot succeed.
	RetrievalMalformedQuery
)

// String returns a human-readable name for the error kind.
func (k RetrievalErrorKind) String() string {
	switch k {
	case RetrievalTransient:
		return "transient"
	case RetrievalQuotaExceeded:
		return "quota_exceeded"
	case RetrievalMalformedQuery:
		return "malformed_query"
	default:
		return "unknown"
	}
}

// RetrievalError wraps an underlying failure with its retry classification.
type RetrievalError struct {
	Kind RetrievalErrorKind
	Err  error
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// AsRetrievalError extracts a *RetrievalError from err's chain, if present.
func AsRetrievalError(err error) (*RetrievalError, bool) {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than zero")
