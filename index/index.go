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
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/core"
)

// defaultMaxInputChars bounds the text sent to the embedding model.
// Article text beyond this is truncated; the leading title and abstract
// carry the signal that matters for ranking.
const defaultMaxInputChars = 8000

// Doc pairs a document ID with its embedding vector for ranking.
type Doc struct {
	ID     string
	Vector []float32
}

// Index turns article text into normalized embedding vectors and ranks
// documents against a query vector by cosine similarity.
type Index struct {
	embedder      ai.Embedder
	maxInputChars int
	logger        *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithMaxInputChars overrides the embedding input truncation limit.
func WithMaxInputChars(n int) Option {
	return func(ix *Index) error {
		if n <= 0 {
			return ErrInvalidMaxInput
		}
		ix.maxInputChars = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndex creates an index backed by the given embedder.
func NewIndex(embedder ai.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Index{
		embedder:      embedder,
		maxInputChars: defaultMaxInputChars,
		logger:        slog.Default().With("component", "index"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// EmbedQuestion embeds a user question. Questions are never truncated:
// cutting one silently would change what gets answered, so an oversized
// question is rejected instead.
func (ix *Index) EmbedQuestion(ctx context.Context, question string) ([]float32, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if len(question) > ix.maxInputChars {
		return nil, &EmbeddingError{
			Kind: EmbeddingInputTooLong,
			Err:  fmt.Errorf("question is %d chars, limit is %d", len(question), ix.maxInputChars),
		}
	}

	vector, err := ix.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, &EmbeddingError{Kind: EmbeddingProvider, Err: err}
	}
	return NormalizeVector(vector), nil
}

// EmbedArticles embeds the given articles in one provider call, falling back
// to per-article calls when the batch fails so one bad input cannot sink the
// rest. Returns vectors keyed by PMID plus the PMIDs that could not be
// embedded. The error is non-nil only when every article failed.
func (ix *Index) EmbedArticles(ctx context.Context, articles []core.ArticleRecord) (map[string][]float32, []string, error) {
	if len(articles) == 0 {
		return map[string][]float32{}, nil, nil
	}

	texts := make([]string, len(articles))
	for i := range articles {
		texts[i] = ix.truncate(articles[i].EmbeddingText())
	}

	vectors := make(map[string][]float32, len(articles))
	var failed []string

	batch, err := ix.embedder.EmbedTexts(ctx, texts)
	if err == nil && len(batch) != len(articles) {
		err = fmt.Errorf("embedder returned %d vectors for %d inputs", len(batch), len(articles))
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		ix.logger.Warn("batch embedding failed, retrying per article", "articles", len(articles), "err", err)
		for i := range articles {
			vector, embedErr := ix.embedder.EmbedText(ctx, texts[i])
			if embedErr != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				failed = append(failed, articles[i].PMID)
				continue
			}
			vectors[articles[i].PMID] = NormalizeVector(vector)
		}
	} else {
		for i := range articles {
			vectors[articles[i].PMID] = NormalizeVector(batch[i])
		}
	}

	if err := checkDimensions(vectors); err != nil {
		return nil, nil, err
	}

	if len(vectors) == 0 {
		return nil, nil, &EmbeddingError{
			Kind: EmbeddingProvider,
			Err:  fmt.Errorf("all %d articles failed to embed", len(articles)),
		}
	}
	return vectors, failed, nil
}

// Rank orders docs by cosine similarity to the query vector, descending.
// Ties keep the docs' input order, so ranking is deterministic. At most topK
// matches are returned.
func (ix *Index) Rank(query []float32, docs []Doc, topK int) ([]core.Match, error) {
	if len(query) == 0 {
		return nil, ErrEmptyQueryVector
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	matches := make([]core.Match, 0, len(docs))
	for _, d := range docs {
		if len(d.Vector) != len(query) {
			return nil, &EmbeddingError{
				Kind: EmbeddingDimensionMismatch,
				Err:  fmt.Errorf("doc %s has dimension %d, query has %d", d.ID, len(d.Vector), len(query)),
			}
		}
		matches = append(matches, core.Match{
			PMID:  d.ID,
			Score: dotProduct(query, d.Vector),
		})
	}

	// Stable sort keeps input order for equal scores.
	slices.SortStableFunc(matches, func(a, b core.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// truncate cuts text to the embedding input limit on a rune boundary.
func (ix *Index) truncate(text string) string {
	if len(text) <= ix.maxInputChars {
		return text
	}
	runes := []rune(text)
	if len(runes) > ix.maxInputChars {
		runes = runes[:ix.maxInputChars]
	}
	return string(runes)
}

// checkDimensions verifies every vector in the set has the same length.
func checkDimensions(vectors map[string][]float32) error {
	dim := -1
	var first string
	for pmid, v := range vectors {
		if dim == -1 {
			dim = len(v)
			first = pmid
			continue
		}
		if len(v) != dim {
			return &EmbeddingError{
				Kind: EmbeddingDimensionMismatch,
				Err:  fmt.Errorf("doc %s has dimension %d, doc %s has %d", pmid, len(v), first, dim),
			}
		}
	}
	return nil
}
