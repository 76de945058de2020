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


package medlit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/ai/mock"
	"github.com/medlit/medlit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever is a test double for pubmed.Retriever.
type stubRetriever struct {
	searchFunc func(ctx context.Context, query core.Query) (*core.ResultSet, error)
	calls      atomic.Int32
}

func (s *stubRetriever) Search(ctx context.Context, query core.Query) (*core.ResultSet, error) {
	s.calls.Add(1)
	return s.searchFunc(ctx, query)
}

func testArticles(n int) []core.ArticleRecord {
	articles := make([]core.ArticleRecord, n)
	for i := range articles {
		pmid := fmt.Sprintf("%d", i+1)
		articles[i] = core.ArticleRecord{
			PMID:     pmid,
			Title:    fmt.Sprintf("Article %s", pmid),
			Abstract: fmt.Sprintf("Abstract text for article %s.", pmid),
			Authors:  []string{"Smith J"},
			Journal:  "Test Journal",
			PubDate:  "2024",
			URL:      "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		}
	}
	return articles
}

func newTestService(t *testing.T, retriever *stubRetriever, provider ai.AIProvider) *Service {
	t.Helper()
	if provider == nil {
		provider = mock.NewMockProvider()
	}
	svc, err := NewService("",
		WithInMemoryStorage(),
		WithProvider(provider),
		WithRetriever(retriever),
	)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestServiceSearch(t *testing.T) {
	t.Run("FindingsPerArticleInOrder", func(t *testing.T) {
		articles := testArticles(5)
		retriever := &stubRetriever{
			searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
				return &core.ResultSet{Query: query, Articles: articles}, nil
			},
		}
		svc := newTestService(t, retriever, nil)

		entry, fromCache, err := svc.Search(context.Background(), core.Query{Raw: "test topic"})
		require.NoError(t, err)
		assert.False(t, fromCache)

		require.Len(t, entry.Results.Articles, 5)
		require.Len(t, entry.Findings, 5)
		for i, f := range entry.Findings {
			assert.Equal(t, articles[i].PMID, f.PMID)
			assert.False(t, f.Unavailable)
			assert.NotEmpty(t, f.Claims)
		}
		assert.Len(t, entry.Vectors, 5)
	})

	t.Run("RepeatedSearchHitsCache", func(t *testing.T) {
		retriever := &stubRetriever{
			searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
				return &core.ResultSet{Query: query, Articles: testArticles(2)}, nil
			},
		}
		svc := newTestService(t, retriever, nil)

		query := core.Query{Raw: "Cache Me"}
		first, fromCache, err := svc.Search(context.Background(), query)
		require.NoError(t, err)
		assert.False(t, fromCache)

		// Same query with different casing and spacing.
		second, fromCache, err := svc.Search(context.Background(), core.Query{Raw: " cache   me "})
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Same(t, first, second)
		assert.Equal(t, int32(1), retriever.calls.Load())
	})

	t.Run("RetrievalFailureNotCached", func(t *testing.T) {
		var fail atomic.Bool
		fail.Store(true)
		retriever := &stubRetriever{
			searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
				if fail.Load() {
					return nil, errors.New("upstream down")
				}
				return &core.ResultSet{Query: query, Articles: testArticles(1)}, nil
			},
		}
		svc := newTestService(t, retriever, nil)

		query := core.Query{Raw: "flaky"}
		_, _, err := svc.Search(context.Background(), query)
		require.Error(t, err)

		fail.Store(false)
		entry, fromCache, err := svc.Search(context.Background(), query)
		require.NoError(t, err)
		assert.False(t, fromCache, "failed search must not be cached")
		assert.Len(t, entry.Results.Articles, 1)
	})

	t.Run("EmptyResults", func(t *testing.T) {
		retriever := &stubRetriever{
			searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
				return &core.ResultSet{Query: query}, nil
			},
		}
		svc := newTestService(t, retriever, nil)

		entry, _, err := svc.Search(context.Background(), core.Query{Raw: "no hits"})
		require.NoError(t, err)
		assert.Empty(t, entry.Results.Articles)
		assert.Empty(t, entry.Findings)
	})

	t.Run("InvalidQuery", func(t *testing.T) {
		svc := newTestService(t, &stubRetriever{
			searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
				t.Fatal("retriever must not be called for invalid queries")
				return nil, nil
			},
		}, nil)

		_, _, err := svc.Search(context.Background(), core.Query{Raw: "   "})
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
	})
}

func TestServiceFollowUp(t *testing.T) {
	articles := testArticles(3)

	// Orthogonal unit vectors per article; the question vector matches
	// article 3 exactly.
	vectorFor := func(text string) []float32 {
		switch {
		case strings.Contains(text, "article 1"):
			return []float32{1, 0, 0}
		case strings.Contains(text, "article 2"):
			return []float32{0, 1, 0}
		default:
			return []float32{0, 0, 1}
		}
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = vectorFor(text)
		}
		return vectors, nil
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0, 0, 1}, nil // the question
	}

	summarizer := mock.NewMockSummarizer()
	var answerContext []core.ArticleRecord
	summarizer.AnswerFunc = func(ctx context.Context, question string, articles []core.ArticleRecord) (string, error) {
		answerContext = articles
		return "synthesized answer [1]", nil
	}

	retriever := &stubRetriever{
		searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
			return &core.ResultSet{Query: query, Articles: articles}, nil
		},
	}
	svc := newTestService(t, retriever, mock.NewMockProviderWithServices(embedder, summarizer))

	query := core.Query{Raw: "something medical"}
	_, _, err := svc.Search(context.Background(), query)
	require.NoError(t, err)
	require.NoError(t, svc.Bind("conv-1", query))

	answer, used, err := svc.FollowUp(context.Background(), "conv-1", "what about the third one?")
	require.NoError(t, err)
	assert.Equal(t, "synthesized answer [1]", answer)

	require.NotEmpty(t, used)
	assert.Equal(t, "3", used[0].PMID, "best-matching article must rank first")
	require.NotEmpty(t, answerContext)
	assert.Equal(t, "3", answerContext[0].PMID, "answer context must be in rank order")
}

func TestServiceFollowUpWithoutSearch(t *testing.T) {
	svc := newTestService(t, &stubRetriever{
		searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
			return &core.ResultSet{Query: query}, nil
		},
	}, nil)

	_, _, err := svc.FollowUp(context.Background(), "unknown-conv", "question?")
	assert.ErrorIs(t, err, ErrNoActiveSearch)
}

func TestServiceWriteBehind(t *testing.T) {
	retriever := &stubRetriever{
		searchFunc: func(ctx context.Context, query core.Query) (*core.ResultSet, error) {
			return &core.ResultSet{Query: query, Articles: testArticles(2)}, nil
		},
	}
	svc := newTestService(t, retriever, nil)

	query := core.Query{Raw: "persist me"}
	_, _, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	// Archive and history writes happen behind the response.
	assert.Eventually(t, func() bool {
		archived, err := svc.ArchivedArticles(context.Background(), query)
		return err == nil && len(archived) == 2
	}, 2*time.Second, 10*time.Millisecond, "articles should be archived")

	assert.Eventually(t, func() bool {
		summaries, err := svc.RecentSearches(context.Background(), 10)
		return err == nil && len(summaries) == 1 && summaries[0].Query == "persist me"
	}, 2*time.Second, 10*time.Millisecond, "search should be recorded in history")
}
