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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestParseSummaryResponse(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		parsed, err := parseSummaryResponse(`{"summaries":[{"pmid":"123","findings":["a","b"]},{"pmid":"456","findings":["c"]}]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, parsed["123"])
		assert.Equal(t, []string{"c"}, parsed["456"])
	})

	t.Run("MarkdownFenced", func(t *testing.T) {
		text := "```json\n{\"summaries\":[{\"pmid\":\"123\",\"findings\":[\"a\"]}]}\n```"
		parsed, err := parseSummaryResponse(text)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, parsed["123"])
	})

	t.Run("UnquotedKeys", func(t *testing.T) {
		parsed, err := parseSummaryResponse(`{summaries: [{pmid: "123", findings: ["a"]}]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, parsed["123"])
	})

	t.Run("BlankFindingsDropped", func(t *testing.T) {
		parsed, err := parseSummaryResponse(`{"summaries":[{"pmid":"123","findings":["  ",""]}]}`)
		require.NoError(t, err)
		_, ok := parsed["123"]
		assert.False(t, ok, "entries with only blank findings should be omitted")
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, err := parseSummaryResponse("not json at all")
		assert.Error(t, err)
	})
}

func TestBatchArticles(t *testing.T) {
	mk := func(pmid string, abstractLen int) core.ArticleRecord {
		return core.ArticleRecord{
			PMID:     pmid,
			Title:    "t",
			Abstract: strings.Repeat("x", abstractLen),
		}
	}

	t.Run("AllFitInOneBatch", func(t *testing.T) {
		articles := []core.ArticleRecord{mk("1", 10), mk("2", 10), mk("3", 10)}
		batches := batchArticles(articles, 10000)
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 3)
	})

	t.Run("SplitsOnBudget", func(t *testing.T) {
		articles := []core.ArticleRecord{mk("1", 100), mk("2", 100), mk("3", 100)}
		batches := batchArticles(articles, 150)
		assert.Len(t, batches, 3)
	})

	t.Run("OversizedArticleGetsOwnBatch", func(t *testing.T) {
		articles := []core.ArticleRecord{mk("1", 10), mk("2", 5000), mk("3", 10)}
		batches := batchArticles(articles, 200)
		require.Len(t, batches, 3)
		assert.Equal(t, "2", batches[1][0].PMID)
		assert.Len(t, batches[1], 1)
	})

	t.Run("PreservesOrder", func(t *testing.T) {
		articles := []core.ArticleRecord{mk("1", 50), mk("2", 50), mk("3", 50), mk("4", 50)}
		batches := batchArticles(articles, 160)
		var flat []string
		for _, b := range batches {
			for _, a := range b {
				flat = append(flat, a.PMID)
			}
		}
		assert.Equal(t, []string{"1", "2", "3", "4"}, flat)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, batchArticles(nil, 100))
	})
}

func TestFormatArticlesForAnswer(t *testing.T) {
	articles := []core.ArticleRecord{
		{PMID: "1", Title: "First", Authors: []string{"Smith J", "Lee K"}, Abstract: "abs one", PubDate: "2024 Jan"},
		{PMID: "2", Title: "Second", Abstract: "abs two", PubDate: "2023"},
	}
	text := formatArticlesForAnswer(articles)
	assert.Contains(t, text, "Article 1:\nTitle: First")
	assert.Contains(t, text, "Smith J, Lee K")
	assert.Contains(t, text, "Article 2:\nTitle: Second")
}

// fakeModel scripts GenerateContent responses per call.
type fakeModel struct {
	generateFunc func(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error)
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return f.generateFunc(ctx, messages)
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

// humanText extracts the user message from a GenerateContent call.
func humanText(messages []llms.MessageContent) string {
	for _, m := range messages {
		if m.Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				return tp.Text
			}
		}
	}
	return ""
}

func newTestSummarizer(model llms.Model, budget int) *Summarizer {
	return &Summarizer{
		client:        model,
		temperature:   0.3,
		contextBudget: budget,
		logger:        slog.Default(),
	}
}

func TestSummarize(t *testing.T) {
	articles := []core.ArticleRecord{
		{PMID: "1", Title: "First", Abstract: "aspirin reduced stroke risk"},
		{PMID: "2", Title: "Second", Abstract: "statins lowered LDL"},
	}

	t.Run("SingleBatch", func(t *testing.T) {
		model := &fakeModel{
			generateFunc: func(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
				return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
					Content: `{"summaries":[{"pmid":"1","findings":["Aspirin reduced stroke risk."]},{"pmid":"2","findings":["Statins lowered LDL."]}]}`,
				}}}, nil
			},
		}
		s := newTestSummarizer(model, 10000)

		result, err := s.Summarize(context.Background(), articles)
		require.NoError(t, err)
		require.Len(t, result.Findings, 2)
		assert.Empty(t, result.Failed)
		assert.Equal(t, "1", result.Findings[0].PMID)
		assert.Equal(t, []string{"Aspirin reduced stroke risk."}, result.Findings[0].Claims)
	})

	t.Run("FailedBatchIsolated", func(t *testing.T) {
		// Budget of 1 forces one article per batch.
		model := &fakeModel{
			generateFunc: func(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
				if strings.Contains(humanText(messages), "PMID: 2") {
					return &llms.ContentResponse{}, nil // no choices
				}
				return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
					Content: `{"summaries":[{"pmid":"1","findings":["Aspirin reduced stroke risk."]}]}`,
				}}}, nil
			},
		}
		s := newTestSummarizer(model, 1)

		result, err := s.Summarize(context.Background(), articles)
		require.NoError(t, err)
		require.Len(t, result.Findings, 1)
		assert.Equal(t, "1", result.Findings[0].PMID)
		assert.Equal(t, []string{"2"}, result.Failed)
	})

	t.Run("UnparseableOutputMarksUnavailable", func(t *testing.T) {
		model := &fakeModel{
			generateFunc: func(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
				return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
					Content: "I'm sorry, I cannot produce JSON today.",
				}}}, nil
			},
		}
		s := newTestSummarizer(model, 10000)

		result, err := s.Summarize(context.Background(), articles)
		require.NoError(t, err)
		require.Len(t, result.Findings, 2)
		for _, f := range result.Findings {
			assert.True(t, f.Unavailable)
		}
	})

	t.Run("AllBatchesFailed", func(t *testing.T) {
		model := &fakeModel{
			generateFunc: func(ctx context.Context, messages []llms.MessageContent) (*llms.ContentResponse, error) {
				return &llms.ContentResponse{}, nil
			},
		}
		s := newTestSummarizer(model, 1)

		_, err := s.Summarize(context.Background(), articles)
		require.Error(t, err)
		se, ok := ai.AsSummarizationError(err)
		require.True(t, ok)
		assert.Equal(t, ai.SummarizationProvider, se.Kind)
	})
}
