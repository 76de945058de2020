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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// providerRetryDelay is the backoff before the single retry on a
// provider-side transient error.
const providerRetryDelay = 2 * time.Second

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client        llms.Model
	temperature   float64
	contextBudget int
	logger        *slog.Logger
}

// articleSummary is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type articleSummary struct {
	PMID     string   `json:"pmid"`
	Findings []string `json:"findings"`
}

// summaryAnalysis is the wrapper structure for the LLM's JSON response.
type summaryAnalysis struct {
	Summaries []articleSummary `json:"summaries"`
}

// newSummarizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for summarization
	client, err := openai.New(
		openai.WithBaseURL(config.SummaryHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.SummaryModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client:        client,
		temperature:   config.Temperature,
		contextBudget: config.ContextBudget,
		logger:        slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize produces one Finding per article using an LLM.
// Articles are packed into batches bounded by the context budget; batches are
// processed sequentially so a provider failure in one batch cannot affect the
// others. Articles from a failed batch are reported in SummaryResult.Failed.
func (s *Summarizer) Summarize(ctx context.Context, articles []core.ArticleRecord) (*ai.SummaryResult, error) {
	result := &ai.SummaryResult{}
	if len(articles) == 0 {
		return result, nil
	}

	batches := batchArticles(articles, s.contextBudget)
	s.logger.Debug("summarizing articles", "articles", len(articles), "batches", len(batches))

	for _, batch := range batches {
		findings, err := s.summarizeBatch(ctx, batch)
		if err != nil {
			// Context cancellation aborts the whole call; provider failures
			// are contained to the batch.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("batch summarization failed", "batchSize", len(batch), "err", err)
			for _, a := range batch {
				result.Failed = append(result.Failed, a.PMID)
			}
			continue
		}
		result.Findings = append(result.Findings, findings...)
	}

	if len(result.Findings) == 0 && len(result.Failed) > 0 {
		return nil, &ai.SummarizationError{
			Kind: ai.SummarizationProvider,
			Err:  fmt.Errorf("all %d batches failed", len(batches)),
		}
	}

	return result, nil
}

// summarizeBatch runs one model call for a batch and parses it into findings,
// one per article in batch order. Output that cannot be matched to an article
// yields an Unavailable finding for it rather than an error.
func (s *Summarizer) summarizeBatch(ctx context.Context, batch []core.ArticleRecord) ([]core.Finding, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSummarySystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(formatArticlesForSummary(batch)),
			},
		},
	}

	response, err := s.generateWithRetry(ctx, content, llms.WithTemperature(s.temperature), llms.WithJSONMode())
	if err != nil {
		return nil, err
	}

	if len(response.Choices) < 1 {
		return nil, &ai.SummarizationError{
			Kind: ai.SummarizationUnparseable,
			Err:  fmt.Errorf("no choices returned from model"),
		}
	}

	parsed, parseErr := parseSummaryResponse(response.Choices[0].Content)
	if parseErr != nil {
		// Whole response unusable: every article in the batch gets an
		// explicit unavailable marker instead of failing the batch.
		s.logger.Warn("unparseable summary response", "batchSize", len(batch), "err", parseErr)
		parsed = map[string][]string{}
	}

	findings := make([]core.Finding, 0, len(batch))
	for _, a := range batch {
		claims, ok := parsed[a.PMID]
		if !ok || len(claims) == 0 {
			findings = append(findings, core.Finding{PMID: a.PMID, Unavailable: true})
			continue
		}
		findings = append(findings, core.Finding{PMID: a.PMID, Claims: claims})
	}
	return findings, nil
}

// Answer synthesizes an answer to the question from the given context articles.
func (s *Summarizer) Answer(ctx context.Context, question string, articles []core.ArticleRecord) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ai.ErrEmptyQuestion
	}
	if len(articles) == 0 {
		return "", ai.ErrNoArticles
	}

	userPrompt := fmt.Sprintf("Question: %s\n\nArticles:\n\n%s", question, formatArticlesForAnswer(articles))
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildAnswerSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(userPrompt),
			},
		},
	}

	response, err := s.generateWithRetry(ctx, content, llms.WithTemperature(s.temperature))
	if err != nil {
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", &ai.SummarizationError{
			Kind: ai.SummarizationUnparseable,
			Err:  fmt.Errorf("no choices returned from model"),
		}
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// generateWithRetry calls the model, retrying once with backoff on a
// provider-side error. A second failure is surfaced as a provider error.
func (s *Summarizer) generateWithRetry(ctx context.Context, content []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	response, err := s.client.GenerateContent(ctx, content, opts...)
	if err == nil {
		return response, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.logger.Warn("provider error, retrying once", "err", err)
	timer := time.NewTimer(providerRetryDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return nil, ctx.Err()
	case <-timer.C:
	}

	response, err = s.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, &ai.SummarizationError{Kind: ai.SummarizationProvider, Err: err}
	}
	return response, nil
}

// parseSummaryResponse parses the model's JSON output into a PMID -> claims map.
func parseSummaryResponse(text string) (map[string][]string, error) {
	// Strip markdown code fences if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Try to repair common JSON issues
	text = repairJSON(text)

	var analysis summaryAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, err
	}

	parsed := make(map[string][]string, len(analysis.Summaries))
	for _, s := range analysis.Summaries {
		claims := make([]string, 0, len(s.Findings))
		for _, f := range s.Findings {
			f = strings.TrimSpace(f)
			if f != "" {
				claims = append(claims, f)
			}
		}
		if len(claims) > 0 {
			parsed[s.PMID] = claims
		}
	}
	return parsed, nil
}

// batchArticles packs articles into batches whose combined prompt text stays
// within the character budget. Packing is greedy in input order and every
// batch holds at least one article, so an oversized abstract still gets a
// call of its own.
func batchArticles(articles []core.ArticleRecord, budget int) [][]core.ArticleRecord {
	var batches [][]core.ArticleRecord
	var current []core.ArticleRecord
	used := 0

	for _, a := range articles {
		cost := len(formatArticleForSummary(&a))
		if len(current) > 0 && used+cost > budget {
			batches = append(batches, current)
			current = nil
			used = 0
		}
		current = append(current, a)
		used += cost
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// formatArticleForSummary renders one article for the summarization prompt.
func formatArticleForSummary(a *core.ArticleRecord) string {
	return fmt.Sprintf("PMID: %s\nTitle: %s\nAbstract: %s\n\n", a.PMID, a.Title, a.Abstract)
}

// formatArticlesForSummary renders a batch for the summarization prompt.
func formatArticlesForSummary(batch []core.ArticleRecord) string {
	var b strings.Builder
	for i := range batch {
		b.WriteString(formatArticleForSummary(&batch[i]))
	}
	return b.String()
}

// formatArticlesForAnswer renders numbered context articles for the answer prompt.
func formatArticlesForAnswer(articles []core.ArticleRecord) string {
	var b strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&b, "Article %d:\nTitle: %s\nAuthors: %s\nAbstract: %s\nPublished: %s\n\n",
			i+1, a.Title, strings.Join(a.Authors, ", "), a.Abstract, a.PubDate)
	}
	return b.String()
}
