package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/core"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, articles []core.ArticleRecord) (*ai.SummaryResult, error)

	// AnswerFunc is called by Answer if set.
	// If nil, uses default deterministic behavior.
	AnswerFunc func(ctx context.Context, question string, articles []core.ArticleRecord) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockSummarizer().
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize produces one deterministic finding per article.
// Default behavior: a single claim built from the first words of the abstract,
// or an unavailable marker when the abstract is empty.
func (m *MockSummarizer) Summarize(ctx context.Context, articles []core.ArticleRecord) (*ai.SummaryResult, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, articles)
	}

	result := &ai.SummaryResult{
		Findings: make([]core.Finding, 0, len(articles)),
	}
	for _, a := range articles {
		if strings.TrimSpace(a.Abstract) == "" {
			result.Findings = append(result.Findings, core.Finding{PMID: a.PMID, Unavailable: true})
			continue
		}

		words := strings.Fields(a.Abstract)
		if len(words) > 8 {
			words = words[:8]
		}
		claim := fmt.Sprintf("The study reports that %s.", strings.Join(words, " "))
		result.Findings = append(result.Findings, core.Finding{
			PMID:   a.PMID,
			Claims: []string{claim},
		})
	}
	return result, nil
}

// Answer synthesizes a deterministic answer from the given articles.
// Default behavior: echoes the question and cites every article by position.
func (m *MockSummarizer) Answer(ctx context.Context, question string, articles []core.ArticleRecord) (string, error) {
	m.callCount++

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, articles)
	}

	if strings.TrimSpace(question) == "" {
		return "", ai.ErrEmptyQuestion
	}
	if len(articles) == 0 {
		return "", ai.ErrNoArticles
	}

	citations := make([]string, len(articles))
	for i := range articles {
		citations[i] = fmt.Sprintf("[%d]", i+1)
	}
	return fmt.Sprintf("Regarding %q: see %s.", question, strings.Join(citations, " ")), nil
}

// CallCount returns the number of times any method was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
	m.AnswerFunc = nil
}
