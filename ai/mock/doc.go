// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Summarizer,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockSummarizer := mock.NewMockSummarizer()
//	mockSummarizer.AnswerFunc = func(ctx context.Context, question string, articles []core.ArticleRecord) (string, error) {
//	    return "canned answer", nil
//	}
//
//	// Check call counts
//	count := mockSummarizer.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockSummarizer: Builds one finding per article from its abstract
//   - MockProvider: Aggregates mock embedder and summarizer
package mock
