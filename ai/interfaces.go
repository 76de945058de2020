package ai

import (
	"context"

	"github.com/medlit/medlit/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces per-article findings and synthesized answers from
// article metadata using a generative text model.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize produces one Finding per article, batching as many articles
	// into each model call as the context budget allows. Articles whose
	// output cannot be parsed yield a Finding with the Unavailable marker;
	// articles in a batch that fails at the provider after retry are listed
	// in SummaryResult.Failed. Other batches are unaffected.
	Summarize(ctx context.Context, articles []core.ArticleRecord) (*SummaryResult, error)

	// Answer synthesizes an answer to the question from the given context
	// articles, citing articles by number where possible.
	Answer(ctx context.Context, question string, articles []core.ArticleRecord) (string, error)
}

// SummaryResult is the output of one Summarize call. Findings preserves the
// input article order. Failed lists the identifiers of articles whose batch
// failed at the provider; those articles have no entry in Findings.
type SummaryResult struct {
	Findings []core.Finding
	Failed   []string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Summarizer instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Summarizer returns the summarization and answering service.
	// The returned Summarizer is safe for concurrent use.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
