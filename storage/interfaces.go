package storage

import (
	"context"
	"time"

	"github.com/medlit/medlit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for the persistent article archive.
// The archive is advisory: it records everything ever retrieved but the
// live cache is never rebuilt from it.
type ArticleRepository interface {
	Repository

	// ArchiveArticles stores the articles retrieved for a query.
	// Articles are keyed by PMID; re-archiving an existing PMID overwrites
	// the stored record, so the archive holds one copy per article.
	// CrawledAt is set to the current time.
	// Returns the archived records.
	ArchiveArticles(ctx context.Context, query core.Query, articles ...*core.ArticleRecord) ([]*core.ArchivedArticle, error)

	// GetArticle retrieves an archived article by PMID.
	// Returns ErrNotFound if the article was never archived.
	GetArticle(ctx context.Context, pmid string) (*core.ArchivedArticle, error)

	// GetArticlesByQuery retrieves all articles archived under a query.
	// Returns an empty slice when the query was never archived.
	GetArticlesByQuery(ctx context.Context, query core.Query) ([]*core.ArchivedArticle, error)
}

// SearchHistoryRepository provides operations for the search history log.
type SearchHistoryRepository interface {
	Repository

	// RecordSearch appends one search event to the history.
	// The event ID is generated from a sequence.
	RecordSearch(ctx context.Context, query core.Query, at time.Time) (*core.SearchEvent, error)

	// GetRecentSearches aggregates the history into per-query summaries,
	// most recently searched first. Returns up to limit summaries.
	GetRecentSearches(ctx context.Context, limit int) ([]*core.QuerySummary, error)
}
