package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/medlit/medlit/core"
	"github.com/medlit/medlit/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &ArticleRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is owned by the caller.
func (r *ArticleRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ArticleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ArchiveArticles stores the articles retrieved for a query.
func (r *ArticleRepository) ArchiveArticles(ctx context.Context, query core.Query, articles ...*core.ArticleRecord) ([]*core.ArchivedArticle, error) {
	normalized := query.Normalized()
	queryID := core.IDFromContent(normalized)
	now := time.Now().UTC()

	archived := make([]*core.ArchivedArticle, 0, len(articles))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			if err := core.ValidateArticle(article); err != nil {
				return err
			}

			record := &core.ArchivedArticle{
				Article:   *article,
				Query:     normalized,
				CrawledAt: now,
			}

			// Primary record, keyed by PMID. Last write wins: the record
			// content is the same regardless of which query found it.
			key := makeArticleKey(article.PMID)
			if err := tx.Set(key, storage.MarshalArchivedArticle(record)); err != nil {
				return err
			}

			// Query index
			indexKey := makeArticleQueryKey(queryID, article.PMID)
			if err := tx.Set(indexKey, []byte(article.PMID)); err != nil {
				return err
			}

			archived = append(archived, record)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// GetArticle retrieves an archived article by PMID.
func (r *ArticleRepository) GetArticle(ctx context.Context, pmid string) (*core.ArchivedArticle, error) {
	var article *core.ArchivedArticle
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleKey(pmid))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			article, err = storage.UnmarshalArchivedArticle(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// GetArticlesByQuery retrieves all articles archived under a query.
func (r *ArticleRepository) GetArticlesByQuery(ctx context.Context, query core.Query) ([]*core.ArchivedArticle, error) {
	queryID := core.IDFromContent(query.Normalized())

	var pmids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialArticleQueryKey(queryID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				pmids = append(pmids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	articles := make([]*core.ArchivedArticle, 0, len(pmids))
	for _, pmid := range pmids {
		article, err := r.GetArticle(ctx, pmid)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Index entry outlived its record; skip.
				continue
			}
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}
