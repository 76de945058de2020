package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/medlit/medlit/core"
	"github.com/medlit/medlit/storage"
)

// SearchHistoryRepository implements storage.SearchHistoryRepository for BadgerDB.
type SearchHistoryRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SearchHistoryRepository = (*SearchHistoryRepository)(nil)

// NewSearchHistoryRepository creates a new SearchHistoryRepository.
func NewSearchHistoryRepository(backend *Backend) (*SearchHistoryRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}

	idSeq, err := backend.GetSequence(searchEventIDSeq)
	if err != nil {
		return nil, err
	}

	return &SearchHistoryRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SearchHistoryRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SearchHistoryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// RecordSearch appends one search event to the history.
func (r *SearchHistoryRepository) RecordSearch(ctx context.Context, query core.Query, at time.Time) (*core.SearchEvent, error) {
	nextID, err := r.idSeq.Next()
	if err != nil {
		return nil, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = r.idSeq.Next()
		if err != nil {
			return nil, err
		}
	}

	event := &core.SearchEvent{
		Id:        core.ID(nextID),
		Query:     query.Normalized(),
		Timestamp: at.UTC(),
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSearchEventKey(event.Id)
		if err := tx.Set(key, storage.MarshalSearchEvent(event)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetRecentSearches aggregates the history into per-query summaries,
// most recently searched first.
func (r *SearchHistoryRepository) GetRecentSearches(ctx context.Context, limit int) ([]*core.QuerySummary, error) {
	byQuery := make(map[string]*core.QuerySummary)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(searchEventPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var event *core.SearchEvent
			err := iter.Item().Value(func(val []byte) error {
				var err error
				event, err = storage.UnmarshalSearchEvent(val)
				return err
			})
			if err != nil {
				return err
			}

			summary, ok := byQuery[event.Query]
			if !ok {
				summary = &core.QuerySummary{Query: event.Query}
				byQuery[event.Query] = summary
			}
			summary.Count++
			if event.Timestamp.After(summary.LastSearched) {
				summary.LastSearched = event.Timestamp
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	summaries := make([]*core.QuerySummary, 0, len(byQuery))
	for _, s := range byQuery {
		summaries = append(summaries, s)
	}

	// Sort by last searched descending
	slices.SortFunc(summaries, func(a, b *core.QuerySummary) int {
		if a.LastSearched.After(b.LastSearched) {
			return -1
		}
		if a.LastSearched.Before(b.LastSearched) {
			return 1
		}
		return 0
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
