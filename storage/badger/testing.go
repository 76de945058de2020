package badger

import "github.com/medlit/medlit/storage"

// NewMemoryRepositories creates in-memory article and history repositories for testing.
// Returns articleRepo, historyRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.ArticleRepository, storage.SearchHistoryRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	articleRepo, err := NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	historyRepo, err := NewSearchHistoryRepository(backend)
	if err != nil {
		articleRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return articleRepo, historyRepo, backend, nil
}
