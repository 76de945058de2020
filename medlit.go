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
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/medlit/medlit/ai"
	"github.com/medlit/medlit/ai/openai"
	"github.com/medlit/medlit/cache"
	"github.com/medlit/medlit/core"
	"github.com/medlit/medlit/index"
	"github.com/medlit/medlit/pubmed"
	"github.com/medlit/medlit/storage"
	"github.com/medlit/medlit/storage/badger"
)

// ErrNoActiveSearch indicates a follow-up question arrived for a conversation
// with no live search context.
var ErrNoActiveSearch = errors.New("no active search for this conversation")

// defaultTopK is how many articles a follow-up answer draws on.
const defaultTopK = 3

// archiveTimeout bounds each background archive write.
const archiveTimeout = 30 * time.Second

// Service is the assistant's front door: it retrieves literature, summarizes
// it, and answers follow-up questions against the articles of the
// conversation's last search.
type Service struct {
	retriever   pubmed.Retriever
	idx         *index.Index
	provider    ai.AIProvider
	cache       *cache.Cache
	backend     *badger.Backend
	articleRepo storage.ArticleRepository
	historyRepo storage.SearchHistoryRepository
	archivePool *ants.Pool
	topK        int
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	retriever  pubmed.Retriever
	pubmedOpts []pubmed.Option
	cacheOpts  []cache.Option
	topK       int
	poolSize   int
	inMemory   bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a pre-built AI provider, bypassing aiConfig.
// Used in tests with the mock provider.
func WithProvider(p ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = p
	}
}

// WithRetriever injects a pre-built retriever, bypassing pubmed options.
// Used in tests with a stub retriever.
func WithRetriever(r pubmed.Retriever) ServiceOption {
	return func(o *serviceOptions) {
		o.retriever = r
	}
}

// WithPubMedOptions passes options through to the PubMed client.
func WithPubMedOptions(opts ...pubmed.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pubmedOpts = append(o.pubmedOpts, opts...)
	}
}

// WithCacheOptions passes options through to the result cache.
func WithCacheOptions(opts ...cache.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithTopK sets how many articles a follow-up answer draws on.
func WithTopK(k int) ServiceOption {
	return func(o *serviceOptions) {
		o.topK = k
	}
}

// WithArchivePoolSize sets the worker pool size for background archiving.
func WithArchivePoolSize(size int) ServiceOption {
	return func(o *serviceOptions) {
		o.poolSize = size
	}
}

// WithInMemoryStorage uses an in-memory archive instead of a directory.
// Used in tests.
func WithInMemoryStorage() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// NewService opens the archive at dataDir and wires the retrieval,
// embedding, summarization and caching components together.
func NewService(dataDir string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		topK:     defaultTopK,
		poolSize: 1,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(dataDir, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create article archive repository
	articleRepo, err := badger.NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create search history repository
	historyRepo, err := badger.NewSearchHistoryRepository(backend)
	if err != nil {
		articleRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			historyRepo.Close()
			articleRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	idx, err := index.NewIndex(provider.Embedder())
	if err != nil {
		provider.Close()
		historyRepo.Close()
		articleRepo.Close()
		backend.Close()
		return nil, err
	}

	retriever := options.retriever
	if retriever == nil {
		retriever, err = pubmed.NewClient(options.pubmedOpts...)
		if err != nil {
			provider.Close()
			historyRepo.Close()
			articleRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	resultCache, err := cache.NewCache(options.cacheOpts...)
	if err != nil {
		provider.Close()
		historyRepo.Close()
		articleRepo.Close()
		backend.Close()
		return nil, err
	}

	archivePool, err := ants.NewPool(options.poolSize)
	if err != nil {
		resultCache.Close()
		provider.Close()
		historyRepo.Close()
		articleRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		retriever:   retriever,
		idx:         idx,
		provider:    provider,
		cache:       resultCache,
		backend:     backend,
		articleRepo: articleRepo,
		historyRepo: historyRepo,
		archivePool: archivePool,
		topK:        options.topK,
		logger:      slog.Default().With("component", "service"),
	}, nil
}

// Search runs a query end to end and returns the cached entry: articles in
// retrieval order, their vectors, and one finding per article. The boolean
// reports whether the entry was served from the cache. Identical queries in
// flight at the same time share one retrieval.
func (s *Service) Search(ctx context.Context, query core.Query) (*cache.Entry, bool, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, false, err
	}

	entry, fromCache, err := s.cache.GetOrFill(ctx, query, func(ctx context.Context) (*cache.Entry, error) {
		return s.fill(ctx, query)
	})
	if err != nil {
		return nil, false, err
	}

	// History records every search, archive only fresh retrievals.
	// Both are write-behind: a storage failure never fails the search.
	s.submitHistory(query)
	if !fromCache && len(entry.Results.Articles) > 0 {
		s.submitArchive(query, entry.Results.Articles)
	}

	return entry, fromCache, nil
}

// fill computes a cache entry: retrieve, then embed and summarize the
// articles concurrently.
func (s *Service) fill(ctx context.Context, query core.Query) (*cache.Entry, error) {
	results, err := s.retriever.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	entry := &cache.Entry{
		Query:   query,
		Results: results,
		Vectors: map[string][]float32{},
	}
	if len(results.Articles) == 0 {
		return entry, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectors, failed, err := s.idx.EmbedArticles(gctx, results.Articles)
		if err != nil {
			return err
		}
		entry.Vectors = vectors
		entry.FailedEmbeds = failed
		return nil
	})
	g.Go(func() error {
		summary, err := s.provider.Summarizer().Summarize(gctx, results.Articles)
		if err != nil {
			return err
		}
		entry.Findings = summary.Findings
		for _, pmid := range summary.Failed {
			entry.Findings = append(entry.Findings, core.Finding{PMID: pmid, Unavailable: true})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Bind associates a conversation with the entry for the given query, so
// follow-up questions know which search they refer to.
func (s *Service) Bind(conversationID string, query core.Query) error {
	return s.cache.Bind(conversationID, query)
}

// FollowUp answers a question against the conversation's last search. The
// question is embedded, the cached article vectors are ranked against it,
// and the top articles are handed to the model as context. Returns the
// answer and the context articles in rank order.
func (s *Service) FollowUp(ctx context.Context, conversationID string, question string) (string, []core.ArticleRecord, error) {
	entry, ok := s.cache.GetForConversation(conversationID)
	if !ok {
		return "", nil, ErrNoActiveSearch
	}

	queryVector, err := s.idx.EmbedQuestion(ctx, question)
	if err != nil {
		return "", nil, err
	}

	// Docs keep the articles' retrieval order so ranking ties break
	// deterministically.
	byPMID := make(map[string]*core.ArticleRecord, len(entry.Results.Articles))
	docs := make([]index.Doc, 0, len(entry.Results.Articles))
	for i := range entry.Results.Articles {
		article := &entry.Results.Articles[i]
		vector, ok := entry.Vectors[article.PMID]
		if !ok {
			continue
		}
		byPMID[article.PMID] = article
		docs = append(docs, index.Doc{ID: article.PMID, Vector: vector})
	}
	if len(docs) == 0 {
		return "", nil, ErrNoActiveSearch
	}

	matches, err := s.idx.Rank(queryVector, docs, s.topK)
	if err != nil {
		return "", nil, err
	}

	contextArticles := make([]core.ArticleRecord, 0, len(matches))
	for _, m := range matches {
		contextArticles = append(contextArticles, *byPMID[m.PMID])
	}

	answer, err := s.provider.Summarizer().Answer(ctx, question, contextArticles)
	if err != nil {
		return "", nil, err
	}
	return answer, contextArticles, nil
}

// RecentSearches returns per-query history summaries, most recent first.
func (s *Service) RecentSearches(ctx context.Context, limit int) ([]*core.QuerySummary, error) {
	return s.historyRepo.GetRecentSearches(ctx, limit)
}

// ArchivedArticles returns everything ever archived under a query.
func (s *Service) ArchivedArticles(ctx context.Context, query core.Query) ([]*core.ArchivedArticle, error) {
	return s.articleRepo.GetArticlesByQuery(ctx, query)
}

// submitArchive queues a background write of the retrieved articles.
func (s *Service) submitArchive(query core.Query, articles []core.ArticleRecord) {
	records := make([]*core.ArticleRecord, len(articles))
	for i := range articles {
		records[i] = &articles[i]
	}
	err := s.archivePool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if _, err := s.articleRepo.ArchiveArticles(ctx, query, records...); err != nil {
			s.logger.Error("error archiving articles", "query", query.Normalized(), "err", err)
		}
	})
	if err != nil {
		s.logger.Error("error submitting archive task", "err", err)
	}
}

// submitHistory queues a background history append.
func (s *Service) submitHistory(query core.Query) {
	at := time.Now().UTC()
	err := s.archivePool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if _, err := s.historyRepo.RecordSearch(ctx, query, at); err != nil {
			s.logger.Error("error recording search history", "query", query.Normalized(), "err", err)
		}
	})
	if err != nil {
		s.logger.Error("error submitting history task", "err", err)
	}
}

// Close releases all resources. Pending archive writes get a grace period.
func (s *Service) Close() error {
	if err := s.archivePool.ReleaseTimeout(5 * time.Second); err != nil {
		s.logger.Error("error releasing archive pool", "err", err)
	}

	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing cache", "err", err)
	}

	// Close AI provider first
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := s.historyRepo.Close(); err != nil {
		s.logger.Error("error closing history repository", "err", err)
		return err
	}
	if err := s.articleRepo.Close(); err != nil {
		s.logger.Error("error closing article repository", "err", err)
		return err
	}

	// Close backend
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
