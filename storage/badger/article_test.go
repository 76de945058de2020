package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/medlit/medlit/core"
	"github.com/medlit/medlit/storage"
)

func TestArticleArchiveBasics(t *testing.T) {
	// Create in-memory repositories
	articleRepo, historyRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		historyRepo.Close()
		articleRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	query := core.Query{Raw: "aspirin stroke prevention"}

	article := &core.ArticleRecord{
		PMID:     "12345",
		Title:    "Aspirin for primary prevention of stroke",
		Authors:  []string{"Smith J", "Lee K"},
		Journal:  "Stroke",
		PubDate:  "2024 Mar",
		Abstract: "A randomized trial of aspirin.",
		URL:      "https://pubmed.ncbi.nlm.nih.gov/12345/",
	}

	archived, err := articleRepo.ArchiveArticles(ctx, query, article)
	if err != nil {
		t.Fatalf("Failed to archive article: %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("Expected 1 archived article, got %d", len(archived))
	}
	if archived[0].CrawledAt.IsZero() {
		t.Fatal("Expected CrawledAt to be set")
	}
	if archived[0].Query != "aspirin stroke prevention" {
		t.Fatalf("Expected normalized query, got '%s'", archived[0].Query)
	}

	// Test retrieving by PMID
	retrieved, err := articleRepo.GetArticle(ctx, "12345")
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if retrieved.Article.Title != article.Title {
		t.Fatalf("Expected '%s', got '%s'", article.Title, retrieved.Article.Title)
	}
	if len(retrieved.Article.Authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(retrieved.Article.Authors))
	}
}

func TestArticleArchiveNotFound(t *testing.T) {
	articleRepo, historyRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { historyRepo.Close(); articleRepo.Close(); backend.Close() }()

	_, err = articleRepo.GetArticle(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestArticleArchiveByQuery(t *testing.T) {
	articleRepo, historyRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { historyRepo.Close(); articleRepo.Close(); backend.Close() }()

	ctx := context.Background()
	queryA := core.Query{Raw: "metformin"}
	queryB := core.Query{Raw: "statins"}

	_, err = articleRepo.ArchiveArticles(ctx, queryA,
		&core.ArticleRecord{PMID: "1", Title: "Metformin trial"},
		&core.ArticleRecord{PMID: "2", Title: "Metformin cohort"},
	)
	if err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}
	_, err = articleRepo.ArchiveArticles(ctx, queryB,
		&core.ArticleRecord{PMID: "3", Title: "Statin meta-analysis"},
	)
	if err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}

	forA, err := articleRepo.GetArticlesByQuery(ctx, queryA)
	if err != nil {
		t.Fatalf("Failed to get articles by query: %v", err)
	}
	if len(forA) != 2 {
		t.Fatalf("Expected 2 articles for query A, got %d", len(forA))
	}

	forB, err := articleRepo.GetArticlesByQuery(ctx, queryB)
	if err != nil {
		t.Fatalf("Failed to get articles by query: %v", err)
	}
	if len(forB) != 1 {
		t.Fatalf("Expected 1 article for query B, got %d", len(forB))
	}

	// Unknown query returns an empty slice, not an error
	none, err := articleRepo.GetArticlesByQuery(ctx, core.Query{Raw: "never searched"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Expected no articles, got %d", len(none))
	}
}

func TestArticleArchiveOverwrite(t *testing.T) {
	articleRepo, historyRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { historyRepo.Close(); articleRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// The same article found by two different queries is stored once,
	// indexed under both.
	_, err = articleRepo.ArchiveArticles(ctx, core.Query{Raw: "first query"},
		&core.ArticleRecord{PMID: "9", Title: "Shared article"})
	if err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}
	_, err = articleRepo.ArchiveArticles(ctx, core.Query{Raw: "second query"},
		&core.ArticleRecord{PMID: "9", Title: "Shared article"})
	if err != nil {
		t.Fatalf("Failed to archive: %v", err)
	}

	got, err := articleRepo.GetArticle(ctx, "9")
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if got.Query != "second query" {
		t.Fatalf("Expected last write to win, got query '%s'", got.Query)
	}

	forFirst, err := articleRepo.GetArticlesByQuery(ctx, core.Query{Raw: "first query"})
	if err != nil {
		t.Fatalf("Failed to get articles by query: %v", err)
	}
	if len(forFirst) != 1 {
		t.Fatalf("Expected article still indexed under first query, got %d", len(forFirst))
	}
}

func TestArticleArchiveRejectsInvalid(t *testing.T) {
	articleRepo, historyRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { historyRepo.Close(); articleRepo.Close(); backend.Close() }()

	_, err = articleRepo.ArchiveArticles(context.Background(), core.Query{Raw: "q"},
		&core.ArticleRecord{Title: "No PMID"})
	if !errors.Is(err, core.ErrMissingPMID) {
		t.Fatalf("Expected ErrMissingPMID, got %v", err)
	}
}
