package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Query is a user search request against the literature database.
// Raw holds the text as the user typed it; filters are optional.
type Query struct {
	Raw     string
	From    time.Time // Publication date lower bound (zero = unbounded)
	To      time.Time // Publication date upper bound (zero = unbounded)
	Journal string    // Restrict results to a single journal (empty = any)
}

// Normalized returns the canonical form of the query text: lower-cased with
// whitespace collapsed to single spaces. The normalized form is the cache key.
func (q Query) Normalized() string {
	return strings.Join(strings.Fields(strings.ToLower(q.Raw)), " ")
}

// ArticleRecord is the normalized schema for one literature database record.
// Records are immutable once fetched.
type ArticleRecord struct {
	PMID     string // Stable source database identifier
	Title    string
	Authors  []string // Ordered as listed by the source
	Journal  string
	PubDate  string // Human-readable, e.g. "2024 Mar 15"
	Abstract string
	URL      string // Canonical article URL
}

// EmbeddingText returns the text used to compute the article's vector:
// title, abstract and authors joined in a fixed order so the same record
// always embeds identically.
func (a *ArticleRecord) EmbeddingText() string {
	return a.Title + " " + a.Abstract + " " + strings.Join(a.Authors, " ")
}

// ResultSet is the ordered result of one retrieval. Article order is the
// source's retrieval order and is the presentation order. Dropped counts
// records the source returned but that failed schema validation.
type ResultSet struct {
	Query    Query
	Articles []ArticleRecord
	Dropped  int
}

// Finding is the structured summary output for one article: short claims
// derived from the abstract, attributed to exactly one PMID. Unavailable is
// set when the model's output for the article could not be parsed.
type Finding struct {
	PMID        string
	Claims      []string
	Unavailable bool
}

// Match is a ranked candidate from vector similarity scoring.
type Match struct {
	PMID  string
	Score float32
}

// ArchivedArticle couples an article with the query that found it, for the
// persistent archive.
type ArchivedArticle struct {
	Article   ArticleRecord
	Query     string // Normalized query that retrieved the article
	CrawledAt time.Time
}

// SearchEvent records one executed search in the history log.
type SearchEvent struct {
	Id        ID
	Query     string // Normalized query text
	Timestamp time.Time
}

// QuerySummary aggregates the search history for one query.
type QuerySummary struct {
	Query        string
	Count        int
	LastSearched time.Time
}
