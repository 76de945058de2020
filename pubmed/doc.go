// Package pubmed retrieves biomedical literature from the NCBI E-utilities
// API.
//
// The package exposes a single Retriever interface whose Search operation
// runs a query end to end: an esearch call resolves the query to a list of
// PMIDs, paging as needed, and efetch calls download the full records, which
// are parsed from XML into core.ArticleRecord values. Records that fail
// validation are dropped and counted rather than surfaced as errors.
//
// All outbound requests pass through a Gate so the client stays inside the
// E-utilities rate limits. Transient failures (network errors, timeouts,
// 5xx responses) are retried with exponential backoff; rate-limit rejections
// and malformed queries are returned immediately as classified
// RetrievalError values.
package pubmed
