// Package index ranks articles against user questions in embedding space.
//
// An Index wraps an ai.Embedder and adds the policy the rest of the system
// relies on: inputs are truncated to the model's limit (except questions,
// which are rejected when oversized), every vector is normalized to unit
// length so cosine similarity reduces to a dot product, and batch embedding
// isolates per-article failures instead of failing the whole set.
//
// Ranking is deterministic: equal scores keep the input order of the docs.
package index
