// Package vectorindex defines the long-term memory retrieval contract an
// agent's RAG step queries against.
package vectorindex

import "context"

// Match is one retrieved document: its relevance score, its identifier,
// and its payload text.
type Match struct {
	Score   float64
	ID      string
	Payload string
}

// Index is a long-term memory store an agent can query for the n most
// relevant documents to a free-text query.
type Index interface {
	TopN(ctx context.Context, query string, n int) ([]Match, error)
}
