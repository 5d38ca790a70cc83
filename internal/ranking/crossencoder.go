// Package ranking rescores retrieval candidates with a cross-encoder model
// and title-match heuristics.
package ranking

import "context"

// CrossEncoder scores (query, document) pairs for relevance. Higher is more
// relevant; scores are raw model logits, not probabilities.
type CrossEncoder interface {
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
	Close() error
}
