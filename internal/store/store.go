// Package store provides vector storage and similarity search for chunks.
package store

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// VectorStore persists embedded chunks and answers nearest-neighbor queries.
// The pipeline only ever appends; existing entries are never deleted or
// updated in place.
type VectorStore interface {
	// Upsert inserts or replaces chunks keyed by their chunk ID.
	Upsert(ctx context.Context, chunks []models.Chunk) error
	// Query returns up to nResults candidates ordered by the store's
	// similarity ranking. An empty store yields an empty slice, not an error.
	Query(ctx context.Context, embedding []float32, nResults int) ([]models.Candidate, error)
	// AllIDs returns every chunk ID in the collection.
	AllIDs(ctx context.Context) ([]string, error)
	// Count returns the number of stored chunks.
	Count(ctx context.Context) (uint64, error)
	Close() error
}
