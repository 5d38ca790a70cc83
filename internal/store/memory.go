package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// Memory is an in-process VectorStore using exact cosine similarity. It
// backs tests and small corpora that do not warrant a qdrant instance.
type Memory struct {
	mu     sync.RWMutex
	chunks map[string]models.Chunk
	order  []string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{chunks: make(map[string]models.Chunk)}
}

// Upsert inserts or replaces chunks by ID.
func (m *Memory) Upsert(ctx context.Context, chunks []models.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		if _, exists := m.chunks[c.ID]; !exists {
			m.order = append(m.order, c.ID)
		}
		m.chunks[c.ID] = c
	}
	return nil
}

// Query returns the nResults most cosine-similar chunks.
func (m *Memory) Query(ctx context.Context, embedding []float32, nResults int) ([]models.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		chunk models.Chunk
		score float64
	}
	results := make([]scored, 0, len(m.order))
	for _, id := range m.order {
		c := m.chunks[id]
		results = append(results, scored{chunk: c, score: cosineSimilarity(embedding, c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if nResults > 0 && nResults < len(results) {
		results = results[:nResults]
	}

	candidates := make([]models.Candidate, len(results))
	for i, r := range results {
		candidates[i] = models.Candidate{
			Document: r.chunk.Document,
			Metadata: r.chunk.Metadata,
			Score:    r.score,
		}
	}
	return candidates, nil
}

// AllIDs returns every chunk ID in insertion order.
func (m *Memory) AllIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...), nil
}

// Count returns the number of stored chunks.
func (m *Memory) Count(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.chunks)), nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

// cosineSimilarity returns the cosine similarity of a and b, or 0 when
// either has zero norm or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
