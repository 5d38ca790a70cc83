package store

import (
	"context"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func chunk(id string, embedding []float32) models.Chunk {
	return models.Chunk{
		ID:        id,
		Embedding: embedding,
		Document:  "doc " + id,
		Metadata:  models.ChunkMetadata{SectionTitle: "title " + id, URL: "https://example.com/" + id},
	}
}

func TestMemory_QueryOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.Upsert(ctx, []models.Chunk{
		chunk("a", []float32{1, 0, 0}),
		chunk("b", []float32{0, 1, 0}),
		chunk("c", []float32{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	candidates, err := m.Query(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Document != "doc a" {
		t.Errorf("expected doc a first, got %s", candidates[0].Document)
	}
	if candidates[1].Document != "doc c" {
		t.Errorf("expected doc c second, got %s", candidates[1].Document)
	}
	if candidates[0].Score < candidates[1].Score {
		t.Error("candidates not in descending score order")
	}
}

func TestMemory_QueryEmptyStore(t *testing.T) {
	m := NewMemory()
	candidates, err := m.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected empty result, got %d", len(candidates))
	}
}

func TestMemory_UpsertReplacesByID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_ = m.Upsert(ctx, []models.Chunk{chunk("a", []float32{1, 0})})
	updated := chunk("a", []float32{0, 1})
	updated.Document = "updated"
	_ = m.Upsert(ctx, []models.Chunk{updated})

	count, _ := m.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 chunk after replace, got %d", count)
	}
	candidates, _ := m.Query(ctx, []float32{0, 1}, 1)
	if candidates[0].Document != "updated" {
		t.Errorf("expected updated document, got %s", candidates[0].Document)
	}
}

func TestMemory_AllIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Upsert(ctx, []models.Chunk{
		chunk("p_1", []float32{1}),
		chunk("p_2", []float32{1}),
		chunk("q_1", []float32{1}),
	})

	ids, err := m.AllIDs(ctx)
	if err != nil {
		t.Fatalf("AllIDs() error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 IDs, got %d", len(ids))
	}
	if ids[0] != "p_1" || ids[1] != "p_2" || ids[2] != "q_1" {
		t.Errorf("unexpected ID order: %v", ids)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}
