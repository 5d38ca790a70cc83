package embedding

import (
	"context"
	"testing"
)

// Every embedder satisfies the interface, including the no-op Close shape.
var (
	_ Embedder = (*GeminiEmbedder)(nil)
	_ Embedder = (*OpenAIEmbedder)(nil)
	_ Embedder = (*MockEmbedder)(nil)
	_ Embedder = (*Cached)(nil)
)

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "gemini-embedding-001"); err == nil {
		t.Error("expected error for empty API key")
	}
}

// Queries and documents embed with asymmetric retrieval task types.
func TestGeminiTaskTypes(t *testing.T) {
	if taskTypeRetrievalQuery != "RETRIEVAL_QUERY" {
		t.Errorf("query task type = %q", taskTypeRetrievalQuery)
	}
	if taskTypeRetrievalDocument != "RETRIEVAL_DOCUMENT" {
		t.Errorf("document task type = %q", taskTypeRetrievalDocument)
	}
}
