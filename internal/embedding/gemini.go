package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiDimensions = 768

// Embedding task types. Queries and documents use asymmetric retrieval
// types so the model optimizes each side of the match.
const (
	taskTypeRetrievalQuery    = "RETRIEVAL_QUERY"
	taskTypeRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// GeminiEmbedder generates embeddings using Google's Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini embedder. model defaults to gemini-embedding-001.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed generates a query embedding for a single text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, taskTypeRetrievalQuery)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return vectors[0], nil
}

// EmbedBatch generates document embeddings for multiple texts in one call.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts, taskTypeRetrievalDocument)
}

func (e *GeminiEmbedder) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: taskType,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension for gemini-embedding-001.
func (e *GeminiEmbedder) Dimensions() int {
	return geminiDimensions
}

// Close is a no-op; the genai client holds no connection to release.
func (e *GeminiEmbedder) Close() error {
	return nil
}
